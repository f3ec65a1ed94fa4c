// Package settlement executes hourly bids against a reconstructed price day
// and computes per-bid profit and loss. Settle is a pure function: it never
// mutates its inputs and identical inputs always yield identical output, so
// it can be unit tested directly without mocks.
package settlement

import (
	"fmt"

	"gridpulse/internal/model"
)

// Result is the settlement outcome for a batch of bids.
type Result struct {
	Trades      []model.TradeResult     `json:"trades"`
	TotalProfit float64                 `json:"total_profit"`
	Summary     model.SettlementSummary `json:"summary"`
}

// Settle evaluates each bid against the day-ahead clearing price for its
// hour and, on execution, settles it against the average real-time price of
// that hour. Bids referencing an hour with no market data are marked
// not-executed with a reason; they never abort the batch.
func Settle(bids []model.Bid, dayAhead []model.HourlyDayAheadEntry, realTime []model.HourlyRealTimeEntry) Result {
	trades := make([]model.TradeResult, 0, len(bids))
	totalProfit := 0.0
	executed := 0

	for _, bid := range bids {
		trade := settleBid(bid, dayAhead, realTime)
		if trade.Executed {
			executed++
			totalProfit += trade.Profit
		}
		trades = append(trades, trade)
	}

	summary := model.SettlementSummary{
		TotalBids:      len(bids),
		ExecutedTrades: executed,
	}
	if len(bids) > 0 {
		summary.SuccessRate = float64(executed) / float64(len(bids))
	}
	if executed > 0 {
		summary.AvgProfitPerTrade = totalProfit / float64(executed)
	}

	return Result{Trades: trades, TotalProfit: totalProfit, Summary: summary}
}

func settleBid(bid model.Bid, dayAhead []model.HourlyDayAheadEntry, realTime []model.HourlyRealTimeEntry) model.TradeResult {
	trade := model.TradeResult{Bid: bid}

	// Reconstruction guarantees 24 entries, but a caller can hand the engine
	// a series from anywhere; a missing hour downgrades the single bid.
	if bid.Hour < 0 || bid.Hour >= len(dayAhead) || bid.Hour >= len(realTime) {
		trade.Reason = "no market data for hour"
		return trade
	}

	clearingPrice := dayAhead[bid.Hour].Price
	settlementPrice := realTime[bid.Hour].SettlementPrice()

	// Execution comparisons are inclusive: a bid at exactly the clearing
	// price executes on both sides.
	switch bid.Side {
	case model.BidBuy:
		if bid.Price < clearingPrice {
			trade.Reason = fmt.Sprintf("bid price $%.2f below clearing price $%.2f", bid.Price, clearingPrice)
			return trade
		}
		trade.Profit = (settlementPrice - clearingPrice) * bid.Quantity
	case model.BidSell:
		if bid.Price > clearingPrice {
			trade.Reason = fmt.Sprintf("offer price $%.2f above clearing price $%.2f", bid.Price, clearingPrice)
			return trade
		}
		trade.Profit = (clearingPrice - settlementPrice) * bid.Quantity
	default:
		trade.Reason = fmt.Sprintf("unknown bid type %q", bid.Side)
		return trade
	}

	trade.Executed = true
	trade.ExecutionPrice = clearingPrice
	trade.SettlementPrice = settlementPrice
	return trade
}
