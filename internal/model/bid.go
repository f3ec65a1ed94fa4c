package model

// BidSide is the direction of a bid. Keep these values stable; they appear
// in request JSON and CSV output.
type BidSide string

const (
	BidBuy  BidSide = "buy"
	BidSell BidSide = "sell"
)

// Bid is one hourly day-ahead bid. The engine assumes the caller has already
// validated hour range and the at-most-10-bids-per-hour rule.
type Bid struct {
	ID       string  `json:"id"`
	Hour     int     `json:"hour"` // 0..23
	Side     BidSide `json:"type"`
	Price    float64 `json:"price"`    // $/MWh, >= 0
	Quantity float64 `json:"quantity"` // MWh, > 0
}

// TradeResult is the settlement outcome for a single bid.
type TradeResult struct {
	Bid
	Executed        bool    `json:"executed"`
	ExecutionPrice  float64 `json:"execution_price,omitempty"`
	SettlementPrice float64 `json:"settlement_price,omitempty"`
	Profit          float64 `json:"profit"`
	Reason          string  `json:"reason,omitempty"`
}

// SettlementSummary aggregates a batch of trade results.
type SettlementSummary struct {
	TotalBids         int     `json:"total_bids"`
	ExecutedTrades    int     `json:"executed_trades"`
	SuccessRate       float64 `json:"success_rate"`
	AvgProfitPerTrade float64 `json:"avg_profit_per_trade"`
}
