package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpulse/internal/model"
)

// flatDay builds a full 24-hour day-ahead series at one clearing price.
func flatDay(price float64) []model.HourlyDayAheadEntry {
	out := make([]model.HourlyDayAheadEntry, 0, 24)
	for h := 0; h < 24; h++ {
		out = append(out, model.HourlyDayAheadEntry{
			Hour: h, Price: price, Quality: model.QualityActual, SourceHour: h,
		})
	}
	return out
}

// flatRealTime builds a full 24-hour real-time series whose settlement
// price is the given value every hour.
func flatRealTime(price float64) []model.HourlyRealTimeEntry {
	out := make([]model.HourlyRealTimeEntry, 0, 24)
	for h := 0; h < 24; h++ {
		intervals := make([]model.IntervalPrice, 0, 4)
		for i := 0; i < 4; i++ {
			intervals = append(intervals, model.IntervalPrice{
				Interval: i, Price: price, Quality: model.QualityActual,
			})
		}
		out = append(out, model.HourlyRealTimeEntry{
			Hour: h, Quality: model.QualityActual, SourceHour: h, Intervals: intervals,
		})
	}
	return out
}

func TestSettle_BuyInclusiveBoundary(t *testing.T) {
	bids := []model.Bid{{ID: "b1", Hour: 10, Side: model.BidBuy, Price: 50.00, Quantity: 10}}
	result := Settle(bids, flatDay(50.00), flatRealTime(50.00))

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.True(t, trade.Executed)
	assert.Equal(t, 50.00, trade.ExecutionPrice)
	assert.Empty(t, trade.Reason)
}

func TestSettle_SellInclusiveBoundary(t *testing.T) {
	bids := []model.Bid{{ID: "s1", Hour: 10, Side: model.BidSell, Price: 50.00, Quantity: 10}}
	result := Settle(bids, flatDay(50.00), flatRealTime(50.00))

	require.Len(t, result.Trades, 1)
	assert.True(t, result.Trades[0].Executed)
	assert.Equal(t, 50.00, result.Trades[0].ExecutionPrice)
}

func TestSettle_LongProfit(t *testing.T) {
	// Buy cleared at $50, settled at $60, 10 MWh: +$100.
	bids := []model.Bid{{ID: "b1", Hour: 7, Side: model.BidBuy, Price: 55, Quantity: 10}}
	result := Settle(bids, flatDay(50), flatRealTime(60))

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	require.True(t, trade.Executed)
	assert.Equal(t, 50.0, trade.ExecutionPrice)
	assert.Equal(t, 60.0, trade.SettlementPrice)
	assert.Equal(t, 100.0, trade.Profit)
	assert.Equal(t, 100.0, result.TotalProfit)
}

func TestSettle_ShortProfit(t *testing.T) {
	// Sell cleared at $50, settled at $45, 5 MWh: +$25.
	bids := []model.Bid{{ID: "s1", Hour: 7, Side: model.BidSell, Price: 45, Quantity: 5}}
	result := Settle(bids, flatDay(50), flatRealTime(45))

	require.Len(t, result.Trades, 1)
	assert.Equal(t, 25.0, result.Trades[0].Profit)
}

func TestSettle_BuyBelowClearingRejected(t *testing.T) {
	bids := []model.Bid{{ID: "b1", Hour: 3, Side: model.BidBuy, Price: 49.99, Quantity: 10}}
	result := Settle(bids, flatDay(50), flatRealTime(55))

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.False(t, trade.Executed)
	assert.Contains(t, trade.Reason, "below clearing price")
	assert.Zero(t, trade.Profit)
	assert.Zero(t, result.TotalProfit)
}

func TestSettle_SellAboveClearingRejected(t *testing.T) {
	bids := []model.Bid{{ID: "s1", Hour: 3, Side: model.BidSell, Price: 50.01, Quantity: 10}}
	result := Settle(bids, flatDay(50), flatRealTime(55))

	require.Len(t, result.Trades, 1)
	assert.False(t, result.Trades[0].Executed)
	assert.Contains(t, result.Trades[0].Reason, "above clearing price")
}

func TestSettle_MissingHourDowngradesSingleBid(t *testing.T) {
	// A truncated series: hour 17 has no market data. The bad bid is marked
	// with a reason and the rest of the batch still settles.
	dayAhead := flatDay(50)[:17]
	realTime := flatRealTime(60)[:17]
	bids := []model.Bid{
		{ID: "ok", Hour: 5, Side: model.BidBuy, Price: 55, Quantity: 1},
		{ID: "bad", Hour: 17, Side: model.BidBuy, Price: 55, Quantity: 1},
	}

	result := Settle(bids, dayAhead, realTime)
	require.Len(t, result.Trades, 2)

	assert.True(t, result.Trades[0].Executed)
	assert.False(t, result.Trades[1].Executed)
	assert.Equal(t, "no market data for hour", result.Trades[1].Reason)
	assert.Equal(t, 1, result.Summary.ExecutedTrades)
}

func TestSettle_UnknownSideRejected(t *testing.T) {
	bids := []model.Bid{{ID: "x", Hour: 5, Side: "hold", Price: 55, Quantity: 1}}
	result := Settle(bids, flatDay(50), flatRealTime(60))

	require.Len(t, result.Trades, 1)
	assert.False(t, result.Trades[0].Executed)
	assert.Contains(t, result.Trades[0].Reason, "unknown bid type")
}

func TestSettle_SettlementPriceIsIntervalMean(t *testing.T) {
	realTime := flatRealTime(0)
	for i, price := range []float64{40, 50, 60, 70} { // mean 55
		realTime[8].Intervals[i].Price = price
	}
	bids := []model.Bid{{ID: "b1", Hour: 8, Side: model.BidBuy, Price: 50, Quantity: 2}}

	result := Settle(bids, flatDay(50), realTime)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, 55.0, result.Trades[0].SettlementPrice)
	assert.Equal(t, 10.0, result.Trades[0].Profit)
}

func TestSettle_SummaryAggregation(t *testing.T) {
	bids := []model.Bid{
		{ID: "a", Hour: 1, Side: model.BidBuy, Price: 55, Quantity: 10}, // executes, +100
		{ID: "b", Hour: 2, Side: model.BidBuy, Price: 40, Quantity: 10}, // rejected
		{ID: "c", Hour: 3, Side: model.BidSell, Price: 45, Quantity: 2}, // executes, -20
		{ID: "d", Hour: 4, Side: model.BidSell, Price: 60, Quantity: 2}, // rejected
	}
	result := Settle(bids, flatDay(50), flatRealTime(60))

	assert.Equal(t, 4, result.Summary.TotalBids)
	assert.Equal(t, 2, result.Summary.ExecutedTrades)
	assert.Equal(t, 0.5, result.Summary.SuccessRate)
	assert.Equal(t, 80.0, result.TotalProfit)
	assert.Equal(t, 40.0, result.Summary.AvgProfitPerTrade)
}

func TestSettle_NoExecutionsZeroAverages(t *testing.T) {
	bids := []model.Bid{{ID: "a", Hour: 1, Side: model.BidBuy, Price: 10, Quantity: 1}}
	result := Settle(bids, flatDay(50), flatRealTime(60))

	assert.Zero(t, result.Summary.ExecutedTrades)
	assert.Zero(t, result.Summary.AvgProfitPerTrade)
	assert.Zero(t, result.TotalProfit)
}

func TestSettle_EmptyBatch(t *testing.T) {
	result := Settle(nil, flatDay(50), flatRealTime(60))
	assert.Empty(t, result.Trades)
	assert.Zero(t, result.Summary.SuccessRate)
}

func TestSettle_Deterministic(t *testing.T) {
	bids := []model.Bid{
		{ID: "a", Hour: 1, Side: model.BidBuy, Price: 55, Quantity: 10},
		{ID: "b", Hour: 2, Side: model.BidSell, Price: 45, Quantity: 3},
		{ID: "c", Hour: 23, Side: model.BidBuy, Price: 20, Quantity: 7},
	}
	dayAhead := flatDay(50)
	realTime := flatRealTime(58)

	first := Settle(bids, dayAhead, realTime)
	second := Settle(bids, dayAhead, realTime)
	assert.Equal(t, first, second)
}

func TestSettle_DoesNotMutateInputs(t *testing.T) {
	bids := []model.Bid{{ID: "a", Hour: 1, Side: model.BidBuy, Price: 55, Quantity: 10}}
	dayAhead := flatDay(50)
	realTime := flatRealTime(60)

	_ = Settle(bids, dayAhead, realTime)

	assert.Equal(t, flatDay(50), dayAhead)
	assert.Equal(t, flatRealTime(60), realTime)
	assert.Equal(t, "a", bids[0].ID)
}
