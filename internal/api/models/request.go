package models

import (
	"gridpulse/internal/model"
	"gridpulse/internal/spikes"
)

// FetchConfig tells a handler to pull raw feeds from the Grid Status API
// instead of taking them inline.
type FetchConfig struct {
	APIKey          string `json:"api_key" binding:"required"`
	LocationID      string `json:"location_id" binding:"required"`
	DayAheadDataset string `json:"day_ahead_dataset,omitempty"`
	RealTimeDataset string `json:"real_time_dataset,omitempty"`
}

// ReconstructRequest asks for a complete 24-hour price picture for one day.
// Raw records come inline or via Fetch; at least one must be set.
type ReconstructRequest struct {
	Date           string                 `json:"date" binding:"required"` // YYYY-MM-DD
	SourceTimezone string                 `json:"source_timezone,omitempty"`
	Timezone       string                 `json:"timezone,omitempty"` // target
	DayAhead       []model.RawPriceRecord `json:"day_ahead,omitempty"`
	RealTime       []model.RawPriceRecord `json:"real_time,omitempty"`
	Fetch          *FetchConfig           `json:"fetch,omitempty"`
}

// SpikesRequest runs spike detection over per-location series. Series come
// pre-grouped, or as raw records that are grouped by their location field.
type SpikesRequest struct {
	Date           string                 `json:"date,omitempty"` // YYYY-MM-DD, for event bucketing
	SourceTimezone string                 `json:"source_timezone,omitempty"`
	Series         []model.LocationSeries `json:"series,omitempty"`
	Records        []model.RawPriceRecord `json:"records,omitempty"`
	Thresholds     *spikes.Thresholds     `json:"thresholds,omitempty"`
}

// BidInput is one bid in a settlement request.
type BidInput struct {
	ID       string  `json:"id"`
	Hour     int     `json:"hour" binding:"gte=0,lte=23"`
	Side     string  `json:"type" binding:"required,oneof=buy sell"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// SettleRequest settles bids against a price day. The day can be supplied
// already reconstructed (day_ahead_prices/real_time_prices) or as raw feeds
// to reconstruct first.
type SettleRequest struct {
	Bids []BidInput `json:"bids" binding:"required,min=1,dive"`

	DayAheadPrices []model.HourlyDayAheadEntry `json:"day_ahead_prices,omitempty"`
	RealTimePrices []model.HourlyRealTimeEntry `json:"real_time_prices,omitempty"`

	Date           string                 `json:"date,omitempty"`
	SourceTimezone string                 `json:"source_timezone,omitempty"`
	Timezone       string                 `json:"timezone,omitempty"`
	RawDayAhead    []model.RawPriceRecord `json:"raw_day_ahead,omitempty"`
	RawRealTime    []model.RawPriceRecord `json:"raw_real_time,omitempty"`
	Fetch          *FetchConfig           `json:"fetch,omitempty"`
}
