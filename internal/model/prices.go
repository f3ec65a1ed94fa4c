package model

import "time"

// Quality describes the provenance of a reconstructed value.
type Quality string

const (
	// QualityActual means the value was directly observed in the raw feed.
	QualityActual Quality = "actual"
	// QualityInterpolated means the value was derived from neighboring hours.
	QualityInterpolated Quality = "interpolated"
	// QualityPartial marks a real-time hour where some but not all four
	// 15-minute intervals had observations.
	QualityPartial Quality = "partial"
	// QualityFallback means a synthetic default (or borrowed day-ahead price)
	// was used because no observations were available.
	QualityFallback Quality = "fallback"
)

// RawPriceRecord is one untyped row from an external price feed. Field names
// vary by dataset, so records are decoded as-is and resolved against an
// ordered alias list at parse time.
type RawPriceRecord map[string]any

// PricePoint is a single observed price for a location.
type PricePoint struct {
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"` // UTC
	Price     float64   `json:"price"`     // $/MWh
	Quality   Quality   `json:"data_quality,omitempty"`
}

// HourlyDayAheadEntry is one hour of the reconstructed day-ahead series.
// A reconstruction always yields exactly 24 of these, hours 0..23.
type HourlyDayAheadEntry struct {
	Hour        int     `json:"hour"`
	Price       float64 `json:"price"`
	Quality     Quality `json:"data_quality"`
	RecordCount int     `json:"record_count"`
	SourceHour  int     `json:"source_hour"`
}

// IntervalPrice is one 15-minute sub-interval of a real-time hour.
type IntervalPrice struct {
	Interval int     `json:"interval"` // 0..3, minute div 15
	Price    float64 `json:"price"`
	Quality  Quality `json:"data_quality"`
}

// HourlyRealTimeEntry is one hour of the reconstructed real-time series.
// Intervals always has length 4.
type HourlyRealTimeEntry struct {
	Hour        int             `json:"hour"`
	Quality     Quality         `json:"data_quality"`
	RecordCount int             `json:"record_count"`
	SourceHour  int             `json:"source_hour"`
	Intervals   []IntervalPrice `json:"prices"`
}

// SettlementPrice returns the average of the hour's four interval prices.
func (e HourlyRealTimeEntry) SettlementPrice() float64 {
	if len(e.Intervals) == 0 {
		return 0
	}
	sum := 0.0
	for _, iv := range e.Intervals {
		sum += iv.Price
	}
	return sum / float64(len(e.Intervals))
}

// LocationSeries is one location's chronological price series, the input
// unit for spike detection.
type LocationSeries struct {
	Location string       `json:"location"`
	Prices   []PricePoint `json:"prices"`
}

// RecordCounts holds the number of valid raw records per feed.
type RecordCounts struct {
	DayAhead int `json:"day_ahead"`
	RealTime int `json:"real_time"`
}

// ReconstructionMetadata partitions the 24 target hours by quality tier.
// The three slices are disjoint and their union is always {0..23}.
type ReconstructionMetadata struct {
	ActualHours       []int        `json:"actual_hours"`
	InterpolatedHours []int        `json:"interpolated_hours"`
	FallbackHours     []int        `json:"fallback_hours"`
	TotalRecords      RecordCounts `json:"total_records"`
	Timezone          string       `json:"timezone"`
	SourceTimezone    string       `json:"source_timezone"`
}
