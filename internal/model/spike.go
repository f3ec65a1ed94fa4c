package model

import "time"

// SpikeType says which side of the rolling baseline a spike sits on.
type SpikeType string

const (
	SpikePositive SpikeType = "positive"
	SpikeNegative SpikeType = "negative"
)

// Severity buckets a spike or event by magnitude.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NearbyPrice is another location's price at the moment of a spike, tagged
// with a synthetic distance proxy (ordinal index difference x a fixed mile
// constant). Real coordinates are not available in the feed; this is a known
// approximation, not geography.
type NearbyPrice struct {
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Distance float64 `json:"distance"` // synthetic, miles
}

// Spike is one statistically anomalous price observation.
type Spike struct {
	ID              string        `json:"id"`
	Timestamp       time.Time     `json:"timestamp"`
	Location        string        `json:"location"`
	Price           float64       `json:"price"`
	BaselinePrice   float64       `json:"baseline_price"` // rolling window mean
	Magnitude       float64       `json:"magnitude"`      // |price - baseline|
	Type            SpikeType     `json:"type"`
	Severity        Severity      `json:"severity"`
	NearbyLocations []NearbyPrice `json:"nearby_locations,omitempty"` // at most 5
	Confidence      float64       `json:"confidence"`                 // [0,1]
	ZScore          float64       `json:"z_score"`
}

// GridEventType classifies a synthesized grid-level event.
type GridEventType string

const (
	EventMajorOutage GridEventType = "major_outage"
	EventCongestion  GridEventType = "transmission_congestion"
	EventDisturbance GridEventType = "local_disturbance"
)

// GridEvent is a grid-level condition synthesized from two or more spikes
// landing in the same hour. Events are never created standalone.
type GridEvent struct {
	ID                string        `json:"id"`
	Timestamp         time.Time     `json:"timestamp"` // truncated to the hour
	Type              GridEventType `json:"type"`
	Description       string        `json:"description"`
	AffectedLocations []string      `json:"affected_locations"`
	EstimatedImpact   float64       `json:"estimated_impact"` // $/MWh-weighted
	Severity          Severity      `json:"severity"`
	Confidence        float64       `json:"confidence"`
}
