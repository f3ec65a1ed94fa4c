// Package spikes flags statistical price anomalies in per-location
// chronological series and synthesizes grid-level events from spikes that
// cluster in the same hour.
package spikes

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gridpulse/internal/model"
)

// ErrNoSeries is returned when Detect is called with no location series.
// Zero detected spikes is a valid outcome; an empty input is not.
var ErrNoSeries = errors.New("no location series provided")

const (
	// windowSize is the rolling baseline window: 6 samples, i.e. the
	// preceding 30 minutes at 5-minute granularity.
	windowSize = 6

	maxNearby = 5

	// distanceUnitMiles scales the ordinal index difference between two
	// locations into a distance proxy. The feed carries no coordinates, so
	// "nearby" is approximated from list order. Known limitation.
	distanceUnitMiles = 10.0
)

// Thresholds tunes detection sensitivity. All fields are optional; zero
// values take the documented defaults.
type Thresholds struct {
	// MinMagnitude is the minimum $/MWh deviation from the rolling baseline.
	MinMagnitude float64 `json:"min_magnitude" yaml:"min_magnitude"`
	// MinDurationMinutes is the same-location collapse window for
	// deduplication, in minutes.
	MinDurationMinutes float64 `json:"min_duration" yaml:"min_duration"`
	// SpatialRadius caps the synthetic distance of reported nearby
	// locations, in proxy miles.
	SpatialRadius float64 `json:"spatial_radius" yaml:"spatial_radius"`
	// ZScoreThreshold is the statistical trigger in standard deviations.
	ZScoreThreshold float64 `json:"z_score_threshold" yaml:"z_score_threshold"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinMagnitude:       5,
		MinDurationMinutes: 15,
		SpatialRadius:      50,
		ZScoreThreshold:    1.5,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if t.MinMagnitude <= 0 {
		t.MinMagnitude = def.MinMagnitude
	}
	if t.MinDurationMinutes <= 0 {
		t.MinDurationMinutes = def.MinDurationMinutes
	}
	if t.SpatialRadius <= 0 {
		t.SpatialRadius = def.SpatialRadius
	}
	if t.ZScoreThreshold <= 0 {
		t.ZScoreThreshold = def.ZScoreThreshold
	}
	return t
}

// Detect scans every location series with a rolling 30-minute baseline and
// returns deduplicated spikes sorted by magnitude descending.
//
// A sample triggers when it is both statistically unusual and large enough
// to matter (z-score and magnitude thresholds together), or when its raw
// deviation alone exceeds twice the magnitude threshold. The two conditions
// are deliberately independent: the raw-magnitude path still fires when a
// volatile window inflates sigma and suppresses the z-score.
func Detect(series []model.LocationSeries, th Thresholds) ([]model.Spike, error) {
	if len(series) == 0 {
		return nil, ErrNoSeries
	}
	th = th.withDefaults()

	var spikes []model.Spike
	for li, s := range series {
		for i := windowSize; i < len(s.Prices); i++ {
			mean, stddev := windowStats(s.Prices[i-windowSize : i])
			price := s.Prices[i].Price
			magnitude := math.Abs(price - mean)

			zScore := 0.0
			if stddev > 0 {
				zScore = magnitude / stddev
			}

			statistical := zScore > th.ZScoreThreshold && magnitude > th.MinMagnitude
			extreme := magnitude > 2*th.MinMagnitude
			if !statistical && !extreme {
				continue
			}

			spikes = append(spikes, buildSpike(series, li, i, mean, magnitude, zScore, th.SpatialRadius))
		}
	}

	collapseWindow := time.Duration(th.MinDurationMinutes * float64(time.Minute))
	spikes = dedupe(spikes, collapseWindow)

	sort.Slice(spikes, func(i, j int) bool {
		if spikes[i].Magnitude != spikes[j].Magnitude {
			return spikes[i].Magnitude > spikes[j].Magnitude
		}
		if !spikes[i].Timestamp.Equal(spikes[j].Timestamp) {
			return spikes[i].Timestamp.Before(spikes[j].Timestamp)
		}
		return spikes[i].Location < spikes[j].Location
	})

	log.Debug().Int("locations", len(series)).Int("spikes", len(spikes)).Msg("spike detection complete")
	return spikes, nil
}

// windowStats returns the population mean and standard deviation.
func windowStats(window []model.PricePoint) (mean, stddev float64) {
	sum := 0.0
	for _, p := range window {
		sum += p.Price
	}
	mean = sum / float64(len(window))

	variance := 0.0
	for _, p := range window {
		d := p.Price - mean
		variance += d * d
	}
	variance /= float64(len(window))
	return mean, math.Sqrt(variance)
}

func buildSpike(series []model.LocationSeries, locIdx, sampleIdx int, baseline, magnitude, zScore, spatialRadius float64) model.Spike {
	point := series[locIdx].Prices[sampleIdx]

	spikeType := model.SpikeNegative
	if point.Price > baseline {
		spikeType = model.SpikePositive
	}

	return model.Spike{
		ID:              uuid.NewString(),
		Timestamp:       point.Timestamp,
		Location:        series[locIdx].Location,
		Price:           point.Price,
		BaselinePrice:   baseline,
		Magnitude:       magnitude,
		Type:            spikeType,
		Severity:        severityFor(magnitude),
		NearbyLocations: nearbyPrices(series, locIdx, sampleIdx, spatialRadius),
		Confidence:      math.Min(zScore/5, 1),
		ZScore:          zScore,
	}
}

// severityFor uses strict comparisons: a magnitude of exactly 50 is high,
// not critical.
func severityFor(magnitude float64) model.Severity {
	switch {
	case magnitude > 50:
		return model.SeverityCritical
	case magnitude > 25:
		return model.SeverityHigh
	case magnitude > 10:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// nearbyPrices collects up to maxNearby other locations' prices at the same
// sample index, filtered to the spatial radius by the index-distance proxy.
func nearbyPrices(series []model.LocationSeries, locIdx, sampleIdx int, spatialRadius float64) []model.NearbyPrice {
	var nearby []model.NearbyPrice
	for lj, other := range series {
		if lj == locIdx || sampleIdx >= len(other.Prices) {
			continue
		}
		distance := math.Abs(float64(locIdx-lj)) * distanceUnitMiles
		if distance > spatialRadius {
			continue
		}
		nearby = append(nearby, model.NearbyPrice{
			Location: other.Location,
			Price:    other.Prices[sampleIdx].Price,
			Distance: distance,
		})
		if len(nearby) == maxNearby {
			break
		}
	}
	return nearby
}

// dedupe collapses same-location spikes whose timestamps fall within the
// collapse window, keeping the higher-magnitude one. The result never holds
// two spikes for one location closer together than the window.
func dedupe(spikes []model.Spike, window time.Duration) []model.Spike {
	byLocation := map[string][]model.Spike{}
	for _, s := range spikes {
		byLocation[s.Location] = append(byLocation[s.Location], s)
	}

	var out []model.Spike
	for _, group := range byLocation {
		sort.Slice(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
		var kept []model.Spike
		for _, s := range group {
			if len(kept) > 0 {
				last := &kept[len(kept)-1]
				if s.Timestamp.Sub(last.Timestamp) <= window {
					if s.Magnitude > last.Magnitude {
						*last = s
					}
					continue
				}
			}
			kept = append(kept, s)
		}
		out = append(out, kept...)
	}
	return out
}
