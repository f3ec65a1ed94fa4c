package spikes

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"gridpulse/internal/model"
)

// SynthesizeEvents derives grid-level events from detected spikes. Spikes
// are bucketed by hour of day; any hour with at least two produces one
// event, classified by the group's average magnitude. Events are only ever
// derived this way, never created standalone.
func SynthesizeEvents(spikes []model.Spike, date time.Time) []model.GridEvent {
	byHour := map[int][]model.Spike{}
	for _, s := range spikes {
		h := s.Timestamp.UTC().Hour()
		byHour[h] = append(byHour[h], s)
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		if len(byHour[h]) >= 2 {
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)

	events := make([]model.GridEvent, 0, len(hours))
	for _, h := range hours {
		group := byHour[h]

		total := 0.0
		locSet := map[string]struct{}{}
		for _, s := range group {
			total += s.Magnitude
			locSet[s.Location] = struct{}{}
		}
		avgMagnitude := total / float64(len(group))

		locations := make([]string, 0, len(locSet))
		for loc := range locSet {
			locations = append(locations, loc)
		}
		sort.Strings(locations)

		eventType, severity := classify(avgMagnitude)
		events = append(events, model.GridEvent{
			ID:        uuid.NewString(),
			Timestamp: time.Date(date.Year(), date.Month(), date.Day(), h, 0, 0, 0, time.UTC),
			Type:      eventType,
			Description: fmt.Sprintf("%d price spikes across %d locations, average deviation $%.2f/MWh",
				len(group), len(locations), avgMagnitude),
			AffectedLocations: locations,
			EstimatedImpact:   total,
			Severity:          severity,
			Confidence:        math.Min(0.5+0.1*float64(len(group))+avgMagnitude/200, 0.95),
		})
	}
	return events
}

func classify(avgMagnitude float64) (model.GridEventType, model.Severity) {
	switch {
	case avgMagnitude > 100:
		return model.EventMajorOutage, model.SeverityCritical
	case avgMagnitude > 75:
		return model.EventCongestion, model.SeverityHigh
	default:
		return model.EventDisturbance, model.SeverityMedium
	}
}
