// Package reconstruct turns incomplete multi-source price records into two
// complete, quality-tagged 24-hour series: an hourly day-ahead series and a
// 15-minute real-time series, both indexed by hour of day in a target
// timezone. Gaps are filled by interpolation from neighboring hours, and as a
// last resort by a fixed default, with every hour's provenance recorded in
// the result metadata.
package reconstruct

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gridpulse/internal/model"
)

// ErrDataUnavailable is returned when both raw feeds are empty after
// parsing. Individual malformed records never cause it; they are skipped.
var ErrDataUnavailable = errors.New("no price data available for the requested date")

const (
	hoursPerDay      = 24
	intervalsPerHour = 4

	// defaultPrice fills hours with no observations and no usable neighbor,
	// roughly an off-peak LMP in $/MWh.
	defaultPrice = 50.0
)

// borrowVariance spreads a borrowed day-ahead price across the four
// real-time intervals of a data-free hour. Fixed multipliers rather than
// random jitter, so repeated reconstructions of the same inputs agree.
var borrowVariance = [intervalsPerHour]float64{-0.015, -0.005, 0.005, 0.015}

// Result is a complete reconstructed trading day.
type Result struct {
	DayAhead []model.HourlyDayAheadEntry  `json:"day_ahead_prices"`
	RealTime []model.HourlyRealTimeEntry  `json:"real_time_prices"`
	Metadata model.ReconstructionMetadata `json:"metadata"`
}

type bucket struct {
	sum   float64
	count int
}

func (b *bucket) add(v float64) {
	b.sum += v
	b.count++
}

func (b *bucket) avg() float64 {
	return b.sum / float64(b.count)
}

// Reconstruct builds the day-ahead and real-time series for targetDate.
// Records are grouped by their hour of day in the source market timezone;
// output hours 0..23 are target-timezone hours, each re-indexed to its
// source hour on that specific date.
func Reconstruct(rawDayAhead, rawRealTime []model.RawPriceRecord, sourceTZ, targetTZ string, targetDate time.Time) (*Result, error) {
	sourceLoc, err := time.LoadLocation(sourceTZ)
	if err != nil {
		return nil, fmt.Errorf("load source timezone %q: %w", sourceTZ, err)
	}
	targetLoc, err := time.LoadLocation(targetTZ)
	if err != nil {
		return nil, fmt.Errorf("load target timezone %q: %w", targetTZ, err)
	}

	daBuckets, daValid := bucketHourly(rawDayAhead, sourceLoc, "day_ahead")
	rtBuckets, rtValid := bucketIntervals(rawRealTime, sourceLoc)

	if daValid == 0 && rtValid == 0 {
		return nil, ErrDataUnavailable
	}

	meta := model.ReconstructionMetadata{
		ActualHours:       []int{},
		InterpolatedHours: []int{},
		FallbackHours:     []int{},
		TotalRecords:      model.RecordCounts{DayAhead: daValid, RealTime: rtValid},
		Timezone:          targetTZ,
		SourceTimezone:    sourceTZ,
	}

	dayAhead := make([]model.HourlyDayAheadEntry, 0, hoursPerDay)
	for h := 0; h < hoursPerDay; h++ {
		sh := sourceHourFor(targetDate, h, targetLoc, sourceLoc)
		if b, ok := daBuckets[sh]; ok {
			dayAhead = append(dayAhead, model.HourlyDayAheadEntry{
				Hour:        h,
				Price:       b.avg(),
				Quality:     model.QualityActual,
				RecordCount: b.count,
				SourceHour:  sh,
			})
			meta.ActualHours = append(meta.ActualHours, h)
			continue
		}
		price, quality := fillDayAheadGap(dayAhead, daBuckets, h, sh)
		dayAhead = append(dayAhead, model.HourlyDayAheadEntry{
			Hour:       h,
			Price:      price,
			Quality:    quality,
			SourceHour: sh,
		})
		if quality == model.QualityInterpolated {
			meta.InterpolatedHours = append(meta.InterpolatedHours, h)
		} else {
			meta.FallbackHours = append(meta.FallbackHours, h)
		}
	}

	realTime := make([]model.HourlyRealTimeEntry, 0, hoursPerDay)
	for h := 0; h < hoursPerDay; h++ {
		sh := sourceHourFor(targetDate, h, targetLoc, sourceLoc)
		realTime = append(realTime, buildRealTimeHour(h, sh, rtBuckets[sh], dayAhead[h].Price))
	}

	log.Debug().
		Int("day_ahead_records", daValid).
		Int("real_time_records", rtValid).
		Int("actual_hours", len(meta.ActualHours)).
		Int("interpolated_hours", len(meta.InterpolatedHours)).
		Int("fallback_hours", len(meta.FallbackHours)).
		Str("date", targetDate.Format("2006-01-02")).
		Msg("reconstruction complete")

	return &Result{DayAhead: dayAhead, RealTime: realTime, Metadata: meta}, nil
}

func bucketHourly(raw []model.RawPriceRecord, sourceLoc *time.Location, feed string) (map[int]*bucket, int) {
	buckets := map[int]*bucket{}
	valid := 0
	for _, rec := range raw {
		p, ok := parseRecord(rec, sourceLoc)
		if !ok {
			log.Debug().Str("feed", feed).Msg("skipping malformed price record")
			continue
		}
		h := p.ts.In(sourceLoc).Hour()
		b, ok := buckets[h]
		if !ok {
			b = &bucket{}
			buckets[h] = b
		}
		b.add(p.price)
		valid++
	}
	return buckets, valid
}

func bucketIntervals(raw []model.RawPriceRecord, sourceLoc *time.Location) (map[int]map[int]*bucket, int) {
	buckets := map[int]map[int]*bucket{}
	valid := 0
	for _, rec := range raw {
		p, ok := parseRecord(rec, sourceLoc)
		if !ok {
			log.Debug().Str("feed", "real_time").Msg("skipping malformed price record")
			continue
		}
		local := p.ts.In(sourceLoc)
		h, iv := local.Hour(), local.Minute()/15
		hb, ok := buckets[h]
		if !ok {
			hb = map[int]*bucket{}
			buckets[h] = hb
		}
		b, ok := hb[iv]
		if !ok {
			b = &bucket{}
			hb[iv] = b
		}
		b.add(p.price)
		valid++
	}
	return buckets, valid
}

// fillDayAheadGap resolves a target hour with no source-hour data. It
// interpolates between the nearest already-resolved previous target hour and
// the nearest forward source-hour bucket; with only one anchor it copies that
// anchor; with neither it falls back to the default price. Copying a
// neighbor still counts as interpolation (the value is derived from observed
// data); only the default counts as fallback.
func fillDayAheadGap(resolved []model.HourlyDayAheadEntry, daBuckets map[int]*bucket, hour, sourceHour int) (float64, model.Quality) {
	var prev *float64
	prevDist := 0
	for i := len(resolved) - 1; i >= 0; i-- {
		if resolved[i].Quality == model.QualityFallback {
			continue
		}
		p := resolved[i].Price
		prev = &p
		prevDist = hour - resolved[i].Hour
		break
	}

	var next *float64
	nextDist := 0
	for d := 1; d < hoursPerDay; d++ {
		if b, ok := daBuckets[(sourceHour+d)%hoursPerDay]; ok {
			v := b.avg()
			next = &v
			nextDist = d
			break
		}
	}

	switch {
	case prev != nil && next != nil:
		frac := float64(prevDist) / float64(prevDist+nextDist)
		return *prev + (*next-*prev)*frac, model.QualityInterpolated
	case prev != nil:
		return *prev, model.QualityInterpolated
	case next != nil:
		return *next, model.QualityInterpolated
	default:
		return defaultPrice, model.QualityFallback
	}
}

// buildRealTimeHour assembles one real-time hour. An hour with all four
// intervals observed is actual; with some observed, each missing interval
// copies the hour's overall average and the hour is partial; with none, all
// four intervals borrow the day-ahead price with a small fixed variance and
// the hour is fallback.
func buildRealTimeHour(hour, sourceHour int, hb map[int]*bucket, dayAheadPrice float64) model.HourlyRealTimeEntry {
	intervals := make([]model.IntervalPrice, 0, intervalsPerHour)

	if len(hb) == 0 {
		for i := 0; i < intervalsPerHour; i++ {
			intervals = append(intervals, model.IntervalPrice{
				Interval: i,
				Price:    dayAheadPrice * (1 + borrowVariance[i]),
				Quality:  model.QualityFallback,
			})
		}
		return model.HourlyRealTimeEntry{
			Hour:       hour,
			Quality:    model.QualityFallback,
			SourceHour: sourceHour,
			Intervals:  intervals,
		}
	}

	sum := 0.0
	count := 0
	for _, b := range hb {
		sum += b.sum
		count += b.count
	}
	hourAvg := sum / float64(count)

	observed := 0
	for i := 0; i < intervalsPerHour; i++ {
		if b, ok := hb[i]; ok {
			intervals = append(intervals, model.IntervalPrice{
				Interval: i,
				Price:    b.avg(),
				Quality:  model.QualityActual,
			})
			observed++
			continue
		}
		intervals = append(intervals, model.IntervalPrice{
			Interval: i,
			Price:    hourAvg,
			Quality:  model.QualityFallback,
		})
	}

	quality := model.QualityActual
	if observed < intervalsPerHour {
		quality = model.QualityPartial
	}
	return model.HourlyRealTimeEntry{
		Hour:        hour,
		Quality:     quality,
		RecordCount: count,
		SourceHour:  sourceHour,
		Intervals:   intervals,
	}
}
