package reconstruct

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gridpulse/internal/model"
)

// Accepted field aliases for raw feed records, tried in order; first match
// wins. Datasets disagree on naming (Grid Status uses interval_start_utc/lmp,
// other feeds use timestamp/price variants), so the alias list is resolved
// once per record instead of probing ad hoc at each use site.
var (
	timestampAliases = []string{
		"interval_start_utc",
		"interval_start_local",
		"timestamp",
		"datetime",
		"time",
		"interval_start",
	}
	priceAliases = []string{"lmp", "price", "energy_price", "da_lmp", "rt_lmp"}
)

// Prices outside (0, maxValidPrice] $/MWh are treated as feed garbage.
const maxValidPrice = 10000.0

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type parsedRecord struct {
	ts    time.Time
	price float64
}

// parseRecord resolves the timestamp and price of one raw record. Layouts
// without an explicit offset are interpreted in the source market timezone.
// The bool result is false for records that should be skipped; a skip never
// aborts reconstruction.
func parseRecord(rec model.RawPriceRecord, sourceLoc *time.Location) (parsedRecord, bool) {
	ts, ok := resolveTimestamp(rec, sourceLoc)
	if !ok {
		return parsedRecord{}, false
	}
	price, ok := resolvePrice(rec)
	if !ok {
		return parsedRecord{}, false
	}
	return parsedRecord{ts: ts, price: price}, true
}

func resolveTimestamp(rec model.RawPriceRecord, sourceLoc *time.Location) (time.Time, bool) {
	for _, key := range timestampAliases {
		v, present := rec[key]
		if !present || v == nil {
			continue
		}
		if ts, ok := coerceTimestamp(v, sourceLoc); ok {
			return ts, true
		}
		// Alias matched but the value is unusable; the record is malformed
		// rather than differently named, so stop probing.
		return time.Time{}, false
	}
	return time.Time{}, false
}

func coerceTimestamp(v any, sourceLoc *time.Location) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.ParseInLocation(layout, s, sourceLoc); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case float64:
		return epochToTime(t), t > 0
	case int64:
		return epochToTime(float64(t)), t > 0
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochToTime(f), f > 0
	default:
		return time.Time{}, false
	}
}

// epochToTime accepts either epoch seconds or epoch milliseconds; anything
// past the year ~33000 in seconds is assumed to be milliseconds.
func epochToTime(v float64) time.Time {
	const msThreshold = 1e12
	if v >= msThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

func resolvePrice(rec model.RawPriceRecord) (float64, bool) {
	for _, key := range priceAliases {
		v, present := rec[key]
		if !present || v == nil {
			continue
		}
		p, ok := coerceFloat(v)
		if !ok {
			return 0, false
		}
		// Accept-form bounds check so NaN (which fails every comparison)
		// is rejected rather than slipping through a reject-form one.
		if !(p > 0 && p <= maxValidPrice) {
			return 0, false
		}
		return p, true
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	case json.Number:
		out, err := f.Float64()
		return out, err == nil
	case string:
		out, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		return out, err == nil
	default:
		return 0, false
	}
}
