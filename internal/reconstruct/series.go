package reconstruct

import (
	"sort"
	"time"

	"gridpulse/internal/model"
)

// locationAliases mirrors the timestamp/price alias lists for the record's
// location field.
var locationAliases = []string{"location", "location_id", "node", "pnode"}

// ParseSeries groups raw records into per-location chronological price
// series using the same alias resolution and price validation as
// reconstruction. Records without a recognizable location land under
// fallbackLocation so single-node feeds still produce one series. Series
// are ordered by location name for deterministic output.
func ParseSeries(raw []model.RawPriceRecord, sourceTZ, fallbackLocation string) ([]model.LocationSeries, error) {
	sourceLoc, err := time.LoadLocation(sourceTZ)
	if err != nil {
		return nil, err
	}

	byLocation := map[string][]model.PricePoint{}
	for _, rec := range raw {
		p, ok := parseRecord(rec, sourceLoc)
		if !ok {
			continue
		}
		loc := resolveLocation(rec, fallbackLocation)
		byLocation[loc] = append(byLocation[loc], model.PricePoint{
			Location:  loc,
			Timestamp: p.ts.UTC(),
			Price:     p.price,
			Quality:   model.QualityActual,
		})
	}

	names := make([]string, 0, len(byLocation))
	for name := range byLocation {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]model.LocationSeries, 0, len(names))
	for _, name := range names {
		points := byLocation[name]
		sort.Slice(points, func(i, j int) bool {
			return points[i].Timestamp.Before(points[j].Timestamp)
		})
		series = append(series, model.LocationSeries{Location: name, Prices: points})
	}
	return series, nil
}

func resolveLocation(rec model.RawPriceRecord, fallback string) string {
	for _, key := range locationAliases {
		if v, ok := rec[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}
