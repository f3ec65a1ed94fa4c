package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gridpulse/internal/model"
)

// Location is one node from the location registry.
type Location struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`   // e.g. "GNODE", "LNODE"
	Market string `json:"market"` // e.g. "CAISO"
}

// LocationList is an ordered registry of locations. The list order is
// meaningful: the spike detector's distance proxy is derived from ordinal
// positions, so adjacent entries are treated as "nearby".
type LocationList struct {
	UpdatedAt string     `json:"updated_at"` // ISO 8601
	Locations []Location `json:"locations"`
}

// LoadLocations loads a location registry from a JSON file.
func LoadLocations(path string) (*LocationList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var list LocationList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse locations file: %w", err)
	}
	return &list, nil
}

// IndexOf returns a location's ordinal position in the registry, or -1.
func (l *LocationList) IndexOf(id string) int {
	for i, loc := range l.Locations {
		if loc.ID == id {
			return i
		}
	}
	return -1
}

// OrderSeries stable-sorts per-location series into registry order.
// Unregistered locations keep their relative order after registered ones.
func (l *LocationList) OrderSeries(series []model.LocationSeries) {
	sort.SliceStable(series, func(i, j int) bool {
		a, b := l.IndexOf(series[i].Location), l.IndexOf(series[j].Location)
		if a == -1 {
			return false
		}
		if b == -1 {
			return true
		}
		return a < b
	})
}
