package data

import (
	"encoding/json"
	"os"

	"gridpulse/internal/model"
)

// LoadRawRecords reads a raw price feed from a JSON file. Accepts either a
// bare array of records or the provider's wrapped {"data": [...]} shape.
func LoadRawRecords(path string) ([]model.RawPriceRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []model.RawPriceRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapped feedResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}

// LoadSeries reads pre-grouped per-location price series from a JSON file.
func LoadSeries(path string) ([]model.LocationSeries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var series []model.LocationSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, err
	}
	return series, nil
}
