package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRawRecords_BareArray(t *testing.T) {
	path := writeTemp(t, "feed.json",
		`[{"interval_start_utc":"2024-03-15T08:00:00Z","lmp":45.5}]`)

	records, err := LoadRawRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 45.5, records[0]["lmp"])
}

func TestLoadRawRecords_WrappedResponse(t *testing.T) {
	path := writeTemp(t, "feed.json",
		`{"data":[{"lmp":45.5},{"lmp":46.0}]}`)

	records, err := LoadRawRecords(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLoadRawRecords_InvalidJSON(t *testing.T) {
	path := writeTemp(t, "feed.json", `not json`)
	_, err := LoadRawRecords(path)
	require.Error(t, err)
}

func TestLoadSeries(t *testing.T) {
	path := writeTemp(t, "series.json",
		`[{"location":"NODE_A","prices":[{"location":"NODE_A","timestamp":"2024-03-15T08:00:00Z","price":45.5}]}]`)

	series, err := LoadSeries(path)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "NODE_A", series[0].Location)
	require.Len(t, series[0].Prices, 1)
	assert.Equal(t, 45.5, series[0].Prices[0].Price)
}
