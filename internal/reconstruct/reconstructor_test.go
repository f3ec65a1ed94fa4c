package reconstruct

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpulse/internal/model"
)

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func daRecord(hour int, price float64) model.RawPriceRecord {
	return model.RawPriceRecord{
		"interval_start_utc": fmt.Sprintf("2024-03-15T%02d:00:00Z", hour),
		"lmp":                price,
	}
}

func rtRecord(hour, minute int, price float64) model.RawPriceRecord {
	return model.RawPriceRecord{
		"interval_start_utc": fmt.Sprintf("2024-03-15T%02d:%02d:00Z", hour, minute),
		"lmp":                price,
	}
}

func fullDayAhead(price float64) []model.RawPriceRecord {
	recs := make([]model.RawPriceRecord, 0, 24)
	for h := 0; h < 24; h++ {
		recs = append(recs, daRecord(h, price))
	}
	return recs
}

func fullRealTime(price float64) []model.RawPriceRecord {
	recs := make([]model.RawPriceRecord, 0, 24*4)
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 15, 30, 45} {
			recs = append(recs, rtRecord(h, m, price))
		}
	}
	return recs
}

func assertPartition(t *testing.T, meta model.ReconstructionMetadata) {
	t.Helper()
	seen := map[int]int{}
	for _, h := range meta.ActualHours {
		seen[h]++
	}
	for _, h := range meta.InterpolatedHours {
		seen[h]++
	}
	for _, h := range meta.FallbackHours {
		seen[h]++
	}
	require.Len(t, seen, 24, "hours must cover 0..23")
	for h := 0; h < 24; h++ {
		require.Equal(t, 1, seen[h], "hour %d must appear in exactly one tier", h)
	}
}

func TestReconstruct_CompleteDay(t *testing.T) {
	result, err := Reconstruct(fullDayAhead(45), fullRealTime(47), "UTC", "UTC", testDate)
	require.NoError(t, err)

	require.Len(t, result.DayAhead, 24)
	require.Len(t, result.RealTime, 24)
	for h := 0; h < 24; h++ {
		assert.Equal(t, h, result.DayAhead[h].Hour)
		assert.Equal(t, h, result.RealTime[h].Hour)
		assert.Equal(t, model.QualityActual, result.DayAhead[h].Quality)
		assert.Equal(t, model.QualityActual, result.RealTime[h].Quality)
		assert.Equal(t, 45.0, result.DayAhead[h].Price)
		require.Len(t, result.RealTime[h].Intervals, 4)
	}
	assert.Len(t, result.Metadata.ActualHours, 24)
	assert.Empty(t, result.Metadata.InterpolatedHours)
	assert.Empty(t, result.Metadata.FallbackHours)
	assert.Equal(t, 24, result.Metadata.TotalRecords.DayAhead)
	assert.Equal(t, 96, result.Metadata.TotalRecords.RealTime)
	assertPartition(t, result.Metadata)
}

func TestReconstruct_SparseInputStillYields24Hours(t *testing.T) {
	rawDA := []model.RawPriceRecord{daRecord(3, 40), daRecord(9, 60)}
	result, err := Reconstruct(rawDA, nil, "UTC", "UTC", testDate)
	require.NoError(t, err)

	require.Len(t, result.DayAhead, 24)
	require.Len(t, result.RealTime, 24)
	for h := 0; h < 24; h++ {
		require.Equal(t, h, result.DayAhead[h].Hour)
	}
	assert.ElementsMatch(t, []int{3, 9}, result.Metadata.ActualHours)
	assertPartition(t, result.Metadata)
}

func TestReconstruct_BothFeedsEmpty(t *testing.T) {
	_, err := Reconstruct(nil, nil, "UTC", "UTC", testDate)
	require.ErrorIs(t, err, ErrDataUnavailable)
}

func TestReconstruct_OnlyMalformedRecordsIsUnavailable(t *testing.T) {
	rawDA := []model.RawPriceRecord{
		{"timestamp": "garbage", "price": 50.0},
		{"timestamp": "2024-03-15T08:00:00Z", "price": -5.0},
	}
	_, err := Reconstruct(rawDA, nil, "UTC", "UTC", testDate)
	require.ErrorIs(t, err, ErrDataUnavailable)
}

func TestReconstruct_MalformedRecordsSkippedNotFatal(t *testing.T) {
	rawDA := append(fullDayAhead(45),
		model.RawPriceRecord{"timestamp": "garbage", "price": 50.0},
		model.RawPriceRecord{"timestamp": "2024-03-15T08:00:00Z", "price": 99999.0},
	)
	result, err := Reconstruct(rawDA, nil, "UTC", "UTC", testDate)
	require.NoError(t, err)
	assert.Equal(t, 24, result.Metadata.TotalRecords.DayAhead)
}

func TestReconstruct_NaNPriceNeverEntersSeries(t *testing.T) {
	// A feed whose only record carries a NaN price has no usable data, and
	// the NaN must not leak into any hour via averaging or interpolation.
	nanOnly := []model.RawPriceRecord{{"interval_start_utc": "2024-03-15T05:00:00Z", "lmp": "NaN"}}
	_, err := Reconstruct(nanOnly, nil, "UTC", "UTC", testDate)
	require.ErrorIs(t, err, ErrDataUnavailable)

	rawDA := append(fullDayAhead(45),
		model.RawPriceRecord{"interval_start_utc": "2024-03-15T05:00:00Z", "lmp": "NaN"})
	result, err := Reconstruct(rawDA, nil, "UTC", "UTC", testDate)
	require.NoError(t, err)
	assert.Equal(t, 24, result.Metadata.TotalRecords.DayAhead)
	for h := 0; h < 24; h++ {
		require.False(t, math.IsNaN(result.DayAhead[h].Price), "hour %d", h)
		assert.Equal(t, 45.0, result.DayAhead[h].Price)
	}
	assert.Equal(t, 1, result.DayAhead[5].RecordCount)
}

func TestReconstruct_InvalidTimezone(t *testing.T) {
	_, err := Reconstruct(fullDayAhead(45), nil, "Not/AZone", "UTC", testDate)
	require.Error(t, err)
}

func TestReconstruct_MultipleRecordsPerHourAreAveraged(t *testing.T) {
	rawDA := []model.RawPriceRecord{daRecord(5, 40), daRecord(5, 60)}
	result, err := Reconstruct(rawDA, nil, "UTC", "UTC", testDate)
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.DayAhead[5].Price)
	assert.Equal(t, 2, result.DayAhead[5].RecordCount)
}

func TestReconstruct_GapInterpolation(t *testing.T) {
	// Observations at hours 10 and 14; hour 11 interpolates between its
	// previous resolved hour (10) and the next source bucket (14).
	rawDA := []model.RawPriceRecord{daRecord(10, 40), daRecord(14, 80)}
	result, err := Reconstruct(rawDA, nil, "UTC", "UTC", testDate)
	require.NoError(t, err)

	h11 := result.DayAhead[11]
	assert.Equal(t, model.QualityInterpolated, h11.Quality)
	assert.InDelta(t, 50.0, h11.Price, 1e-9) // 40 + (80-40) * 1/(1+3)

	// Hours before the first observation copy forward from it.
	h0 := result.DayAhead[0]
	assert.Equal(t, model.QualityInterpolated, h0.Quality)
	assert.Equal(t, 40.0, h0.Price)

	// Hours after the last observation copy back from the nearest resolved
	// previous hour.
	h23 := result.DayAhead[23]
	assert.Equal(t, model.QualityInterpolated, h23.Quality)

	assertPartition(t, result.Metadata)
}

func TestReconstruct_NoDayAheadDataFallsBackEveryHour(t *testing.T) {
	// Real-time data only: every day-ahead hour takes the default price and
	// is classified fallback, never a cascade of copies of the default.
	result, err := Reconstruct(nil, fullRealTime(55), "UTC", "UTC", testDate)
	require.NoError(t, err)

	require.Len(t, result.Metadata.FallbackHours, 24)
	for h := 0; h < 24; h++ {
		assert.Equal(t, model.QualityFallback, result.DayAhead[h].Quality)
		assert.Equal(t, defaultPrice, result.DayAhead[h].Price)
	}
	assertPartition(t, result.Metadata)
}

func TestReconstruct_RealTimePartialHour(t *testing.T) {
	// Hour 8 has only intervals 0 and 1; the missing two copy the hour
	// average and the hour is partial.
	rawRT := []model.RawPriceRecord{rtRecord(8, 0, 40), rtRecord(8, 20, 60)}
	result, err := Reconstruct(fullDayAhead(45), rawRT, "UTC", "UTC", testDate)
	require.NoError(t, err)

	h8 := result.RealTime[8]
	assert.Equal(t, model.QualityPartial, h8.Quality)
	assert.Equal(t, 2, h8.RecordCount)
	require.Len(t, h8.Intervals, 4)
	assert.Equal(t, model.QualityActual, h8.Intervals[0].Quality)
	assert.Equal(t, 40.0, h8.Intervals[0].Price)
	assert.Equal(t, model.QualityActual, h8.Intervals[1].Quality)
	assert.Equal(t, 60.0, h8.Intervals[1].Price)
	assert.Equal(t, model.QualityFallback, h8.Intervals[2].Quality)
	assert.Equal(t, 50.0, h8.Intervals[2].Price)
	assert.Equal(t, model.QualityFallback, h8.Intervals[3].Quality)
}

func TestReconstruct_RealTimeEmptyHourBorrowsDayAhead(t *testing.T) {
	result, err := Reconstruct(fullDayAhead(60), nil, "UTC", "UTC", testDate)
	require.NoError(t, err)

	h5 := result.RealTime[5]
	assert.Equal(t, model.QualityFallback, h5.Quality)
	assert.Equal(t, 0, h5.RecordCount)
	require.Len(t, h5.Intervals, 4)
	for _, iv := range h5.Intervals {
		assert.Equal(t, model.QualityFallback, iv.Quality)
		assert.InDelta(t, 60.0, iv.Price, 60.0*0.02)
	}
	// The variance multipliers are symmetric, so the hour's settlement
	// price equals the borrowed day-ahead price.
	assert.InDelta(t, 60.0, h5.SettlementPrice(), 1e-9)
}

func TestReconstruct_Deterministic(t *testing.T) {
	rawDA := []model.RawPriceRecord{daRecord(3, 40), daRecord(9, 60)}
	rawRT := []model.RawPriceRecord{rtRecord(8, 0, 40), rtRecord(8, 20, 60)}

	first, err := Reconstruct(rawDA, rawRT, "UTC", "UTC", testDate)
	require.NoError(t, err)
	second, err := Reconstruct(rawDA, rawRT, "UTC", "UTC", testDate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReconstruct_TimezoneReindexing(t *testing.T) {
	// Source market in New York, presentation in UTC, winter date: source
	// hour 19 holds the data for target hour 0.
	winter := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rawDA := []model.RawPriceRecord{{
		"interval_start_utc": "2024-01-15T00:00:00Z", // 19:00 EST
		"lmp":                42.0,
	}}
	result, err := Reconstruct(rawDA, nil, "America/New_York", "UTC", winter)
	require.NoError(t, err)

	h0 := result.DayAhead[0]
	assert.Equal(t, 19, h0.SourceHour)
	assert.Equal(t, model.QualityActual, h0.Quality)
	assert.Equal(t, 42.0, h0.Price)
}
