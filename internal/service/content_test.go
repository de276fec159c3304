package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDescription(t *testing.T) {
	desc := DefaultDescription([]string{"Degen Hunter 🐕", "Whale 🐋"}, 12345.67)
	assert.Contains(t, desc, "Degen Hunter 🐕")
	assert.Contains(t, desc, "$12346")

	t.Run("no tags", func(t *testing.T) {
		assert.Contains(t, DefaultDescription(nil, 100), "Mystery Player")
	})
}

func TestDefaultRoastLineBuckets(t *testing.T) {
	cases := []struct {
		pnl    float64
		bucket string
	}{
		{75, "winner"},
		{50.5, "winner"},
		{50, "profit"},
		{10.5, "profit"},
		{10, "breakeven"},
		{0, "breakeven"},
		{-10, "breakeven"},
		{-10.5, "loss"},
		{-50, "loss"},
		{-50.5, "rekt"},
		{-99, "rekt"},
	}

	rng := rand.New(rand.NewSource(1))
	for _, tc := range cases {
		line := DefaultRoastLine(tc.pnl, rng)
		assert.Contains(t, roastLinesByStatus[tc.bucket], line, "pnl %.1f", tc.pnl)
	}
}

func TestFutureMonths(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t,
		[]string{"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12"},
		FutureMonths(now, 6))

	t.Run("year rollover", func(t *testing.T) {
		now := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, []string{"2025-12", "2026-01", "2026-02"}, FutureMonths(now, 3))
	})

	t.Run("end of long month", func(t *testing.T) {
		now := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)
		assert.Equal(t, []string{"2025-02", "2025-03"}, FutureMonths(now, 2))
	})
}

func TestDefaultPredictions(t *testing.T) {
	months := []string{"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12"}
	rng := rand.New(rand.NewSource(42))

	prediction := DefaultPredictions(months, 60, rng)

	require.Len(t, prediction.Predictions, 6)
	assert.Equal(t, "2025-10", prediction.PeakPeriod)
	assert.Equal(t, defaultForecastAdvice, prediction.Advice)

	for i, p := range prediction.Predictions {
		assert.Equal(t, months[i], p.Date)
		assert.GreaterOrEqual(t, p.Score, 20)
		assert.LessOrEqual(t, p.Score, 85)
		assert.Equal(t, defaultPredictionLabels[i], p.Label)
	}
}

func TestDefaultPredictionsShortHorizon(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	prediction := DefaultPredictions([]string{"2025-07", "2025-08"}, 50, rng)

	require.Len(t, prediction.Predictions, 2)
	assert.Equal(t, "2025-08", prediction.PeakPeriod)
}

func TestDefaultPredictionsEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	prediction := DefaultPredictions(nil, 50, rng)
	assert.Empty(t, prediction.Predictions)
	assert.Empty(t, prediction.PeakPeriod)
	assert.Equal(t, defaultForecastAdvice, prediction.Advice)
}
