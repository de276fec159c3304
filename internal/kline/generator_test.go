package kline

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-fortune/internal/models"
	"github.com/wallet-fortune/internal/types"
)

type stubPrices struct {
	candles []models.Candle
	err     error
	calls   int
}

func (s *stubPrices) HistoricalOHLC(_ context.Context, _ string, _ int) ([]models.Candle, error) {
	s.calls++
	return s.candles, s.err
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestGenerator(prices OHLCSource, seed int64) *Generator {
	return NewGenerator(prices, rand.New(rand.NewSource(seed)), fixedNow, zerolog.Nop())
}

func simulatedInput() Input {
	return Input{
		Holdings:      []models.Holding{{Symbol: "SOL", ValueUSD: 5000}},
		FirstTxDate:   time.Date(2023, 9, 10, 0, 0, 0, 0, time.UTC),
		TotalValueUSD: 5000,
		PnlPercent:    42,
		TxCount30d:    13,
	}
}

func TestSimulatedSeries(t *testing.T) {
	g := newTestGenerator(nil, 1)
	series := g.Generate(context.Background(), simulatedInput())

	require.NotNil(t, series)
	assert.Equal(t, types.SeriesModeSimulated, series.Mode)

	// 2023-09 through 2025-06 inclusive
	require.Len(t, series.Points, 22)
	assert.Equal(t, "2023-09", series.Points[0].Date)
	assert.Equal(t, "2025-06", series.Points[len(series.Points)-1].Date)

	t.Run("first month is tagged as the first transaction", func(t *testing.T) {
		assert.Equal(t, "First Transaction", series.Points[0].Event)
	})

	t.Run("event calendar months are annotated", func(t *testing.T) {
		byDate := map[string]models.SeriesPoint{}
		for _, p := range series.Points {
			byDate[p.Date] = p
		}
		assert.Equal(t, "Bull Market Begins", byDate["2023-10"].Event)
		assert.Equal(t, "BTC ETF Approved", byDate["2024-01"].Event)
		assert.Equal(t, "BTC Halving", byDate["2024-04"].Event)
	})

	t.Run("final month lands on the wallet's real pnl", func(t *testing.T) {
		last := series.Points[len(series.Points)-1]
		assert.InDelta(t, 42.0, last.PnlPercent, 0.05)
		assert.Equal(t, fortuneScore(42), last.Score)
		assert.Equal(t, 13, last.Volume)
	})

	t.Run("first candle opens at the neutral score", func(t *testing.T) {
		assert.Equal(t, 50, series.Points[0].Open)
	})

	assertSeriesInvariants(t, series.Points)
}

func TestSimulatedSeriesFirstTxInCurrentMonth(t *testing.T) {
	g := newTestGenerator(nil, 3)
	input := simulatedInput()
	input.FirstTxDate = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	series := g.Generate(context.Background(), input)
	require.Len(t, series.Points, 1)
	assert.Equal(t, "2025-06", series.Points[0].Date)
	assert.Equal(t, "First Transaction", series.Points[0].Event)
	assert.Equal(t, input.TxCount30d, series.Points[0].Volume)
}

func TestFortuneScore(t *testing.T) {
	assert.Equal(t, 50, fortuneScore(0))
	assert.Equal(t, 90, fortuneScore(100))
	assert.Equal(t, 10, fortuneScore(-100))
	// extreme values clamp after PnL is limited to [-200, 500]
	assert.Equal(t, 10, fortuneScore(-500))
	assert.Equal(t, 95, fortuneScore(1000))
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "Main Uptrend", scoreLabel(85, 70))
	assert.Equal(t, "Mini Bull Run", scoreLabel(72, 65))
	assert.Equal(t, "Darkest Hour", scoreLabel(20, 35))
	assert.Equal(t, "Trough", scoreLabel(38, 45))
	assert.Equal(t, "Sideways Chop", scoreLabel(50, 51))
	assert.Equal(t, "", scoreLabel(60, 50))
}

func TestDeltaLabel(t *testing.T) {
	// real-data candles tag on the delta alone, regardless of level
	assert.Equal(t, "Main Uptrend", deltaLabel(11))
	assert.Equal(t, "Mini Bull Run", deltaLabel(6))
	assert.Equal(t, "Darkest Hour", deltaLabel(-11))
	assert.Equal(t, "Trough", deltaLabel(-6))
	assert.Equal(t, "Sideways Chop", deltaLabel(-2))
	assert.Equal(t, "", deltaLabel(4))
}

func TestRealSeries(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	candles := []models.Candle{
		{Timestamp: base, Close: 100},
		{Timestamp: base + day, Close: 150},
		{Timestamp: base + 2*day, Close: 50},
		{Timestamp: base + 3*day, Close: 125},
	}
	prices := &stubPrices{candles: candles}

	g := newTestGenerator(prices, 2)
	series := g.Generate(context.Background(), simulatedInput())

	require.NotNil(t, series)
	assert.Equal(t, types.SeriesModeReal, series.Mode)
	assert.Equal(t, "SOL", series.Summary.AssetName)
	require.Len(t, series.Points, 4)

	t.Run("closes normalize linearly into the score band", func(t *testing.T) {
		// min close 50 -> 10, max close 150 -> 90
		assert.Equal(t, 50, series.Points[0].Score)
		assert.Equal(t, 90, series.Points[1].Score)
		assert.Equal(t, 10, series.Points[2].Score)
		assert.Equal(t, 70, series.Points[3].Score)
	})

	t.Run("candles are dated from the provider timestamps", func(t *testing.T) {
		assert.Equal(t, "2025-01-01", series.Points[0].Date)
		assert.Equal(t, "2025-01-04", series.Points[3].Date)
	})

	assertSeriesInvariants(t, series.Points)
}

func TestRealSeriesFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		prices OHLCSource
	}{
		{"provider error", &stubPrices{err: errors.New("rate limited")}},
		{"empty window", &stubPrices{}},
		{"flat window", &stubPrices{candles: []models.Candle{{Close: 10}, {Close: 10}}}},
		{"nil provider", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(tt.prices, 4)
			series := g.Generate(context.Background(), simulatedInput())
			require.NotNil(t, series)
			assert.Equal(t, types.SeriesModeSimulated, series.Mode)
			assert.NotEmpty(t, series.Points)
		})
	}
}

func TestRealSeriesSkippedWithoutHoldings(t *testing.T) {
	prices := &stubPrices{candles: []models.Candle{{Close: 1}, {Close: 2}}}
	g := newTestGenerator(prices, 5)

	input := simulatedInput()
	input.Holdings = nil

	series := g.Generate(context.Background(), input)
	assert.Equal(t, types.SeriesModeSimulated, series.Mode)
	assert.Zero(t, prices.calls)
}

func TestSplicePrediction(t *testing.T) {
	g := newTestGenerator(nil, 6)
	series := g.Generate(context.Background(), simulatedInput())
	historyLen := len(series.Points)
	lastClose := series.Points[historyLen-1].Close

	prediction := &models.SeriesPrediction{
		Predictions: []models.PredictedPoint{
			{Date: "2025-07", Score: 60, Label: "Momentum Builds"},
			{Date: "2025-08", Score: 80, Label: "Harvest Season"},
			{Date: "2025-09", Score: 55},
		},
		Advice: "Take profits on the way up",
	}

	spliced := g.SplicePrediction(series, prediction)
	require.Len(t, spliced.Points, historyLen+3)

	t.Run("original series is not mutated", func(t *testing.T) {
		assert.Len(t, series.Points, historyLen)
		assert.Empty(t, series.Summary.NextPeak)
	})

	t.Run("first predicted candle opens at the last history close", func(t *testing.T) {
		first := spliced.Points[historyLen]
		assert.Equal(t, lastClose, first.Open)
		assert.Equal(t, types.PointKindPrediction, first.Kind)
	})

	t.Run("summary records the forecast peak and advice", func(t *testing.T) {
		assert.Equal(t, "2025-08", spliced.Summary.NextPeak)
		assert.Equal(t, "Take profits on the way up", spliced.Summary.Advice)
	})

	t.Run("predicted candles stay continuous", func(t *testing.T) {
		for i := historyLen + 1; i < len(spliced.Points); i++ {
			assert.Equal(t, spliced.Points[i-1].Close, spliced.Points[i].Open)
		}
	})
}

func TestSplicePredictionCompoundsInRealMode(t *testing.T) {
	day := int64(24 * time.Hour / time.Millisecond)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	prices := &stubPrices{candles: []models.Candle{
		{Timestamp: base, Close: 100},
		{Timestamp: base + day, Close: 200},
		{Timestamp: base + 2*day, Close: 160},
	}}

	g := newTestGenerator(prices, 7)
	series := g.Generate(context.Background(), simulatedInput())
	require.Equal(t, types.SeriesModeReal, series.Mode)
	lastClose := series.Points[len(series.Points)-1].Close

	spliced := g.SplicePrediction(series, &models.SeriesPrediction{
		Predictions: []models.PredictedPoint{
			{Date: "2025-04", Score: 50},
			{Date: "2025-05", Score: 95},
		},
	})

	preds := spliced.Points[len(spliced.Points)-2:]

	// neutral score 50 means zero relative change
	assert.Equal(t, lastClose, preds[0].Open)
	assert.Equal(t, lastClose, preds[0].Close)

	// score 95 compounds the running close up by (95-50)/1500 = 3%
	assert.Equal(t, preds[0].Close, preds[1].Open)
	assert.Greater(t, preds[1].Close, preds[1].Open-1)
}

func TestSplicePredictionRealModePeakTracksClose(t *testing.T) {
	g := newTestGenerator(nil, 9)

	// Hand-built real-mode tail so the compounded closes are exact: from 90,
	// scores 99/60/1 land at closes 93, 94, 91. The highest close belongs to
	// the second prediction even though the first carries the highest score.
	series := &models.FortuneSeries{
		Mode: types.SeriesModeReal,
		Points: []models.SeriesPoint{
			{Date: "2026-08-31", Score: 90, Open: 88, Close: 90, High: 92, Low: 87, Kind: types.PointKindHistory},
		},
	}

	spliced := g.SplicePrediction(series, &models.SeriesPrediction{
		Predictions: []models.PredictedPoint{
			{Date: "2026-09", Score: 99},
			{Date: "2026-10", Score: 60},
			{Date: "2026-11", Score: 1},
		},
	})

	preds := spliced.Points[1:]
	require.Len(t, preds, 3)
	assert.Equal(t, []int{93, 94, 91}, []int{preds[0].Close, preds[1].Close, preds[2].Close})
	assert.Equal(t, "2026-10", spliced.Summary.NextPeak)
}

func TestSplicePredictionNoop(t *testing.T) {
	g := newTestGenerator(nil, 8)
	series := g.Generate(context.Background(), simulatedInput())

	assert.Same(t, series, g.SplicePrediction(series, nil))
	assert.Same(t, series, g.SplicePrediction(series, &models.SeriesPrediction{}))
	assert.Nil(t, g.SplicePrediction(nil, &models.SeriesPrediction{}))
}

func TestSummaryTrend(t *testing.T) {
	point := func(date string, score int) models.SeriesPoint {
		return models.SeriesPoint{Date: date, Score: score}
	}

	t.Run("rising tail trends up", func(t *testing.T) {
		s := buildSummary([]models.SeriesPoint{point("a", 40), point("b", 45), point("c", 50)})
		assert.Equal(t, types.TrendUp, s.Trend)
	})

	t.Run("falling tail trends down", func(t *testing.T) {
		s := buildSummary([]models.SeriesPoint{point("a", 60), point("b", 50), point("c", 40)})
		assert.Equal(t, types.TrendDown, s.Trend)
	})

	t.Run("flat tail is sideways", func(t *testing.T) {
		s := buildSummary([]models.SeriesPoint{point("a", 50), point("b", 48), point("c", 52)})
		assert.Equal(t, types.TrendSideways, s.Trend)
	})

	t.Run("best and worst periods track extreme scores", func(t *testing.T) {
		s := buildSummary([]models.SeriesPoint{point("a", 30), point("b", 90), point("c", 15), point("d", 60)})
		assert.Equal(t, "b", s.BestPeriod)
		assert.Equal(t, "c", s.WorstPeriod)
		assert.Equal(t, 60, s.CurrentScore)
	})

	t.Run("empty series gets neutral defaults", func(t *testing.T) {
		s := buildSummary(nil)
		assert.Equal(t, 50, s.CurrentScore)
		assert.Equal(t, "-", s.BestPeriod)
	})
}

// assertSeriesInvariants checks the candle invariants over a history segment:
// every open equals the previous close and high/low envelope the body.
func assertSeriesInvariants(t *testing.T, points []models.SeriesPoint) {
	t.Helper()
	for i, p := range points {
		if i > 0 {
			assert.Equal(t, points[i-1].Close, p.Open, "open continuity at %d", i)
		}
		lo, hi := p.Open, p.Close
		if lo > hi {
			lo, hi = hi, lo
		}
		assert.LessOrEqual(t, p.Low, lo, "low bound at %d", i)
		assert.GreaterOrEqual(t, p.High, hi, "high bound at %d", i)
	}
}

func TestSeriesInvariantsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("simulated series keeps candle invariants for any wallet", prop.ForAll(
		func(pnl float64, txCount int, monthsBack int, seed int64) bool {
			g := newTestGenerator(nil, seed)
			series := g.Generate(context.Background(), Input{
				FirstTxDate: fixedNow().AddDate(0, -monthsBack, 0),
				PnlPercent:  pnl,
				TxCount30d:  txCount,
			})

			if series.Mode != types.SeriesModeSimulated || len(series.Points) == 0 {
				return false
			}
			for i, p := range series.Points {
				if p.Score < 10 || p.Score > 95 {
					return false
				}
				if i > 0 && p.Open != series.Points[i-1].Close {
					return false
				}
				lo, hi := p.Open, p.Close
				if lo > hi {
					lo, hi = hi, lo
				}
				if p.Low > lo || p.High < hi {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-300, 800),
		gen.IntRange(0, 500),
		gen.IntRange(0, 72),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
