// Package kline builds the candlestick-style fortune series for a wallet.
// It prefers real price history for the wallet's top holding, normalized into
// the score band, and falls back to a simulated monthly random walk anchored
// to the wallet's actual PnL when price data is unavailable.
package kline

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/wallet-fortune/internal/models"
	"github.com/wallet-fortune/internal/types"
)

// OHLCSource provides historical candles for a token symbol. Implementations
// may return an error or an empty slice; both trigger the simulated fallback.
type OHLCSource interface {
	HistoricalOHLC(ctx context.Context, symbol string, days int) ([]models.Candle, error)
}

// realLookbackDays is the window requested from the pricing provider. 180 is
// one of the provider's supported OHLC windows.
const realLookbackDays = 180

// Months whose candles carry a market event annotation
var cryptoEvents = map[string]string{
	"2024-04": "BTC Halving",
	"2024-01": "BTC ETF Approved",
	"2023-10": "Bull Market Begins",
	"2021-11": "All-Time High",
	"2022-11": "FTX Collapse",
	"2020-05": "BTC Halving",
	"2020-03": "COVID Crash",
}

// Input carries the wallet metrics the generator works from. Holdings are
// expected sorted by value descending; only the top holding is consulted for
// the real-data path.
type Input struct {
	Holdings      []models.Holding
	FirstTxDate   time.Time
	TotalValueUSD float64
	PnlPercent    float64
	TxCount30d    int
}

// Generator produces fortune series. The random source and clock are injected
// so tests can pin both.
type Generator struct {
	prices OHLCSource
	rng    *rand.Rand
	now    func() time.Time
	logger zerolog.Logger
}

// NewGenerator creates a Generator. prices may be nil, in which case every
// series uses the simulated path.
func NewGenerator(prices OHLCSource, rng *rand.Rand, now func() time.Time, logger zerolog.Logger) *Generator {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		prices: prices,
		rng:    rng,
		now:    now,
		logger: logger.With().Str("component", "kline").Logger(),
	}
}

// Generate builds the fortune series for a wallet. It never fails: a failed
// or empty real-data fetch falls back to the simulated monthly series.
func (g *Generator) Generate(ctx context.Context, input Input) *models.FortuneSeries {
	series, err := g.realSeries(ctx, input)
	if err == nil {
		return series
	}
	g.logger.Debug().Err(err).Msg("real price history unavailable, using simulated series")
	return g.simulatedSeries(input)
}

// errNoPriceData distinguishes "nothing to chart" from transport failures;
// both fall back the same way.
type seriesError string

func (e seriesError) Error() string { return string(e) }

const (
	errNoProvider  = seriesError("no price provider configured")
	errNoHoldings  = seriesError("wallet has no holdings")
	errEmptyWindow = seriesError("price window empty")
	errFlatWindow  = seriesError("price window has no range")
)

func (g *Generator) realSeries(ctx context.Context, input Input) (*models.FortuneSeries, error) {
	if g.prices == nil {
		return nil, errNoProvider
	}
	if len(input.Holdings) == 0 {
		return nil, errNoHoldings
	}

	top := input.Holdings[0]
	candles, err := g.prices.HistoricalOHLC(ctx, top.Symbol, realLookbackDays)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, errEmptyWindow
	}

	minClose, maxClose := candles[0].Close, candles[0].Close
	for _, c := range candles[1:] {
		if c.Close < minClose {
			minClose = c.Close
		}
		if c.Close > maxClose {
			maxClose = c.Close
		}
	}
	if maxClose == minClose {
		return nil, errFlatWindow
	}

	// Normalize each close linearly into the [10,90] score band over the
	// window's own range.
	points := make([]models.SeriesPoint, 0, len(candles))
	prevScore := 0
	for i, c := range candles {
		score := int(math.Round(10 + (c.Close-minClose)/(maxClose-minClose)*80))
		if i == 0 {
			prevScore = score
		}

		open := prevScore
		vol := math.Abs(float64(score-open))*0.3 + 5
		high := math.Max(float64(open), float64(score)) + g.rng.Float64()*vol
		low := math.Min(float64(open), float64(score)) - g.rng.Float64()*vol

		points = append(points, models.SeriesPoint{
			Date:   time.UnixMilli(c.Timestamp).UTC().Format("2006-01-02"),
			Score:  score,
			Open:   open,
			Close:  score,
			High:   clampScore(int(math.Round(high)), 0, 100),
			Low:    clampScore(int(math.Round(low)), 0, 100),
			Kind:   types.PointKindHistory,
			Label:  deltaLabel(score - open),
			Volume: g.rng.Intn(20) + 1,
		})
		prevScore = score
	}

	summary := buildSummary(points)
	summary.AssetName = top.Symbol

	return &models.FortuneSeries{
		Mode:    types.SeriesModeReal,
		Points:  points,
		Summary: summary,
	}, nil
}

// deltaLabel tags a real-data candle from its score delta alone. Checked in
// priority order, first match wins.
func deltaLabel(change int) string {
	switch {
	case change > 10:
		return "Main Uptrend"
	case change > 5:
		return "Mini Bull Run"
	case change < -10:
		return "Darkest Hour"
	case change < -5:
		return "Trough"
	case change >= -3 && change <= 3:
		return "Sideways Chop"
	}
	return ""
}

type monthlySample struct {
	month      string
	txCount    int
	pnlPercent float64
	events     []string
}

func (g *Generator) simulatedSeries(input Input) *models.FortuneSeries {
	samples := g.simulateMonths(input)
	points := g.pointsFromMonths(samples)
	return &models.FortuneSeries{
		Mode:    types.SeriesModeSimulated,
		Points:  points,
		Summary: buildSummary(points),
	}
}

// simulateMonths walks one sample per calendar month from the first
// transaction's month through the current month. PnL drifts linearly toward
// the wallet's real PnL with random noise each month; the final month lands
// on the real value exactly.
func (g *Generator) simulateMonths(input Input) []monthlySample {
	now := g.now().UTC()
	start := input.FirstTxDate.UTC()
	if start.After(now) {
		start = now
	}

	totalMonths := monthDiff(start, now) + 1
	targetPnl := input.PnlPercent
	monthlyDrift := targetPnl / float64(totalMonths)

	samples := make([]monthlySample, 0, totalMonths)
	runningPnl := 0.0
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < totalMonths; i++ {
		month := current.Format("2006-01")
		isLast := i == totalMonths-1

		volatility := 15 + g.rng.Float64()*20
		randomChange := (g.rng.Float64() - 0.5) * volatility

		if isLast {
			runningPnl = targetPnl
		} else {
			runningPnl += monthlyDrift + randomChange
		}

		var events []string
		if ev, ok := cryptoEvents[month]; ok {
			events = append(events, ev)
		}
		if i == 0 {
			events = append(events, "First Transaction")
		}

		txCount := g.rng.Intn(20) + 1
		if isLast {
			txCount = input.TxCount30d
		}

		samples = append(samples, monthlySample{
			month:      month,
			txCount:    txCount,
			pnlPercent: runningPnl,
			events:     events,
		})
		current = current.AddDate(0, 1, 0)
	}

	return samples
}

// pointsFromMonths turns monthly PnL samples into candles. Open carries the
// prior month's score; the first month opens at the neutral 50.
func (g *Generator) pointsFromMonths(samples []monthlySample) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, len(samples))
	prevScore := 50

	for _, s := range samples {
		score := fortuneScore(s.pnlPercent)

		open := prevScore
		vol := math.Abs(float64(score-prevScore))*0.3 + 5
		high := math.Min(95, math.Max(float64(open), float64(score))+g.rng.Float64()*vol)
		low := math.Max(5, math.Min(float64(open), float64(score))-g.rng.Float64()*vol)

		var event string
		if len(s.events) > 0 {
			event = s.events[0]
		}

		points = append(points, models.SeriesPoint{
			Date:       s.month,
			Score:      score,
			Open:       open,
			Close:      score,
			High:       int(math.Round(high)),
			Low:        int(math.Round(low)),
			Kind:       types.PointKindHistory,
			Label:      scoreLabel(score, prevScore),
			Event:      event,
			PnlPercent: math.Round(s.pnlPercent*10) / 10,
			Volume:     s.txCount,
		})
		prevScore = score
	}

	return points
}

// fortuneScore maps a PnL percentage to the score band: -100% is 10, 0% is
// 50, +100% is 90, clamped into [10,95] after limiting PnL to [-200,500].
func fortuneScore(pnlPercent float64) int {
	clamped := math.Max(-200, math.Min(500, pnlPercent))
	score := 50 + (clamped/100)*40
	return clampScore(int(math.Round(score)), 10, 95)
}

// scoreLabel tags a simulated candle from its level and delta combined
func scoreLabel(score, prevScore int) string {
	change := score - prevScore

	switch {
	case score >= 80 && change > 10:
		return "Main Uptrend"
	case score >= 70 && change > 5:
		return "Mini Bull Run"
	case score <= 30 && change < -10:
		return "Darkest Hour"
	case score <= 40 && change < -5:
		return "Trough"
	case change >= -3 && change <= 3:
		return "Sideways Chop"
	}
	return ""
}

func buildSummary(points []models.SeriesPoint) models.SeriesSummary {
	if len(points) == 0 {
		return models.SeriesSummary{
			CurrentScore: 50,
			Trend:        types.TrendSideways,
			BestPeriod:   "-",
			WorstPeriod:  "-",
		}
	}

	best, worst := points[0], points[0]
	for _, p := range points {
		if p.Score > best.Score {
			best = p
		}
		if p.Score < worst.Score {
			worst = p
		}
	}

	trend := types.TrendSideways
	if len(points) >= 3 {
		recent := points[len(points)-3:]
		avgChange := float64(recent[2].Score-recent[0].Score) / 2
		if avgChange > 3 {
			trend = types.TrendUp
		} else if avgChange < -3 {
			trend = types.TrendDown
		}
	}

	return models.SeriesSummary{
		CurrentScore: points[len(points)-1].Score,
		Trend:        trend,
		BestPeriod:   best.Date,
		WorstPeriod:  worst.Date,
	}
}

// SplicePrediction appends forecast points onto the series tail and records
// the forecast peak and advice in the summary. The first predicted point
// opens at the last history close so the chart stays continuous. A nil or
// empty prediction returns the series unchanged; a history-only series is
// valid on its own.
func (g *Generator) SplicePrediction(series *models.FortuneSeries, prediction *models.SeriesPrediction) *models.FortuneSeries {
	if series == nil || prediction == nil || len(prediction.Predictions) == 0 {
		return series
	}

	var predicted []models.SeriesPoint
	if series.Mode == types.SeriesModeReal {
		predicted = g.compoundedPredictions(series, prediction.Predictions)
	} else {
		predicted = g.scoredPredictions(series, prediction.Predictions)
	}

	// Peak is selected by close, not score: in real mode the compounded
	// closes diverge from the forecast scores.
	peak := predicted[0]
	for _, p := range predicted {
		if p.Close > peak.Close {
			peak = p
		}
	}

	out := *series
	out.Points = append(append([]models.SeriesPoint{}, series.Points...), predicted...)
	out.Summary.NextPeak = peak.Date
	out.Summary.Advice = prediction.Advice
	return &out
}

// scoredPredictions draws predicted candles directly at the forecast scores
func (g *Generator) scoredPredictions(series *models.FortuneSeries, preds []models.PredictedPoint) []models.SeriesPoint {
	prevScore := 50
	if n := len(series.Points); n > 0 {
		prevScore = series.Points[n-1].Close
	}

	out := make([]models.SeriesPoint, 0, len(preds))
	for _, pred := range preds {
		open := prevScore
		close := pred.Score
		vol := math.Abs(float64(close-open))*0.3 + 5
		high := math.Min(95, math.Max(float64(open), float64(close))+vol*0.5)
		low := math.Max(5, math.Min(float64(open), float64(close))-vol*0.5)

		out = append(out, models.SeriesPoint{
			Date:  pred.Date,
			Score: pred.Score,
			Open:  open,
			Close: close,
			High:  int(math.Round(high)),
			Low:   int(math.Round(low)),
			Kind:  types.PointKindPrediction,
			Label: pred.Label,
		})
		prevScore = pred.Score
	}
	return out
}

// compoundedPredictions converts each forecast score to a small relative
// change from the running close ((score-50)/1500, so a neutral 50 moves
// nothing) and compounds forward from the last real close. This keeps the
// predicted segment continuous with the history regardless of its scale.
func (g *Generator) compoundedPredictions(series *models.FortuneSeries, preds []models.PredictedPoint) []models.SeriesPoint {
	running := 50.0
	if n := len(series.Points); n > 0 {
		running = float64(series.Points[n-1].Close)
	}

	out := make([]models.SeriesPoint, 0, len(preds))
	for _, pred := range preds {
		change := float64(pred.Score-50) / 1500
		next := running * (1 + change)

		open := int(math.Round(running))
		close := int(math.Round(next))
		vol := math.Abs(float64(close-open))*0.3 + 5
		high := math.Min(95, math.Max(float64(open), float64(close))+vol*0.5)
		low := math.Max(5, math.Min(float64(open), float64(close))-vol*0.5)

		out = append(out, models.SeriesPoint{
			Date:  pred.Date,
			Score: pred.Score,
			Open:  open,
			Close: close,
			High:  int(math.Round(high)),
			Low:   int(math.Round(low)),
			Kind:  types.PointKindPrediction,
			Label: pred.Label,
		})
		running = next
	}
	return out
}

func clampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// monthDiff counts calendar months between two dates so the generated range
// always ends on the current month
func monthDiff(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if months < 0 {
		months = 0
	}
	return months
}
