package models

import "github.com/wallet-fortune/internal/types"

// SeriesPoint represents one candlestick-style point of the fortune series.
// Within the history segment, Open of point i equals Close of point i-1, and
// Low <= min(Open, Close) <= max(Open, Close) <= High.
type SeriesPoint struct {
	Date       string          `json:"date"`
	Score      int             `json:"score"`
	Open       int             `json:"open"`
	Close      int             `json:"close"`
	High       int             `json:"high"`
	Low        int             `json:"low"`
	Kind       types.PointKind `json:"kind"`
	Label      string          `json:"label,omitempty"`
	Event      string          `json:"event,omitempty"`
	PnlPercent float64         `json:"pnlPercent,omitempty"`
	Volume     int             `json:"volume,omitempty"`
}

// SeriesSummary describes the overall shape of a fortune series
type SeriesSummary struct {
	CurrentScore int         `json:"currentScore"`
	Trend        types.Trend `json:"trend"`
	BestPeriod   string      `json:"bestPeriod"`
	WorstPeriod  string      `json:"worstPeriod"`
	NextPeak     string      `json:"nextPeak,omitempty"`
	Advice       string      `json:"advice,omitempty"`
	AssetName    string      `json:"assetName,omitempty"`
}

// FortuneSeries is the complete candlestick sequence for one wallet, tagged
// with the generation mode that produced its history segment
type FortuneSeries struct {
	Mode    types.SeriesMode `json:"mode"`
	Points  []SeriesPoint    `json:"points"`
	Summary SeriesSummary    `json:"summary"`
}

// PredictedPoint is one future period as returned by the forecaster
type PredictedPoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
	Label string `json:"label,omitempty"`
}

// SeriesPrediction is the forecaster's output for the months ahead
type SeriesPrediction struct {
	Predictions []PredictedPoint `json:"predictions"`
	PeakPeriod  string           `json:"peakPeriod"`
	Advice      string           `json:"advice"`
}

// Candle represents one raw OHLC bar from the pricing provider
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}
