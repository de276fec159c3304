// Package types provides common type definitions for the wallet fortune system.
package types

// ChainType represents the blockchain a wallet address belongs to
type ChainType string

const (
	// ChainSolana represents a Solana (Base58) wallet address
	ChainSolana ChainType = "solana"
	// ChainEVM represents an EVM-compatible (0x-hex) wallet address
	ChainEVM ChainType = "evm"
	// ChainUnknown represents an address that matched no supported chain format
	ChainUnknown ChainType = "unknown"
)

// Trend represents the direction of the recent fortune score movement
type Trend string

const (
	// TrendUp represents a rising score over the recent window
	TrendUp Trend = "up"
	// TrendDown represents a falling score over the recent window
	TrendDown Trend = "down"
	// TrendSideways represents a flat score over the recent window
	TrendSideways Trend = "sideways"
)

// PointKind distinguishes historical series points from predicted ones
type PointKind string

const (
	// PointKindHistory represents a point derived from real or simulated history
	PointKindHistory PointKind = "history"
	// PointKindPrediction represents a point spliced on from the forecaster
	PointKindPrediction PointKind = "prediction"
)

// SeriesMode identifies which generation path produced a fortune series
type SeriesMode string

const (
	// SeriesModeReal means the series was normalized from real daily OHLC data
	SeriesModeReal SeriesMode = "real"
	// SeriesModeSimulated means the series was synthesized from the wallet's PnL
	SeriesModeSimulated SeriesMode = "simulated"
)

// WealthStatus represents the strength of the wealth indicator in a chart
type WealthStatus string

const (
	// WealthStrong means primary+secondary wealth counts reached the strong threshold
	WealthStrong WealthStatus = "strong"
	// WealthBalanced means wealth counts sit between the weak and strong thresholds
	WealthBalanced WealthStatus = "balanced"
	// WealthWeak means the chart carries at most one wealth occurrence
	WealthWeak WealthStatus = "weak"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
