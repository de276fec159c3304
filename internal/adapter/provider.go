// Package adapter wraps the external data collaborators: chain data, token
// pricing, and AI text generation. Each adapter normalizes its provider's wire
// format into the internal models and keeps provider-specific throttling and
// failure handling out of the service layer.
package adapter

import (
	"context"
	"time"

	"github.com/wallet-fortune/internal/models"
	"github.com/wallet-fortune/internal/types"
)

// ChainProvider fetches raw wallet data from one chain family. All three
// calls are independent and safe to run concurrently for the same address.
type ChainProvider interface {
	// Holdings returns the wallet's unenriched token balances
	Holdings(ctx context.Context, address string) ([]models.RawHolding, error)

	// TxCount30d returns the number of transactions in the trailing 30 days
	TxCount30d(ctx context.Context, address string) (int, error)

	// FirstTxDate returns the timestamp of the wallet's oldest known
	// transaction
	FirstTxDate(ctx context.Context, address string) (time.Time, error)
}

// TokenInfoProvider looks up price and category data for a token symbol.
// A nil result with nil error means the token is unknown to the provider.
type TokenInfoProvider interface {
	TokenInfo(ctx context.Context, symbol string) (*models.TokenInfo, error)
}

// OHLCProvider fetches historical candles for a token symbol
type OHLCProvider interface {
	HistoricalOHLC(ctx context.Context, symbol string, days int) ([]models.Candle, error)
}

// ContentRequest summarizes an analyzed wallet for the AI text generator
type ContentRequest struct {
	Address       string
	Chain         types.ChainType
	Tags          []string
	Dimensions    models.PersonalityDimensions
	TopHoldings   []models.Holding
	TotalValueUSD float64
	PnlPercent    float64
}

// ForecastRequest summarizes the recent fortune trend for the AI forecaster
type ForecastRequest struct {
	CurrentScore int
	Trend        types.Trend
	RecentScores []int
	Tags         []string
	PnlPercent   float64
	WalletAge    string
	FutureMonths []string
}

// AIProvider generates the free-text portions of an analysis. Callers must
// treat every error as non-fatal and substitute deterministic fallbacks.
type AIProvider interface {
	WalletContent(ctx context.Context, req ContentRequest) (*models.AIContent, error)
	SeriesForecast(ctx context.Context, req ForecastRequest) (*models.SeriesPrediction, error)
}
