package models

import (
	"time"

	"github.com/wallet-fortune/internal/types"
)

// TradingStats summarizes the wallet's recent on-chain activity
type TradingStats struct {
	TxCount30d  int       `json:"txCount30d"`
	FirstTxDate time.Time `json:"firstTxDate"`
}

// PnlStats summarizes the wallet's profit and loss position
type PnlStats struct {
	TotalPnlPercent float64 `json:"totalPnlPercent"`
	TotalPnlUSD     float64 `json:"totalPnlUsd"`
}

// AnalysisResult is the complete analysis record for one wallet. It is created
// once per analysis, cached keyed by normalized address, and immutable after
// creation.
type AnalysisResult struct {
	ID          string            `json:"id"`
	Address     string            `json:"address"`
	Chain       types.ChainType   `json:"chain"`
	AnalyzedAt  time.Time         `json:"analyzedAt"`
	Portfolio   Portfolio         `json:"portfolio"`
	Trading     TradingStats      `json:"trading"`
	Pnl         PnlStats          `json:"pnl"`
	Personality PersonalityResult `json:"personality"`
	AIContent   AIContent         `json:"aiContent"`
	Series      *FortuneSeries    `json:"series,omitempty"`
	Bazi        *BaziResult       `json:"bazi,omitempty"`
}
