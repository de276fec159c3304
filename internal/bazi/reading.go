package bazi

import (
	"time"

	"github.com/wallet-fortune/internal/models"
)

// Reading produces the complete chart analysis for a wallet. The wallet's
// first transaction time is treated as its birth moment.
func Reading(firstTx time.Time, holdings []models.Holding, table ForecastTable) models.BaziResult {
	chart := Calculate(firstTx)
	stats := AnalyzeChart(chart)
	archetype := Analyze(chart, stats)
	forecast := Forecast(chart, stats, table)
	holdingElems := AnalyzeHoldings(holdings)
	harmony := AnalyzeHarmony(chart.DayMaster, holdingElems.Dominant)

	return models.BaziResult{
		Chart:     chart,
		Elements:  stats,
		Archetype: archetype,
		Forecast:  forecast,
		Holdings:  holdingElems,
		Harmony:   harmony,
	}
}
