// Package personality implements the six-dimension wallet personality model.
// Each scorer is a pure function of the raw wallet metrics: a linear (or
// logarithmic) base score, a category chosen by fixed thresholds, and a final
// clamp into the category's declared sub-range. The post-hoc clamp overrides
// the raw score near category boundaries and is part of the observable
// contract, so the two steps must stay separate.
package personality

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wallet-fortune/internal/models"
)

// ClassifyInput carries the raw wallet metrics feeding the classifier
type ClassifyInput struct {
	TxCount30d    int
	Holdings      []models.Holding
	TotalValueUSD float64
	PnlPercent    float64
	FirstTxDate   time.Time
}

// mainstreamSymbols are the tokens counted toward the mainstream value ratio
var mainstreamSymbols = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "USDC": true,
	"USDT": true, "WBTC": true, "WETH": true, "DAI": true,
}

// IsMainstreamSymbol reports whether a token counts as a mainstream holding
func IsMainstreamSymbol(symbol string) bool {
	return mainstreamSymbols[strings.ToUpper(symbol)]
}

// Classify produces the six personality dimensions and the three headline
// tags for a wallet. The reference time is injected for determinism.
func Classify(input ClassifyInput, now time.Time) models.PersonalityResult {
	tradingStyle := TradingStyle(input.TxCount30d)
	tokenPreference := TokenPreference(input.Holdings)
	portfolioSize := PortfolioSize(input.TotalValueUSD)
	pnlStatus := PnlStatus(input.PnlPercent)
	concentration := Concentration(input.Holdings)
	walletAge := WalletAge(input.FirstTxDate, now)

	tags := []string{
		TagString(tokenPreference),
		TagString(tradingStyle),
		TagString(portfolioSize),
	}

	return models.PersonalityResult{
		Tags: tags,
		Dimensions: models.PersonalityDimensions{
			TradingStyle:    tradingStyle,
			TokenPreference: tokenPreference,
			PortfolioSize:   portfolioSize,
			PnlStatus:       pnlStatus,
			Concentration:   concentration,
			WalletAge:       walletAge,
		},
	}
}

// TagString renders a dimension as its display tag
func TagString(d models.Dimension) string {
	return fmt.Sprintf("%s %s", d.Label, d.Emoji)
}

// TradingStyle scores 30-day transaction activity. The raw score is linear in
// the transaction count; the category clamp then forces it into the declared
// sub-range (hodler <=30, swing 31-70, frequent >=71).
func TradingStyle(txCount30d int) models.Dimension {
	score := clampInt(int(math.Round(10+(float64(txCount30d)/100)*90)), 10, 100)

	if txCount30d < 5 {
		return models.Dimension{
			Key:         "hodler",
			Label:       "HODLer",
			Emoji:       "🏔️",
			Description: "Buy, forget, and let the chart do the worrying",
			Score:       minInt(30, score),
		}
	}
	if txCount30d <= 30 {
		return models.Dimension{
			Key:         "swing",
			Label:       "Swing Trader",
			Emoji:       "🌊",
			Description: "Sell the rips, buy the dips",
			Score:       clampInt(score, 31, 70),
		}
	}
	return models.Dimension{
		Key:         "frequent",
		Label:       "Serial Clicker",
		Emoji:       "🎰",
		Description: "A day without a trade is a day wasted",
		Score:       maxInt(71, score),
	}
}

// TokenPreference scores risk appetite from the mainstream and meme value
// ratios. A zero-value portfolio short-circuits to the neutral diversified
// category at score 50.
func TokenPreference(holdings []models.Holding) models.Dimension {
	var total, mainstreamValue, memeValue float64
	for _, h := range holdings {
		total += h.ValueUSD
		if mainstreamSymbols[strings.ToUpper(h.Symbol)] {
			mainstreamValue += h.ValueUSD
		}
		if h.IsMeme {
			memeValue += h.ValueUSD
		}
	}

	if total == 0 {
		return diversifiedPreference(50)
	}

	mainstreamRatio := mainstreamValue / total
	memeRatio := memeValue / total
	riskScore := int(math.Round(20 + memeRatio*80 - mainstreamRatio*20))

	if mainstreamRatio > 0.7 {
		return models.Dimension{
			Key:         "mainstream",
			Label:       "Blue Chip Believer",
			Emoji:       "🏛️",
			Description: "Only the majors make the cut",
			Score:       clampInt(riskScore, 15, 40),
		}
	}
	if memeRatio > 0.5 {
		return models.Dimension{
			Key:         "meme",
			Label:       "Degen Hunter",
			Emoji:       "🐕",
			Description: "One hundred-bagger away from a new life",
			Score:       clampInt(riskScore, 60, 100),
		}
	}
	return diversifiedPreference(clampInt(riskScore, 35, 65))
}

func diversifiedPreference(score int) models.Dimension {
	return models.Dimension{
		Key:         "diversified",
		Label:       "Diversifier",
		Emoji:       "🎨",
		Description: "Never all eggs in one basket",
		Score:       score,
	}
}

// PortfolioSize scores total value on a log10 scale; zero value is guarded to
// the floor score of 5 rather than taking log10(0).
func PortfolioSize(totalValueUSD float64) models.Dimension {
	logScore := 5
	if totalValueUSD > 0 {
		logScore = clampInt(int(math.Round(math.Log10(totalValueUSD)*16.67)), 5, 100)
	}

	if totalValueUSD > 100000 {
		return models.Dimension{
			Key:         "whale",
			Label:       "Whale",
			Emoji:       "🐋",
			Description: "A market of one",
			Score:       maxInt(80, logScore),
		}
	}
	if totalValueUSD > 10000 {
		return models.Dimension{
			Key:         "dolphin",
			Label:       "Dolphin",
			Emoji:       "🐬",
			Description: "Real capital, steady climb",
			Score:       clampInt(logScore, 55, 79),
		}
	}
	if totalValueUSD > 1000 {
		return models.Dimension{
			Key:         "fish",
			Label:       "Fish",
			Emoji:       "🐟",
			Description: "Retail and proud, grinding upward",
			Score:       clampInt(logScore, 35, 54),
		}
	}
	return models.Dimension{
		Key:         "shrimp",
		Label:       "Shrimp",
		Emoji:       "🦐",
		Description: "Small stack, big dreams",
		Score:       minInt(34, logScore),
	}
}

// PnlStatus scores the wallet's overall profit and loss percentage
func PnlStatus(pnlPercent float64) models.Dimension {
	pnlScore := clampInt(int(math.Round(50+pnlPercent*0.5)), 0, 100)

	if pnlPercent > 50 {
		return models.Dimension{
			Key:         "winner",
			Label:       "Chosen One",
			Emoji:       "👑",
			Description: "So this is what winning feels like",
			Score:       maxInt(75, pnlScore),
		}
	}
	if pnlPercent > 10 {
		return models.Dimension{
			Key:         "profit",
			Label:       "Quietly Green",
			Emoji:       "😊",
			Description: "At least it's not a loss",
			Score:       clampInt(pnlScore, 55, 74),
		}
	}
	if pnlPercent > -10 {
		return models.Dimension{
			Key:         "breakeven",
			Label:       "Treading Water",
			Emoji:       "😐",
			Description: "All that work for a round trip",
			Score:       clampInt(pnlScore, 45, 54),
		}
	}
	if pnlPercent > -50 {
		return models.Dimension{
			Key:         "loss",
			Label:       "Down Bad",
			Emoji:       "😰",
			Description: "It'll come back. It has to.",
			Score:       clampInt(pnlScore, 25, 44),
		}
	}
	return models.Dimension{
		Key:         "rekt",
		Label:       "Deep Underwater",
		Emoji:       "😭",
		Description: "Not exit liquidity — seasoned exit liquidity",
		Score:       minInt(24, pnlScore),
	}
}

// Concentration scores how much of the portfolio sits in the top holding.
// Empty holdings and zero totals short-circuit to the diversified default.
func Concentration(holdings []models.Holding) models.Dimension {
	if len(holdings) == 0 {
		return diversifiedConcentration(20)
	}

	var total, maxHolding float64
	for _, h := range holdings {
		total += h.ValueUSD
		if h.ValueUSD > maxHolding {
			maxHolding = h.ValueUSD
		}
	}
	if total == 0 {
		return diversifiedConcentration(20)
	}

	topPercent := (maxHolding / total) * 100
	score := minInt(100, int(math.Round(topPercent)))

	if topPercent > 80 {
		return models.Dimension{
			Key:         "yolo",
			Label:       "Full Sender",
			Emoji:       "🚀",
			Description: "Moon or zero, nothing in between",
			Score:       maxInt(80, score),
		}
	}
	if topPercent > 50 {
		return models.Dimension{
			Key:         "heavy",
			Label:       "Conviction Holder",
			Emoji:       "💰",
			Description: "Heavy in the one true bag",
			Score:       clampInt(score, 50, 79),
		}
	}
	return diversifiedConcentration(minInt(49, score))
}

func diversifiedConcentration(score int) models.Dimension {
	return models.Dimension{
		Key:         "diversified",
		Label:       "Spread Out",
		Emoji:       "🎯",
		Description: "Risk split, nerves intact",
		Score:       score,
	}
}

const hoursPerYear = 24 * 365.25

// WalletAge scores time since the wallet's first transaction
func WalletAge(firstTxDate, now time.Time) models.Dimension {
	years := now.Sub(firstTxDate).Hours() / hoursPerYear
	ageScore := clampInt(int(math.Round(15+years*17)), 15, 100)

	if years > 2 {
		return models.Dimension{
			Key:         "og",
			Label:       "OG",
			Emoji:       "🏆",
			Description: "Been here since before your exchange existed",
			Score:       maxInt(70, ageScore),
		}
	}
	if years > 1 {
		return models.Dimension{
			Key:         "veteran",
			Label:       "Cycle Survivor",
			Emoji:       "🌿",
			Description: "Has seen a bull and lived through the bear",
			Score:       clampInt(ageScore, 45, 69),
		}
	}
	return models.Dimension{
		Key:         "newbie",
		Label:       "Fresh Wallet",
		Emoji:       "🐣",
		Description: "New here, reporting for duty",
		Score:       minInt(44, ageScore),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
