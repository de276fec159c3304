package service

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/wallet-fortune/internal/models"
)

// defaultForecastAdvice is used whenever the AI forecaster fails or returns
// no advice
const defaultForecastAdvice = "go with the flow and let the setup come to you"

// roastLinesByStatus holds canned one-liners bucketed by PnL status, used
// when the AI generator is unavailable
var roastLinesByStatus = map[string][]string{
	// up more than 50%
	"winner": {
		"Luck is a skill too.",
		"Holding is the hardest trade there is.",
		"Slow is fast, less is more.",
		"Conviction lives in the position, not the tweets.",
		"Time rewards the ones who don't touch anything.",
	},
	// up 10% to 50%
	"profit": {
		"Unrealized gains are just a mood, realized gains are real.",
		"Quitting while ahead is a skill issue most people have.",
		"No greed, no fear, no problem.",
		"Getting rich slowly still counts as getting rich.",
		"Small wins are skill, big wins are luck.",
	},
	// between -10% and 10%
	"breakeven": {
		"A day in crypto is a year anywhere else, and you went nowhere.",
		"Doing nothing is also a strategy.",
		"This portfolio is more stable than its owner.",
		"Not up, not down, fully enlightened.",
		"Still the market, still the same bags.",
	},
	// down 10% to 50%
	"loss": {
		"Either buying the dip or becoming the dip.",
		"Greedy when others are fearful, greedier when others are greedy.",
		"Diamond hands aren't a choice when you're this far underwater.",
		"Every drawdown is a test of faith.",
		"Nobody understands long-term investing like a bag holder.",
	},
	// down more than 50%
	"rekt": {
		"Missed the bull, caught the bear.",
		"The deeper the bags, the deeper the wisdom.",
		"Going to zero is its own kind of closure.",
		"This market owes me one, and I intend to collect.",
		"Old hands grow the deepest roots.",
	},
}

// defaultPredictionLabels are assigned positionally to fallback forecast
// months
var defaultPredictionLabels = []string{
	"cooldown",
	"loading up",
	"bounce back",
	"window of opportunity",
	"harvest season",
	"consolidation",
}

// DefaultDescription builds the canned wallet description used when the AI
// generator is unavailable
func DefaultDescription(tags []string, totalValueUSD float64) string {
	tag := "Mystery Player"
	if len(tags) > 0 {
		tag = tags[0]
	}
	return fmt.Sprintf(
		"A true %s, you've been through the crypto trenches and came out with your own survival rules. Holding $%.0f, and whether it pumps or dumps, it's all part of the journey.",
		tag, totalValueUSD)
}

// DefaultRoastLine picks a canned roast line matching the wallet's PnL
// bucket
func DefaultRoastLine(pnlPercent float64, rng *rand.Rand) string {
	var status string
	switch {
	case pnlPercent > 50:
		status = "winner"
	case pnlPercent > 10:
		status = "profit"
	case pnlPercent >= -10:
		status = "breakeven"
	case pnlPercent >= -50:
		status = "loss"
	default:
		status = "rekt"
	}

	lines := roastLinesByStatus[status]
	return lines[rng.Intn(len(lines))]
}

// DefaultContent assembles the full fallback AIContent
func DefaultContent(tags []string, totalValueUSD, pnlPercent float64, rng *rand.Rand) *models.AIContent {
	return &models.AIContent{
		Description: DefaultDescription(tags, totalValueUSD),
		RoastLine:   DefaultRoastLine(pnlPercent, rng),
	}
}

// FutureMonths returns the next n months after now, formatted "2006-01"
func FutureMonths(now time.Time, n int) []string {
	// anchor on the first of the month so day 29-31 can't roll an extra month
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		months = append(months, first.AddDate(0, i, 0).Format("2006-01"))
	}
	return months
}

// DefaultPredictions generates a random-walk fallback forecast with a slight
// upward bias, one point per month, scores bounded to [20, 85]. The fourth
// month is conventionally reported as the peak by callers.
func DefaultPredictions(months []string, currentScore int, rng *rand.Rand) *models.SeriesPrediction {
	prediction := &models.SeriesPrediction{
		Advice: defaultForecastAdvice,
	}
	if len(months) == 0 {
		return prediction
	}

	peakIdx := len(months) - 1
	if peakIdx > 3 {
		peakIdx = 3
	}
	prediction.PeakPeriod = months[peakIdx]

	score := float64(currentScore)
	for i, date := range months {
		change := (rng.Float64() - 0.4) * 15
		score = math.Max(20, math.Min(85, score+change))

		label := ""
		if i < len(defaultPredictionLabels) {
			label = defaultPredictionLabels[i]
		}
		prediction.Predictions = append(prediction.Predictions, models.PredictedPoint{
			Date:  date,
			Score: int(math.Round(score)),
			Label: label,
		})
	}

	return prediction
}
