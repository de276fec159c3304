package personality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wallet-fortune/internal/models"
)

func holding(symbol string, valueUSD float64, isMeme bool) models.Holding {
	return models.Holding{Symbol: symbol, ValueUSD: valueUSD, IsMeme: isMeme}
}

func TestTradingStyle(t *testing.T) {
	tests := []struct {
		name      string
		txCount   int
		wantKey   string
		wantScore int
	}{
		{"inactive wallet is a hodler at the floor", 0, "hodler", 10},
		{"four transactions still counts as hodling", 4, "hodler", 14},
		{"five transactions crosses into swing range", 5, "swing", 31},
		{"thirty transactions stays swing", 30, "swing", 37},
		{"heavy activity is frequent with a raised floor", 31, "frequent", 71},
		{"hyperactive wallet scores linearly", 200, "frequent", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := TradingStyle(tt.txCount)
			assert.Equal(t, tt.wantKey, d.Key)
			assert.Equal(t, tt.wantScore, d.Score)
		})
	}
}

func TestTokenPreference(t *testing.T) {
	t.Run("empty portfolio defaults to diversified 50", func(t *testing.T) {
		d := TokenPreference(nil)
		assert.Equal(t, "diversified", d.Key)
		assert.Equal(t, 50, d.Score)
	})

	t.Run("mainstream heavy portfolio", func(t *testing.T) {
		d := TokenPreference([]models.Holding{
			holding("BTC", 900, false),
			holding("PEPE", 100, true),
		})
		assert.Equal(t, "mainstream", d.Key)
		// riskScore = round(20 + 0.1*80 - 0.9*20) = 10, clamped up to 15
		assert.Equal(t, 15, d.Score)
	})

	t.Run("meme heavy portfolio", func(t *testing.T) {
		d := TokenPreference([]models.Holding{
			holding("DOGE", 800, true),
			holding("ETH", 200, false),
		})
		assert.Equal(t, "meme", d.Key)
		// riskScore = round(20 + 0.8*80 - 0.2*20) = 80
		assert.Equal(t, 80, d.Score)
	})

	t.Run("mixed portfolio lands in the middle band", func(t *testing.T) {
		d := TokenPreference([]models.Holding{
			holding("ETH", 400, false),
			holding("UNI", 350, false),
			holding("WIF", 250, true),
		})
		assert.Equal(t, "diversified", d.Key)
		assert.GreaterOrEqual(t, d.Score, 35)
		assert.LessOrEqual(t, d.Score, 65)
	})

	t.Run("symbol matching ignores case", func(t *testing.T) {
		d := TokenPreference([]models.Holding{holding("eth", 1000, false)})
		assert.Equal(t, "mainstream", d.Key)
	})
}

func TestPortfolioSize(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		wantKey   string
		wantScore int
	}{
		{"zero value avoids the log and floors at 5", 0, "shrimp", 5},
		{"sub-thousand wallet is a shrimp", 500, "shrimp", 34},
		{"thousand dollar boundary stays fish range", 1001, "fish", 50},
		{"ten thousand crosses to dolphin", 50000, "dolphin", 78},
		{"six figures is a whale", 200000, "whale", 88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := PortfolioSize(tt.value)
			assert.Equal(t, tt.wantKey, d.Key)
			assert.Equal(t, tt.wantScore, d.Score)
		})
	}
}

func TestPnlStatus(t *testing.T) {
	tests := []struct {
		name      string
		pnl       float64
		wantKey   string
		wantScore int
	}{
		{"large gain is a winner", 75, "winner", 88},
		{"winner floor kicks in just above the threshold", 51, "winner", 76},
		{"modest gain", 20, "profit", 60},
		{"flat wallet treads water", 0, "breakeven", 50},
		{"moderate loss", -30, "loss", 35},
		{"deep loss is rekt and capped", -80, "rekt", 10},
		{"catastrophic loss clamps at zero", -300, "rekt", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := PnlStatus(tt.pnl)
			assert.Equal(t, tt.wantKey, d.Key)
			assert.Equal(t, tt.wantScore, d.Score)
		})
	}
}

func TestConcentration(t *testing.T) {
	t.Run("empty holdings default to diversified 20", func(t *testing.T) {
		d := Concentration(nil)
		assert.Equal(t, "diversified", d.Key)
		assert.Equal(t, 20, d.Score)
	})

	t.Run("worthless holdings also default", func(t *testing.T) {
		d := Concentration([]models.Holding{holding("DUST", 0, false)})
		assert.Equal(t, "diversified", d.Key)
		assert.Equal(t, 20, d.Score)
	})

	t.Run("85 percent in one token is full send", func(t *testing.T) {
		d := Concentration([]models.Holding{
			holding("SOL", 850, false),
			holding("USDC", 150, false),
		})
		assert.Equal(t, "yolo", d.Key)
		assert.Equal(t, 85, d.Score)
	})

	t.Run("60 percent top holding is conviction", func(t *testing.T) {
		d := Concentration([]models.Holding{
			holding("ETH", 600, false),
			holding("USDC", 400, false),
		})
		assert.Equal(t, "heavy", d.Key)
		assert.Equal(t, 60, d.Score)
	})

	t.Run("even split stays diversified", func(t *testing.T) {
		d := Concentration([]models.Holding{
			holding("ETH", 250, false),
			holding("SOL", 250, false),
			holding("BTC", 250, false),
			holding("USDC", 250, false),
		})
		assert.Equal(t, "diversified", d.Key)
		assert.Equal(t, 25, d.Score)
	})
}

func TestWalletAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		firstTx time.Time
		wantKey string
	}{
		{"brand new wallet", now.AddDate(0, 0, -7), "newbie"},
		{"eighteen months in", now.AddDate(0, -18, 0), "veteran"},
		{"three year old wallet is an OG", now.AddDate(-3, 0, 0), "og"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := WalletAge(tt.firstTx, now)
			assert.Equal(t, tt.wantKey, d.Key)
		})
	}

	t.Run("OG floor raises a marginal score to 70", func(t *testing.T) {
		d := WalletAge(now.AddDate(0, 0, -800), now)
		assert.Equal(t, "og", d.Key)
		assert.Equal(t, 70, d.Score)
	})
}

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty wallet produces safe defaults everywhere", func(t *testing.T) {
		result := Classify(ClassifyInput{FirstTxDate: now}, now)

		dims := result.Dimensions
		assert.Equal(t, "hodler", dims.TradingStyle.Key)
		assert.Equal(t, "diversified", dims.TokenPreference.Key)
		assert.Equal(t, "shrimp", dims.PortfolioSize.Key)
		assert.Equal(t, "breakeven", dims.PnlStatus.Key)
		assert.Equal(t, "diversified", dims.Concentration.Key)
		assert.Equal(t, "newbie", dims.WalletAge.Key)
	})

	t.Run("tags pair label with emoji in fixed order", func(t *testing.T) {
		result := Classify(ClassifyInput{
			TxCount30d:    50,
			Holdings:      []models.Holding{holding("BTC", 900, false), holding("PEPE", 100, true)},
			TotalValueUSD: 200000,
			PnlPercent:    75,
			FirstTxDate:   now.AddDate(-3, 0, 0),
		}, now)

		assert.Equal(t, []string{
			"Blue Chip Believer 🏛️",
			"Serial Clicker 🎰",
			"Whale 🐋",
		}, result.Tags)
	})

	t.Run("all six scores stay within bounds", func(t *testing.T) {
		result := Classify(ClassifyInput{
			TxCount30d:    12,
			Holdings:      []models.Holding{holding("WIF", 5000, true)},
			TotalValueUSD: 5000,
			PnlPercent:    -20,
			FirstTxDate:   now.AddDate(0, -14, 0),
		}, now)

		for _, d := range []models.Dimension{
			result.Dimensions.TradingStyle,
			result.Dimensions.TokenPreference,
			result.Dimensions.PortfolioSize,
			result.Dimensions.PnlStatus,
			result.Dimensions.Concentration,
			result.Dimensions.WalletAge,
		} {
			assert.GreaterOrEqual(t, d.Score, 0, d.Key)
			assert.LessOrEqual(t, d.Score, 100, d.Key)
			assert.NotEmpty(t, d.Label)
			assert.NotEmpty(t, d.Description)
		}
	})
}
