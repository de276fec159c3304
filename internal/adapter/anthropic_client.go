package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/wallet-fortune/internal/models"
)

// ErrEmptyCompletion is returned when the model responds with no usable
// content. Callers substitute deterministic fallback text.
var ErrEmptyCompletion = errors.New("empty model completion")

// AnthropicClient implements AIProvider using the Anthropic Messages API
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
	logger zerolog.Logger
}

// NewAnthropicClient creates a client. The API key is read from the
// environment when apiKey is empty.
func NewAnthropicClient(apiKey, model string, logger zerolog.Logger) *AnthropicClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
		logger: logger.With().Str("component", "anthropic").Logger(),
	}
}

// WalletContent generates the playful description and roast line for an
// analyzed wallet
func (c *AnthropicClient) WalletContent(ctx context.Context, req ContentRequest) (*models.AIContent, error) {
	prompt := buildContentPrompt(req)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseWalletContent(text)
}

func parseWalletContent(text string) (*models.AIContent, error) {
	var parsed struct {
		Description string `json:"description"`
		RoastLine   string `json:"roastLine"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing content response: %w", err)
	}
	if parsed.Description == "" && parsed.RoastLine == "" {
		return nil, ErrEmptyCompletion
	}

	return &models.AIContent{
		Description: parsed.Description,
		RoastLine:   parsed.RoastLine,
	}, nil
}

// SeriesForecast generates the future fortune points for the chart tail
func (c *AnthropicClient) SeriesForecast(ctx context.Context, req ForecastRequest) (*models.SeriesPrediction, error) {
	prompt := buildForecastPrompt(req)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseSeriesForecast(text)
}

func parseSeriesForecast(text string) (*models.SeriesPrediction, error) {
	var parsed struct {
		Predictions []struct {
			Date  string `json:"date"`
			Score int    `json:"score"`
			Label string `json:"label"`
		} `json:"predictions"`
		PeakMonth string `json:"peakMonth"`
		Advice    string `json:"advice"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing forecast response: %w", err)
	}
	if len(parsed.Predictions) == 0 {
		return nil, ErrEmptyCompletion
	}

	prediction := &models.SeriesPrediction{
		PeakPeriod: parsed.PeakMonth,
		Advice:     parsed.Advice,
	}
	for _, p := range parsed.Predictions {
		score := p.Score
		if score < 1 {
			score = 1
		}
		if score > 100 {
			score = 100
		}
		prediction.Predictions = append(prediction.Predictions, models.PredictedPoint{
			Date:  p.Date,
			Score: score,
			Label: p.Label,
		})
	}

	return prediction, nil
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

// stripJSONFences removes markdown code fences models like to wrap JSON in
func stripJSONFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func buildContentPrompt(req ContentRequest) string {
	var sb strings.Builder

	sb.WriteString("You are a crypto-native degen with a sharp sense of humor who roasts wallets for fun.\n")
	sb.WriteString("Based on the following real on-chain profile, write a playful analysis.\n\n")

	sb.WriteString("## Profile\n")
	fmt.Fprintf(&sb, "- Headline tags: %s\n", strings.Join(req.Tags, " + "))
	fmt.Fprintf(&sb, "- Trading style: %s - %s\n", req.Dimensions.TradingStyle.Label, req.Dimensions.TradingStyle.Description)
	fmt.Fprintf(&sb, "- Token preference: %s - %s\n", req.Dimensions.TokenPreference.Label, req.Dimensions.TokenPreference.Description)
	fmt.Fprintf(&sb, "- Portfolio size: %s ($%.2f)\n", req.Dimensions.PortfolioSize.Label, req.TotalValueUSD)
	fmt.Fprintf(&sb, "- PnL status: %s (%+.1f%%)\n", req.Dimensions.PnlStatus.Label, req.PnlPercent)
	fmt.Fprintf(&sb, "- Concentration: %s\n", req.Dimensions.Concentration.Label)
	fmt.Fprintf(&sb, "- Wallet age: %s\n", req.Dimensions.WalletAge.Label)

	sb.WriteString("\n## Top holdings\n")
	for _, h := range req.TopHoldings {
		fmt.Fprintf(&sb, "- %s: %.1f%%\n", h.Symbol, h.PercentOfPortfolio)
	}

	sb.WriteString(`
## Output
Respond with JSON containing exactly two fields:
1. description: a fun 2-3 sentence read of this wallet, crypto slang welcome, light roasting tone
2. roastLine: a single punchy one-liner suitable for sharing on social media

Rules:
- no financial advice
- keep it light and self-deprecating
- crypto memes are fine (diamond hands, paper hands, full send, bag holder, and friends)

Output only the JSON, nothing else:
`)

	return sb.String()
}

func buildForecastPrompt(req ForecastRequest) string {
	var sb strings.Builder

	sb.WriteString("You are a crypto fortune teller predicting wallet luck from on-chain vibes.\n")
	sb.WriteString("This is pure entertainment, not investment advice.\n\n")

	sb.WriteString("## Current state\n")
	fmt.Fprintf(&sb, "- Current fortune score: %d/100\n", req.CurrentScore)
	fmt.Fprintf(&sb, "- Recent trend: %s\n", req.Trend)
	fmt.Fprintf(&sb, "- Recent scores: %s\n", joinScores(req.RecentScores))
	fmt.Fprintf(&sb, "- Tags: %s\n", strings.Join(req.Tags, ", "))
	fmt.Fprintf(&sb, "- Current PnL: %+.1f%%\n", req.PnlPercent)
	fmt.Fprintf(&sb, "- Wallet age: %s\n", req.WalletAge)

	sb.WriteString("\n## Forecast request\n")
	sb.WriteString("Predict a fortune score (1-100) for each of these months:\n")
	for _, m := range req.FutureMonths {
		fmt.Fprintf(&sb, "- %s: ?\n", m)
	}

	sb.WriteString(`
## Rules
1. scores must rise and fall, never a straight monotonic line
2. continue the current trend plausibly but include a turning point
3. optional short labels per month (like "turning point", "moonshot month", "coast mode", "loading up")
4. one short line of fortune advice (at most 15 words)

Respond with JSON in this shape:
{
  "predictions": [
    {"date": "2025-07", "score": 65, "label": "loading up"},
    ...
  ],
  "peakMonth": "2025-10",
  "advice": "ride the wave, take profits at the peak"
}

Output only the JSON, nothing else:
`)

	return sb.String()
}

func joinScores(scores []int) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, " -> ")
}
