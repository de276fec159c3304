package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wallet-fortune/internal/models"
)

// knownTokens maps common symbols straight to their CoinGecko IDs, skipping
// the search round trip
var knownTokens = map[string]string{
	"BTC":   "bitcoin",
	"WBTC":  "wrapped-bitcoin",
	"ETH":   "ethereum",
	"WETH":  "weth",
	"SOL":   "solana",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"DAI":   "dai",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"AAVE":  "aave",
	"MATIC": "matic-network",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"DOGE":  "dogecoin",
	"SHIB":  "shiba-inu",
	"PEPE":  "pepe",
	"BONK":  "bonk",
	"WIF":   "dogwifcoin",
	"FLOKI": "floki",
	"JUP":   "jupiter-exchange-solana",
	"RAY":   "raydium",
	"ORCA":  "orca",
	"MSOL":  "msol",
	"JTO":   "jito-governance-token",
	"PYTH":  "pyth-network",
}

const (
	coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

	// free tier allows roughly one request per 1.5 seconds
	coinGeckoInterval = 1500 * time.Millisecond

	priceCacheTTL = 5 * time.Minute
)

// CoinGeckoClient implements TokenInfoProvider and OHLCProvider against the
// CoinGecko public API. Responses are cached in Redis for a short TTL and
// requests are serialized through a rate limiter; a circuit breaker stops
// hammering the API once it starts failing.
type CoinGeckoClient struct {
	baseURL  string
	client   *http.Client
	cache    *redis.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewCoinGeckoClient creates a client. cache may be nil to disable caching.
func NewCoinGeckoClient(cache *redis.Client, logger zerolog.Logger) *CoinGeckoClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "coingecko",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &CoinGeckoClient{
		baseURL:  coinGeckoBaseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Every(coinGeckoInterval), 1),
		breaker:  breaker,
		cacheTTL: priceCacheTTL,
		logger:   logger.With().Str("component", "coingecko").Logger(),
	}
}

// NewCoinGeckoClientWithBaseURL creates a client against a custom endpoint
// without request throttling, used by tests
func NewCoinGeckoClientWithBaseURL(baseURL string, cache *redis.Client, logger zerolog.Logger) *CoinGeckoClient {
	c := NewCoinGeckoClient(cache, logger)
	c.baseURL = baseURL
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

type coinResponse struct {
	ID         string   `json:"id"`
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	MarketData struct {
		CurrentPrice struct {
			USD float64 `json:"usd"`
		} `json:"current_price"`
	} `json:"market_data"`
}

// TokenInfo resolves price and category data for a symbol. Unknown tokens and
// rate-limited lookups return nil without an error; callers treat them as
// unpriceable.
func (c *CoinGeckoClient) TokenInfo(ctx context.Context, symbol string) (*models.TokenInfo, error) {
	normalized := strings.ToUpper(symbol)
	cacheKey := "fortune:token_info:" + normalized

	if cached := c.cachedTokenInfo(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	tokenID, ok := knownTokens[normalized]
	if !ok {
		tokenID = strings.ToLower(symbol)
	}

	info, err := c.fetchCoin(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if info == nil && !ok {
		// unknown ID guess failed, try the search endpoint
		info, err = c.searchBySymbol(ctx, normalized)
		if err != nil {
			return nil, err
		}
	}
	if info == nil {
		return nil, nil
	}

	c.storeTokenInfo(ctx, cacheKey, info)
	return info, nil
}

func (c *CoinGeckoClient) fetchCoin(ctx context.Context, tokenID string) (*models.TokenInfo, error) {
	path := fmt.Sprintf("/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false&sparkline=false",
		url.PathEscape(tokenID))

	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusTooManyRequests:
		c.logger.Warn().Str("token", tokenID).Msg("rate limited by coingecko")
		return nil, nil
	default:
		return nil, fmt.Errorf("coingecko status %d for %s", status, tokenID)
	}

	var coin coinResponse
	if err := json.Unmarshal(body, &coin); err != nil {
		return nil, fmt.Errorf("decoding coin response: %w", err)
	}

	return &models.TokenInfo{
		ID:       coin.ID,
		Symbol:   strings.ToUpper(coin.Symbol),
		Name:     coin.Name,
		PriceUSD: coin.MarketData.CurrentPrice.USD,
		IsMeme:   isMemeCategory(coin.Categories),
	}, nil
}

func isMemeCategory(categories []string) bool {
	for _, cat := range categories {
		lower := strings.ToLower(cat)
		if strings.Contains(lower, "meme") || strings.Contains(lower, "dog") {
			return true
		}
	}
	return false
}

type searchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
	} `json:"coins"`
}

// searchBySymbol resolves an unknown symbol through the search endpoint,
// preferring an exact symbol match over the top hit
func (c *CoinGeckoClient) searchBySymbol(ctx context.Context, symbol string) (*models.TokenInfo, error) {
	body, status, err := c.get(ctx, "/search?query="+url.QueryEscape(symbol))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, nil
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if len(result.Coins) == 0 {
		return nil, nil
	}

	match := result.Coins[0]
	for _, coin := range result.Coins {
		if strings.EqualFold(coin.Symbol, symbol) {
			match = coin
			break
		}
	}

	return c.fetchCoin(ctx, match.ID)
}

// HistoricalOHLC fetches candles for a symbol. days must be one of the API's
// supported windows (1, 7, 14, 30, 90, 180, 365).
func (c *CoinGeckoClient) HistoricalOHLC(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	normalized := strings.ToUpper(symbol)
	tokenID, ok := knownTokens[normalized]
	if !ok {
		tokenID = strings.ToLower(symbol)
	}

	cacheKey := fmt.Sprintf("fortune:ohlc:%s:%d", tokenID, days)
	if cached := c.cachedCandles(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	path := fmt.Sprintf("/coins/%s/ohlc?vs_currency=usd&days=%d", url.PathEscape(tokenID), days)
	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("coingecko ohlc status %d for %s", status, tokenID)
	}

	// wire format: [[timestampMillis, open, high, low, close], ...]
	var rows [][]float64
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decoding ohlc response: %w", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, models.Candle{
			Timestamp: int64(row[0]),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
		})
	}

	c.storeCandles(ctx, cacheKey, candles)
	return candles, nil
}

// get performs a throttled request through the circuit breaker, returning
// the body and status code. 404 and 429 are not breaker failures.
func (c *CoinGeckoClient) get(ctx context.Context, path string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	type response struct {
		body   []byte
		status int
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("coingecko server error %d", resp.StatusCode)
		}
		return response{body: body, status: resp.StatusCode}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	r := result.(response)
	return r.body, r.status, nil
}

func (c *CoinGeckoClient) cachedTokenInfo(ctx context.Context, key string) *models.TokenInfo {
	if c.cache == nil {
		return nil
	}
	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var info models.TokenInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil
	}
	return &info
}

func (c *CoinGeckoClient) storeTokenInfo(ctx context.Context, key string, info *models.TokenInfo) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *CoinGeckoClient) cachedCandles(ctx context.Context, key string) []models.Candle {
	if c.cache == nil {
		return nil
	}
	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var candles []models.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil
	}
	return candles
}

func (c *CoinGeckoClient) storeCandles(ctx context.Context, key string, candles []models.Candle) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(candles)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}
