package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestTokenInfoKnownSymbol(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		require.Equal(t, "/coins/bitcoin", r.URL.Path)
		fmt.Fprint(w, `{
			"id": "bitcoin",
			"symbol": "btc",
			"name": "Bitcoin",
			"categories": ["Cryptocurrency", "Layer 1 (L1)"],
			"market_data": {"current_price": {"usd": 65000.5}}
		}`)
	}))
	defer server.Close()

	client := NewCoinGeckoClientWithBaseURL(server.URL, testRedis(t), zerolog.Nop())

	info, err := client.TokenInfo(context.Background(), "btc")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "bitcoin", info.ID)
	assert.Equal(t, "BTC", info.Symbol)
	assert.Equal(t, "Bitcoin", info.Name)
	assert.Equal(t, 65000.5, info.PriceUSD)
	assert.False(t, info.IsMeme)

	t.Run("second lookup is served from cache", func(t *testing.T) {
		again, err := client.TokenInfo(context.Background(), "BTC")
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.Equal(t, info.PriceUSD, again.PriceUSD)
		assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	})
}

func TestTokenInfoMemeCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"id": "pepe",
			"symbol": "pepe",
			"name": "Pepe",
			"categories": ["Meme Coins", "Ethereum Ecosystem"],
			"market_data": {"current_price": {"usd": 0.00001}}
		}`)
	}))
	defer server.Close()

	client := NewCoinGeckoClientWithBaseURL(server.URL, nil, zerolog.Nop())

	info, err := client.TokenInfo(context.Background(), "PEPE")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.True(t, info.IsMeme)
}

func TestTokenInfoSearchFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/coins/obscure":
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/search":
			require.Equal(t, "OBSCURE", r.URL.Query().Get("query"))
			fmt.Fprint(w, `{"coins": [
				{"id": "not-it", "symbol": "OBS"},
				{"id": "obscure-token", "symbol": "obscure"}
			]}`)
		case r.URL.Path == "/coins/obscure-token":
			fmt.Fprint(w, `{
				"id": "obscure-token",
				"symbol": "obscure",
				"name": "Obscure Token",
				"categories": [],
				"market_data": {"current_price": {"usd": 1.5}}
			}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewCoinGeckoClientWithBaseURL(server.URL, nil, zerolog.Nop())

	info, err := client.TokenInfo(context.Background(), "OBSCURE")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "obscure-token", info.ID)
	assert.Equal(t, 1.5, info.PriceUSD)
}

func TestTokenInfoRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCoinGeckoClientWithBaseURL(server.URL, nil, zerolog.Nop())

	info, err := client.TokenInfo(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestHistoricalOHLC(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		require.Equal(t, "/coins/solana/ohlc", r.URL.Path)
		require.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		require.Equal(t, "180", r.URL.Query().Get("days"))
		fmt.Fprint(w, `[
			[1700000000000, 55.0, 58.0, 54.0, 57.0],
			[1700345600000, 57.0, 60.0, 56.5, 59.5],
			[1700691200000]
		]`)
	}))
	defer server.Close()

	client := NewCoinGeckoClientWithBaseURL(server.URL, testRedis(t), zerolog.Nop())

	candles, err := client.HistoricalOHLC(context.Background(), "SOL", 180)
	require.NoError(t, err)
	// malformed short row is dropped
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1700000000000), candles[0].Timestamp)
	assert.Equal(t, 55.0, candles[0].Open)
	assert.Equal(t, 57.0, candles[0].Close)
	assert.Equal(t, 59.5, candles[1].Close)

	t.Run("second fetch is served from cache", func(t *testing.T) {
		again, err := client.HistoricalOHLC(context.Background(), "SOL", 180)
		require.NoError(t, err)
		assert.Len(t, again, 2)
		assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	})
}

func TestHistoricalOHLCErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewCoinGeckoClientWithBaseURL(server.URL, nil, zerolog.Nop())

	_, err := client.HistoricalOHLC(context.Background(), "NOPE", 30)
	assert.Error(t, err)
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewCoinGeckoClientWithBaseURL(server.URL, nil, zerolog.Nop())

	for i := 0; i < 5; i++ {
		_, err := client.TokenInfo(context.Background(), "ETH")
		assert.Error(t, err)
	}

	// breaker is now open: the request fails without reaching the server
	_, err := client.TokenInfo(context.Background(), "ETH")
	assert.Error(t, err)
}
