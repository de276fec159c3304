// Package main provides the API server entry point for the wallet fortune
// service.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wallet-fortune/internal/adapter"
	"github.com/wallet-fortune/internal/api"
	"github.com/wallet-fortune/internal/bazi"
	"github.com/wallet-fortune/internal/config"
	"github.com/wallet-fortune/internal/kline"
	"github.com/wallet-fortune/internal/logging"
	"github.com/wallet-fortune/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := logging.New("info", "json")
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info().Str("level", cfg.Logging.Level).Str("format", cfg.Logging.Format).Msg("logging initialized")

	// Redis backs both the pricing cache and the result cache; the service
	// degrades to uncached operation when it is unreachable
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, running without caches")
			redisClient = nil
		}
		cancel()
	}

	ethereum, err := adapter.NewEthereumAdapter(cfg.Chains.EthRPCURL, cfg.Chains.EtherscanAPIKey, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize ethereum adapter")
	}
	solana := adapter.NewSolanaAdapter(cfg.Chains.SolanaRPCURL, logger)
	coingecko := adapter.NewCoinGeckoClient(redisClient, logger)

	var ai adapter.AIProvider
	if cfg.AI.Model != "" {
		ai = adapter.NewAnthropicClient(cfg.AI.APIKey, cfg.AI.Model, logger)
	} else {
		logger.Warn().Msg("no AI model configured, using fallback content")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	generator := kline.NewGenerator(coingecko, rng, time.Now, logger)

	forecasts := bazi.ForecastTableForYear(cfg.Forecast.Year)
	if defaults := bazi.DefaultForecastTable(); forecasts.Year != defaults.Year {
		logger.Warn().Int("year", forecasts.Year).Str("cyclic", forecasts.CyclicLabel).
			Int("narrative_year", defaults.Year).
			Msg("forecast year overridden; narrative texts remain the built-in year's set")
	}

	resultCache := service.NewResultCache(redisClient, cfg.Cache.ResultTTL, logger)
	analysisService := service.NewAnalysisService(
		ethereum, solana, coingecko, ai, generator, forecasts, resultCache, logger)

	server := api.NewServer(&api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}, analysisService, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("server stopped unexpectedly")
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if redisClient != nil {
		redisClient.Close()
	}
}
