package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wallet-fortune/internal/models"
)

const (
	resultAddressKeyPrefix = "fortune:result:addr:"
	resultIDKeyPrefix      = "fortune:result:id:"
)

// ResultCache stores finished analyses in Redis for a short TTL, indexed both
// by wallet address and by result ID so share links stay warm. A nil Redis
// client disables caching: every lookup misses and writes are dropped.
type ResultCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewResultCache creates a cache with the given TTL
func NewResultCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ResultCache {
	return &ResultCache{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "result_cache").Logger(),
	}
}

// GetByAddress returns the cached analysis for a normalized address, or nil
// on a miss. Cache errors are logged and treated as misses.
func (c *ResultCache) GetByAddress(ctx context.Context, address string) *models.AnalysisResult {
	return c.get(ctx, resultAddressKeyPrefix+strings.ToLower(address))
}

// GetByID returns the cached analysis with the given result ID, or nil on a
// miss
func (c *ResultCache) GetByID(ctx context.Context, id string) *models.AnalysisResult {
	return c.get(ctx, resultIDKeyPrefix+id)
}

// Put stores a finished analysis under both its address and ID keys
func (c *ResultCache) Put(ctx context.Context, result *models.AnalysisResult) {
	if c.redis == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn().Err(err).Str("id", result.ID).Msg("result marshal failed")
		return
	}

	pipe := c.redis.Pipeline()
	pipe.Set(ctx, resultAddressKeyPrefix+strings.ToLower(result.Address), data, c.ttl)
	pipe.Set(ctx, resultIDKeyPrefix+result.ID, data, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn().Err(err).Str("id", result.ID).Msg("result cache write failed")
	}
}

func (c *ResultCache) get(ctx context.Context, key string) *models.AnalysisResult {
	if c.redis == nil {
		return nil
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("result cache read failed")
		}
		return nil
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("result cache decode failed")
		return nil
	}
	return &result
}
