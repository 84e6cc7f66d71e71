package query

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "veil/pkg/domain"
)

// RedisCache stores results as JSON with a server-side TTL. Redis failures
// degrade to cache misses; governance never depends on the cache being up.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, queryID string, level id.AnonymizationLevel) (*QueryResult, bool) {
	payload, err := c.client.Get(ctx, cacheKey(queryID, level)).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.WarnContext(ctx, "redis cache read failed", "query_id", queryID, "error", err)
		}
		return nil, false
	}
	var result QueryResult
	if err := json.Unmarshal(payload, &result); err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "redis cache payload corrupt", "query_id", queryID, "error", err)
		}
		return nil, false
	}
	return &result, true
}

func (c *RedisCache) Set(ctx context.Context, queryID string, level id.AnonymizationLevel, result *QueryResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "redis cache marshal failed", "query_id", queryID, "error", err)
		}
		return
	}
	if err := c.client.Set(ctx, cacheKey(queryID, level), payload, c.ttl).Err(); err != nil {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "redis cache write failed", "query_id", queryID, "error", err)
		}
	}
}
