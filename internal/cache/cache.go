// Package cache provides a Redis-backed read cache for slow-changing
// directory data. The cache is strictly an accelerator: every operation
// degrades to a miss when Redis is unreachable, so the application keeps
// working without it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atomclub/attendance/internal/pkg/logger"
)

// Cache wraps a redis client with JSON value encoding and a default TTL
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis with short timeouts. A nil return never happens;
// connectivity problems surface as misses, not construction errors.
func New(addr, password string, ttl time.Duration) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Cache{client: client, ttl: ttl}
}

// Healthy verifies redis connectivity
func (c *Cache) Healthy(ctx context.Context) bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}

// Get reads the value stored under key into dest, reporting whether a
// cached value was found. Redis failures count as misses.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Debug().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		c.Delete(ctx, key)
		return false
	}
	return true
}

// Set stores value under key with the default TTL. Failures are logged
// and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache value")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Delete removes a key
func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("Cache delete failed")
	}
}

// Close releases the underlying connection pool
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
