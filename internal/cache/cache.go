// Package cache is a thin JSON read-through layer over redis for provider
// responses. A nil *Cache is valid and always misses, so sweeps degrade to
// direct API calls when redis is down.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/metrics"
)

// Cache wraps a redis client.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
}

// New connects to redis and pings it. An unreachable redis returns an
// error; callers decide whether that is fatal.
func New(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{
		client: client,
		logger: log.With().Str("component", "cache").Logger(),
	}, nil
}

// Key builds a namespaced cache key.
func Key(parts ...string) string {
	return "soccer:" + strings.Join(parts, ":")
}

// Get unmarshals the cached value into out and reports whether it was
// present.
func (c *Cache) Get(ctx context.Context, key string, out interface{}) bool {
	if c == nil {
		return false
	}

	start := time.Now()
	data, err := c.client.Get(ctx, key).Bytes()
	metrics.RecordCacheOperation("get", time.Since(start).Seconds())

	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		metrics.RecordCacheMiss()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt entry is dropped so the next write can repair it
		c.logger.Warn().Err(err).Str("key", key).Msg("Dropping unreadable cache entry")
		c.client.Del(ctx, key)
		metrics.RecordCacheMiss()
		return false
	}

	metrics.RecordCacheHit()
	return true
}

// Set stores value as JSON under key with a TTL. Failures are logged, not
// returned; the cache is best effort.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to marshal cache value")
		return
	}

	start := time.Now()
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	metrics.RecordCacheOperation("set", time.Since(start).Seconds())
}

// Health pings redis.
func (c *Cache) Health(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
