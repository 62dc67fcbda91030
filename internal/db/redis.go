package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// SeenCache short-circuits the database for URLs ingested recently. It is
// advisory only; a cache miss or an unavailable Redis just means the
// upsert path decides, so correctness never depends on it.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenCache wraps an established Redis client. A nil client yields a
// cache that reports every URL as unseen.
func NewSeenCache(client *redis.Client, ttl time.Duration) *SeenCache {
	return &SeenCache{client: client, ttl: ttl}
}

const seenKeyPrefix = "jobfunnel:seen:"

// Seen reports whether the URL was marked within the TTL window.
func (c *SeenCache) Seen(ctx context.Context, url string) bool {
	if c == nil || c.client == nil {
		return false
	}
	n, err := c.client.Exists(ctx, seenKeyPrefix+url).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Mark records the URL for the TTL window. Errors are ignored; the next
// lookup simply misses.
func (c *SeenCache) Mark(ctx context.Context, url string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, seenKeyPrefix+url, 1, c.ttl)
}
