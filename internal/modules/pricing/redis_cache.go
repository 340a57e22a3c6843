// README: Redis-backed quote cache (JSON values with TTL).
package pricing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const quoteKeyPrefix = "quote:"

// RedisCache stores breakdowns as JSON under a TTL, so cache expiry is
// enforced by redis itself and entries are shared across instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Breakdown, bool) {
	data, err := c.client.Get(ctx, quoteKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var b Breakdown
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, false
	}
	b.Locked = false
	return &b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, b *Breakdown) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, quoteKeyPrefix+key, data, c.ttl).Err()
}
