// internal/readiness/cache.go

package readiness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// Cache holds decisions for quick reads; a miss is (nil, nil)
type Cache interface {
	Get(ctx context.Context, pair matches.Pair) (*Result, error)
	Set(ctx context.Context, res *Result, ttl time.Duration) error
	Delete(ctx context.Context, pair matches.Pair) error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache caches decisions as JSON strings
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func cacheKey(pair matches.Pair) string {
	return "readiness:" + pair.String()
}

func (c *redisCache) Get(ctx context.Context, pair matches.Pair) (*Result, error) {
	raw, err := c.client.Get(ctx, cacheKey(pair)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &res, nil
}

func (c *redisCache) Set(ctx context.Context, res *Result, ttl time.Duration) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(res.Pair), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, pair matches.Pair) error {
	if err := c.client.Del(ctx, cacheKey(pair)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// NopCache is used when Redis is not configured
type NopCache struct{}

func (NopCache) Get(context.Context, matches.Pair) (*Result, error) { return nil, nil }
func (NopCache) Set(context.Context, *Result, time.Duration) error  { return nil }
func (NopCache) Delete(context.Context, matches.Pair) error         { return nil }
