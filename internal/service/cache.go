package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 90 * time.Second

// RedisClient is the subset of go-redis used for snapshot caching.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type snapshotCache struct {
	redis RedisClient
	ttl   time.Duration
}

func newSnapshotCache(client RedisClient, ttl time.Duration) snapshotCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return snapshotCache{redis: client, ttl: ttl}
}

func (c snapshotCache) enabled() bool { return c.redis != nil }

func (c snapshotCache) set(ctx context.Context, key string, v any) error {
	if c.redis == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, key, data, c.ttl).Err()
}

// get decodes the cached value into v. A miss returns false with a nil error.
func (c snapshotCache) get(ctx context.Context, key string, v any) (bool, error) {
	if c.redis == nil {
		return false, nil
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}
