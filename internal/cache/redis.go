package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// Client is nil when caching is disabled or Redis could not be reached.
var Client *redis.Client

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// InitRedis connects to addr, a host:port or a redis:// URL. An empty addr
// leaves caching disabled. On failure Client stays nil and the error is
// returned so callers can keep running without a cache.
func InitRedis(ctx context.Context, addr string) error {
	Client = nil
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to Redis: %w", err)
	}
	Client = client
	log.Info("Connected to Redis", "addr", opts.Addr)
	return nil
}
