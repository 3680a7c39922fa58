package history

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"calculator-frontend/internal/config"
)

// redisPrefix namespaces the front end's keys in a shared Redis.
const redisPrefix = "calculator-frontend:"

// ClosableCache is a LocalCache holding resources that must be released.
type ClosableCache interface {
	LocalCache
	Close() error
}

// OpenCache opens the local cache backend selected by cfg.Cache. A Redis
// backend is pinged so an unreachable server fails here rather than on the
// first write.
func OpenCache(ctx context.Context, cfg config.Config) (ClosableCache, error) {
	switch cfg.Cache {
	case config.CacheMemory:
		return NewMemoryCache(), nil

	case config.CacheSQLite:
		return NewSQLiteCache(cfg.CachePath)

	case config.CacheRedis:
		cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), redisPrefix)
		if err := cache.Ping(ctx); err != nil {
			cache.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return cache, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache)
	}
}
