package history

import (
	"context"
	"path/filepath"
	"testing"

	"calculator-frontend/internal/config"
)

func TestOpenCacheBackends(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Cache = config.CacheMemory
	mem, err := OpenCache(ctx, cfg)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := mem.(*MemoryCache); !ok {
		t.Fatalf("expected *MemoryCache, got %T", mem)
	}

	cfg.Cache = config.CacheSQLite
	cfg.CachePath = filepath.Join(t.TempDir(), "history.db")
	sqlite, err := OpenCache(ctx, cfg)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer sqlite.Close()
	exerciseCache(t, sqlite)
}

func TestOpenCacheUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Cache = "tape"

	if _, err := OpenCache(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenCacheRedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Cache = config.CacheRedis
	cfg.RedisAddr = "127.0.0.1:1"

	if _, err := OpenCache(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}
