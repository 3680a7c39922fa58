package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
)

const testRedisAddr = "localhost:6379"

func exerciseCache(t *testing.T, cache LocalCache) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%t err=%v", ok, err)
	}

	if err := cache.Set(ctx, CacheKey, []byte(`[{"operation":"1+1"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Set(ctx, CacheKey, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, CacheKey)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%t err=%v", ok, err)
	}
	if string(got) != "[]" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestSQLiteCacheInMemory(t *testing.T) {
	cache, err := NewSQLiteCache(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	defer cache.Close()

	exerciseCache(t, cache)
}

func TestSQLiteCachePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calculator.db")

	cache, err := NewSQLiteCache(path)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	if err := cache.Set(context.Background(), CacheKey, []byte(`["kept"]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	cache.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	reopened, err := NewSQLiteCache(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get(context.Background(), CacheKey)
	if err != nil || !ok || string(got) != `["kept"]` {
		t.Fatalf("expected persisted value, got %q ok=%t err=%v", got, ok, err)
	}
}

// TestRedisCache requires Redis running on localhost:6379.
func TestRedisCache(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	cache := NewRedisCache(client, "test:history:")
	t.Cleanup(func() { cache.Close() })

	ctx := context.Background()
	if err := cache.Ping(ctx); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() {
		client.Del(context.Background(), "test:history:missing", "test:history:"+CacheKey)
	})

	exerciseCache(t, cache)
}
