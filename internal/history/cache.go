package history

import (
	"context"
	"sync"
)

// CacheKey is the local storage key holding the JSON-encoded history.
const CacheKey = "calculatorHistory"

// LocalCache is the front end's local persisted key/value storage.
type LocalCache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryCache is a process-local LocalCache.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = append([]byte(nil), value...)
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}
