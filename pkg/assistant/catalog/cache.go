package catalog

import (
	"context"
	"sync"
	"time"
)

// Cache stores product snapshots so repeated detail lookups do not hit
// the upstream API. A Get miss returns (nil, nil).
type Cache interface {
	Get(ctx context.Context, id int) (*Product, error)
	Put(ctx context.Context, products ...Product) error
}

// MemoryCache is a process-local product cache with a fixed TTL.
type MemoryCache struct {
	entries map[int]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

type cacheEntry struct {
	product  Product
	cachedAt time.Time
}

// MemoryCacheOption configures the memory cache.
type MemoryCacheOption func(*MemoryCache)

// WithTTL sets how long cached products stay valid.
func WithTTL(ttl time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.ttl = ttl
	}
}

func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[int]cacheEntry),
		ttl:     time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(ctx context.Context, id int) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	if c.ttl > 0 && time.Since(entry.cachedAt) > c.ttl {
		return nil, nil
	}
	product := entry.product
	return &product, nil
}

func (c *MemoryCache) Put(ctx context.Context, products ...Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for _, p := range products {
		c.entries[p.ID] = cacheEntry{product: p, cachedAt: now}
	}
	return nil
}
