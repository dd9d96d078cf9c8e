package di

import (
	"context"
	"sync"
	"time"

	"forum-api/application/ports"
)

// sweepInterval bounds how often Set walks the map for expired entries
const sweepInterval = time.Minute

// CacheMetrics counts cache lookups
type CacheMetrics interface {
	RecordCacheLookup(hit bool)
}

// InMemoryCache is the process local query cache. Expired entries are
// dropped lazily, on lookup and on the first Set after sweepInterval.
type InMemoryCache struct {
	mu        sync.RWMutex
	items     map[string]cacheItem
	metrics   CacheMetrics
	lastSweep time.Time
	now       func() time.Time
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

var _ ports.Cache = (*InMemoryCache)(nil)

// NewInMemoryCache creates a new in-memory cache. metrics may be nil.
func NewInMemoryCache(metrics CacheMetrics) *InMemoryCache {
	return &InMemoryCache{
		items:     make(map[string]cacheItem),
		metrics:   metrics,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	hit := exists && c.now().Before(item.expiresAt)
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(hit)
	}
	if !hit {
		return nil, false
	}
	return item.value, true
}

// Set stores a value in cache with TTL in seconds
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > sweepInterval {
		for k, item := range c.items {
			if !now.Before(item.expiresAt) {
				delete(c.items, k)
			}
		}
		c.lastSweep = now
	}

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: now.Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Clear removes all values from cache
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheItem)
	return nil
}

// Len reports how many entries are held, expired ones included
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
