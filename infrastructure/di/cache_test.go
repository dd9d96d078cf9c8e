package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupCounter struct{ hits, misses int }

func (c *lookupCounter) RecordCacheLookup(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func TestInMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	metrics := &lookupCounter{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewInMemoryCache(metrics)
	cache.now = func() time.Time { return now }

	_, found := cache.Get(ctx, "k")
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "k", "v", 10))
	value, found := cache.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "v", value)

	now = now.Add(11 * time.Second)
	_, found = cache.Get(ctx, "k")
	assert.False(t, found)

	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 2, metrics.misses)
}

func TestInMemoryCache_SetSweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewInMemoryCache(nil)
	cache.now = func() time.Time { return now }
	cache.lastSweep = now

	require.NoError(t, cache.Set(ctx, "old", 1, 1))
	require.NoError(t, cache.Set(ctx, "fresh", 2, 600))
	now = now.Add(2 * time.Minute)

	require.NoError(t, cache.Set(ctx, "new", 3, 600))

	assert.Equal(t, 2, cache.Len())
	_, found := cache.Get(ctx, "fresh")
	assert.True(t, found)
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache(nil)
	require.NoError(t, cache.Set(ctx, "a", 1, 60))
	require.NoError(t, cache.Set(ctx, "b", 2, 60))

	require.NoError(t, cache.Delete(ctx, "a"))
	_, found := cache.Get(ctx, "a")
	assert.False(t, found)
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}
