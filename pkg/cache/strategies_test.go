package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/cache"
	"storefront/pkg/cache/cachetest"
	"storefront/pkg/logger"
)

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestReadThrough_FetchesOnceThenHits(t *testing.T) {
	cm := cache.NewCacheManager(cachetest.NewMemory(), logger.Nop())
	ctx := context.Background()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &item{ID: 1, Name: "Pen"}, nil
	}

	var first, second item
	require.NoError(t, cm.ReadThrough(ctx, cache.ProductCacheKey(1), &first, fetch, cache.ShortExpiration))
	require.NoError(t, cm.ReadThrough(ctx, cache.ProductCacheKey(1), &second, fetch, cache.ShortExpiration))

	assert.Equal(t, 1, calls)
	assert.Equal(t, item{ID: 1, Name: "Pen"}, first)
	assert.Equal(t, first, second)
}

func TestReadThrough_FetchErrorIsNotCached(t *testing.T) {
	mem := cachetest.NewMemory()
	cm := cache.NewCacheManager(mem, logger.Nop())
	boom := errors.New("boom")

	var dest item
	err := cm.ReadThrough(context.Background(), "k", &dest, func() (interface{}, error) { return nil, boom }, cache.ShortExpiration)

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, mem.Len())
}

func TestReadThrough_CacheFailureFallsBackToSource(t *testing.T) {
	mem := cachetest.NewMemory()
	mem.FailGets(errors.New("redis down"))
	cm := cache.NewCacheManager(mem, logger.Nop())

	var dest item
	err := cm.ReadThrough(context.Background(), "k", &dest, func() (interface{}, error) {
		return item{ID: 2, Name: "Ink"}, nil
	}, cache.ShortExpiration)

	require.NoError(t, err)
	assert.Equal(t, int64(2), dest.ID)
}

func TestReadThrough_InvalidateDuringFetchSkipsFill(t *testing.T) {
	mem := cachetest.NewMemory()
	cm := cache.NewCacheManager(mem, logger.Nop())
	ctx := context.Background()
	key := cache.ProductCacheKey(1)

	// a writer commits and invalidates after the reader fetched the old row
	var stale item
	err := cm.ReadThrough(ctx, key, &stale, func() (interface{}, error) {
		old := item{ID: 1, Name: "Pen"}
		cm.Invalidate(ctx, key)
		return old, nil
	}, cache.ShortExpiration)
	require.NoError(t, err)
	assert.Equal(t, "Pen", stale.Name)
	assert.False(t, mem.Has(key))

	var fresh item
	err = cm.ReadThrough(ctx, key, &fresh, func() (interface{}, error) {
		return item{ID: 1, Name: "Fountain pen"}, nil
	}, cache.ShortExpiration)
	require.NoError(t, err)
	assert.True(t, mem.Has(key))

	var cached item
	require.NoError(t, mem.Get(ctx, key, &cached))
	assert.Equal(t, "Fountain pen", cached.Name)
}

func TestInvalidate(t *testing.T) {
	mem := cachetest.NewMemory()
	cm := cache.NewCacheManager(mem, logger.Nop())
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, cache.ProductCacheKey(1), item{ID: 1}, cache.ShortExpiration))
	cm.Invalidate(ctx, cache.ProductCacheKey(1))

	var dest item
	assert.ErrorIs(t, mem.Get(ctx, cache.ProductCacheKey(1), &dest), cache.ErrCacheMiss)
}

func TestProductCacheKey(t *testing.T) {
	assert.Equal(t, "product:id:42", cache.ProductCacheKey(42))
}
