//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront/pkg/cache"
	"storefront/pkg/logger"
)

func startRedis(t *testing.T) cache.Cache {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	addr, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, cache.Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisCache(client, logger.Nop(), "storefront")
}

func TestRedisCache_GenerationFencesStaleFill(t *testing.T) {
	rc := startRedis(t)
	ctx := context.Background()
	key := cache.ProductCacheKey(1)

	gen, err := rc.Generation(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, rc.Delete(ctx, key))

	stored, err := rc.SetIfGeneration(ctx, key, item{ID: 1, Name: "Pen"}, time.Minute, gen)
	require.NoError(t, err)
	assert.False(t, stored)

	var dest item
	assert.ErrorIs(t, rc.Get(ctx, key, &dest), cache.ErrCacheMiss)

	gen, err = rc.Generation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	stored, err = rc.SetIfGeneration(ctx, key, item{ID: 1, Name: "Fountain pen"}, time.Minute, gen)
	require.NoError(t, err)
	assert.True(t, stored)

	require.NoError(t, rc.Get(ctx, key, &dest))
	assert.Equal(t, "Fountain pen", dest.Name)
}

func TestRedisCache_ReadThroughWithInterleavedInvalidate(t *testing.T) {
	rc := startRedis(t)
	cm := cache.NewCacheManager(rc, logger.Nop())
	ctx := context.Background()
	key := cache.ProductCacheKey(2)

	var dest item
	require.NoError(t, cm.ReadThrough(ctx, key, &dest, func() (interface{}, error) {
		cm.Invalidate(ctx, key)
		return item{ID: 2, Name: "Ink"}, nil
	}, time.Minute))

	assert.ErrorIs(t, rc.Get(ctx, key, &dest), cache.ErrCacheMiss)
}
