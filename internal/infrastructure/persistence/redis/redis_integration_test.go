//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/burgermaster/blendcalc/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRedisStores(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	client := testutils.SetupTestRedis(t)

	t.Run("StateStore_ShouldRoundTripAndPrefix", func(t *testing.T) {
		store := NewStateStore(client, "blendcalc:")

		_, err := store.Get(ctx, "burger-master-units")
		assert.ErrorIs(t, err, blend.ErrStateNotFound)

		require.NoError(t, store.Set(ctx, "burger-master-units", "30"))
		value, err := store.Get(ctx, "burger-master-units")
		require.NoError(t, err)
		assert.Equal(t, "30", value)

		raw, err := client.Get(ctx, "blendcalc:burger-master-units").Result()
		require.NoError(t, err)
		assert.Equal(t, "30", raw)

		require.NoError(t, store.Delete(ctx, "burger-master-units"))
		_, err = store.Get(ctx, "burger-master-units")
		assert.ErrorIs(t, err, blend.ErrStateNotFound)
	})

	t.Run("StateStore_ShouldBatchWritesAndDeletes", func(t *testing.T) {
		store := NewStateStore(client, "batch:")

		require.NoError(t, store.SetMany(ctx, map[string]string{
			"burger-master-units":         "12",
			"burger-master-selling-price": "40",
		}))
		raw, err := client.Get(ctx, "batch:burger-master-selling-price").Result()
		require.NoError(t, err)
		assert.Equal(t, "40", raw)

		require.NoError(t, store.DeleteMany(ctx, []string{"burger-master-units", "burger-master-selling-price"}))
		n, err := client.Exists(ctx, "batch:burger-master-units", "batch:burger-master-selling-price").Result()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("CacheRepository_ShouldExpire", func(t *testing.T) {
		cache := NewCacheRepository(client, "cache:", zaptest.NewLogger(t))

		_, err := cache.Get(ctx, "missing")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)

		require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Second))
		exists, err := cache.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, exists)

		assert.Eventually(t, func() bool {
			ok, err := cache.Exists(ctx, "k")
			return err == nil && !ok
		}, 5*time.Second, 100*time.Millisecond)
	})
}
