package caches

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCacheSetGet(t *testing.T) {
	cache := NewLocalCacheWithoutLoader[string](0)
	defer cache.Close()
	ctx := context.Background()

	_, err := cache.Get(ctx, "k1")
	require.Error(t, err)

	require.NoError(t, cache.Set(ctx, "k1", "v1"))
	value, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	exists, err := cache.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "k1"))
	_, err = cache.Get(ctx, "k1")
	assert.Error(t, err)
}

func TestLocalCacheTTL(t *testing.T) {
	cache := NewLocalCacheWithoutLoader[int](30 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1))
	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	time.Sleep(50 * time.Millisecond)
	_, err = cache.Get(ctx, "k")
	assert.Error(t, err)

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalCacheLoader(t *testing.T) {
	t.Run("未命中时加载并缓存", func(t *testing.T) {
		var loads int32
		cache := NewLocalCache[string](func(ctx context.Context, key string) (string, error) {
			atomic.AddInt32(&loads, 1)
			return "loaded:" + key, nil
		}, time.Minute)
		defer cache.Close()
		ctx := context.Background()

		value, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "loaded:k", value)

		_, err = cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	})

	t.Run("并发同一key只加载一次", func(t *testing.T) {
		var loads int32
		cache := NewLocalCache[string](func(ctx context.Context, key string) (string, error) {
			atomic.AddInt32(&loads, 1)
			time.Sleep(20 * time.Millisecond)
			return "loaded:" + key, nil
		}, time.Minute)
		defer cache.Close()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				value, err := cache.Get(context.Background(), "k")
				assert.NoError(t, err)
				assert.Equal(t, "loaded:k", value)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	})

	t.Run("加载失败不缓存", func(t *testing.T) {
		var loads int32
		cache := NewLocalCache[string](func(ctx context.Context, key string) (string, error) {
			atomic.AddInt32(&loads, 1)
			return "", errors.New("load failed")
		}, time.Minute)
		defer cache.Close()
		ctx := context.Background()

		_, err := cache.Get(ctx, "k")
		require.Error(t, err)
		_, err = cache.Get(ctx, "k")
		require.Error(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
	})
}

func TestLocalCacheClean(t *testing.T) {
	cache := NewLocalCacheWithoutLoader[int](0)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1))
	require.NoError(t, cache.Set(ctx, "b", 2))
	require.NoError(t, cache.Clean(ctx))

	_, err := cache.Get(ctx, "a")
	assert.Error(t, err)
	_, err = cache.Get(ctx, "b")
	assert.Error(t, err)
}
