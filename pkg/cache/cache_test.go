package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forumauth/pkg/cache"
)

func newMemory[V any](t *testing.T) *cache.Memory[V] {
	t.Helper()

	c := cache.NewMemory[V](time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemory(t *testing.T) {
	t.Parallel()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		_, err := newMemory[string](t).Get(context.Background(), "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := newMemory[int](t)
		require.NoError(t, c.Set(ctx, "key", 42, 0))

		v, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, 42, v)
	})

	t.Run("expired entry", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := newMemory[string](t)
		require.NoError(t, c.Set(ctx, "key", "value", time.Millisecond))

		time.Sleep(5 * time.Millisecond)

		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := newMemory[string](t)
		require.NoError(t, c.Set(ctx, "key", "value", -1))

		v, err := c.Get(ctx, "key")
		require.NoError(t, err)
		require.Equal(t, "value", v)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := newMemory[string](t)
		require.NoError(t, c.Set(ctx, "key", "value", 0))
		require.NoError(t, c.Delete(ctx, "key"))
		require.NoError(t, c.Delete(ctx, "key"))

		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := cache.NewMemory[string](0)
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		require.ErrorIs(t, c.Set(ctx, "key", "value", 0), cache.ErrClosed)
		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrClosed)
	})
}

func TestLoader_GetOrSet(t *testing.T) {
	t.Parallel()

	t.Run("loads once then serves from cache", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		loader := cache.NewLoader[string](newMemory[string](t))

		var calls atomic.Int32
		load := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			return "loaded", time.Minute, nil
		}

		for range 3 {
			v, err := loader.GetOrSet(ctx, "key", load)
			require.NoError(t, err)
			require.Equal(t, "loaded", v)
		}
		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		loader := cache.NewLoader[string](newMemory[string](t))
		errLoad := errors.New("load failed")

		_, err := loader.GetOrSet(ctx, "key", func(context.Context) (string, time.Duration, error) {
			return "", 0, errLoad
		})
		require.ErrorIs(t, err, errLoad)

		_, err = loader.Cache().Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("concurrent misses call fn once", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		loader := cache.NewLoader[int](newMemory[int](t))

		var calls atomic.Int32
		release := make(chan struct{})
		load := func(context.Context) (int, time.Duration, error) {
			calls.Add(1)
			<-release
			return 7, time.Minute, nil
		}

		var wg sync.WaitGroup
		for range 10 {
			wg.Go(func() {
				v, err := loader.GetOrSet(ctx, "key", load)
				assert.NoError(t, err)
				assert.Equal(t, 7, v)
			})
		}

		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.LessOrEqual(t, calls.Load(), int32(2))
	})

	t.Run("separate loaders do not share results", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		a := cache.NewLoader[string](newMemory[string](t))
		b := cache.NewLoader[string](newMemory[string](t))

		va, err := a.GetOrSet(ctx, "key", func(context.Context) (string, time.Duration, error) {
			return "a", 0, nil
		})
		require.NoError(t, err)

		vb, err := b.GetOrSet(ctx, "key", func(context.Context) (string, time.Duration, error) {
			return "b", 0, nil
		})
		require.NoError(t, err)

		require.Equal(t, "a", va)
		require.Equal(t, "b", vb)
	})
}
