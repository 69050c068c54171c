package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedis(client, "homefoods:")
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func exerciseCache(t *testing.T, c Cache) {
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "catalog:all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "catalog:all", []byte(`[1,2]`), time.Minute))
	require.NoError(t, c.Set(ctx, "catalog:product:kaju", []byte(`{}`), time.Minute))
	require.NoError(t, c.Set(ctx, "session:x", []byte(`s`), time.Minute))

	val, ok, err := c.Get(ctx, "catalog:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(val))

	require.NoError(t, c.DeletePrefix(ctx, "catalog:"))

	_, ok, _ = c.Get(ctx, "catalog:product:kaju")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "session:x")
	assert.True(t, ok)
}

func TestRedis(t *testing.T) {
	mr, c := setupTestRedis(t)
	exerciseCache(t, c)

	t.Run("Namespaced keys", func(t *testing.T) {
		require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
		assert.True(t, mr.Exists("homefoods:k"))
	})

	t.Run("Expiry", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))
		mr.FastForward(2 * time.Second)
		_, ok, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Server down", func(t *testing.T) {
		mr.Close()
		_, _, err := c.Get(context.Background(), "catalog:all")
		assert.Error(t, err)
	})
}

func TestDial(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := Dial(context.Background(), "redis://"+mr.Addr()+"/0", "hf:")
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	_, err = Dial(context.Background(), "not-a-url", "hf:")
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseCache(t, m)

	t.Run("Expiry", func(t *testing.T) {
		ctx := context.Background()
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return now }

		require.NoError(t, m.Set(ctx, "short", []byte("v"), time.Second))
		require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))
		now = now.Add(time.Hour)

		_, ok, _ := m.Get(ctx, "short")
		assert.False(t, ok)
		_, ok, _ = m.Get(ctx, "forever")
		assert.True(t, ok)
	})

	t.Run("Values are copied", func(t *testing.T) {
		ctx := context.Background()
		buf := []byte("abc")
		require.NoError(t, m.Set(ctx, "copy", buf, 0))
		buf[0] = 'z'

		got, _, _ := m.Get(ctx, "copy")
		assert.Equal(t, "abc", string(got))
	})
}
