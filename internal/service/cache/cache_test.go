package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(10)

	_, ok, err := c.GetBytes(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), b)

	require.NoError(t, c.SetBytes(ctx, "short", []byte("2"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok, _ = c.GetBytes(ctx, "short")
	assert.False(t, ok)
}

func TestTTLCache_Bounded(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(3)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, c.SetBytes(ctx, k, []byte(k), time.Minute))
	}
	assert.LessOrEqual(t, c.Len(), 3)
	b, ok, _ := c.GetBytes(ctx, "e")
	assert.True(t, ok)
	assert.Equal(t, []byte("e"), b)
}

func TestValuesKey(t *testing.T) {
	assert.Equal(t, "values:v1:3:1:1709287200", ValuesKey("v1", 3, 1, 1709287200))
	assert.NotEqual(t, ValuesKey("v1", 1, 0, 10), ValuesKey("v2", 1, 0, 10))
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedisCache(RedisConfig{Addr: addr, Prefix: "weights-test"})
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	_, ok, err = c.GetBytes(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}
