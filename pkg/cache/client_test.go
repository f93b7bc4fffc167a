package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, "value", got)

	require.NoError(t, c.Delete(ctx, "key"))

	_, err = c.Get(ctx, "key")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "key", "value", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "key")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, c, "key", payload{Name: "go", Count: 3}, time.Minute))

	var decoded payload
	require.NoError(t, GetJSON(ctx, c, "key", &decoded))
	require.Equal(t, payload{Name: "go", Count: 3}, decoded)

	err := GetJSON(ctx, c, "missing", &decoded)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestDisabledRedisClientIsNoOp(t *testing.T) {
	ctx := context.Background()

	c, err := NewRedisClient("", "", 0)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

	_, err = c.Get(ctx, "key")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Delete(ctx, "key"))
	require.NoError(t, c.Close())
}
