package question

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTripAndExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got, "cold cache should miss")

	pool := []Question{poolQuestion("q1"), poolQuestion("q2")}
	require.NoError(t, cache.Set(ctx, pool))

	got, err = cache.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, pool, got)

	mr.FastForward(2 * time.Minute)
	got, err = cache.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, got, "entry should expire with the TTL")
}
