package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T, mr *miniredis.Miniredis, ttl time.Duration) *RedisCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c, err := NewRedisCache(client, ttl)
	require.NoError(t, err)
	return c
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := newTestRedisCache(t, mr, time.Minute)

	payload := bytes.Repeat([]byte(`{"rows":[{"qty":"100"}]}`), 50)
	c.Set(ctx, "1:turnover:2025-06-01:2025-06-30", payload)

	got, ok := c.Get(ctx, "1:turnover:2025-06-01:2025-06-30")
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestRedisCacheMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestRedisCache(t, mr, time.Minute)

	_, ok := c.Get(context.Background(), "absent")
	require.False(t, ok)
}

// Entries written through one client are readable through another, the
// way the warmup worker fills the cache the API server reads.
func TestRedisCacheSharedBetweenProcesses(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	writer := newTestRedisCache(t, mr, time.Minute)
	reader := newTestRedisCache(t, mr, time.Minute)

	writer.Set(ctx, "7:supplier-aging:2025-06-30", []byte(`{"total":"800"}`))

	got, ok := reader.Get(ctx, "7:supplier-aging:2025-06-30")
	require.True(t, ok)
	require.Equal(t, []byte(`{"total":"800"}`), got)
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := newTestRedisCache(t, mr, time.Minute)

	c.Set(ctx, "k", []byte("v"))
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestRedisCacheDropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := newTestRedisCache(t, mr, time.Minute)

	require.NoError(t, mr.Set(reportKeyPrefix+"k", "not zstd"))

	_, ok := c.Get(ctx, "k")
	require.False(t, ok)
	require.False(t, mr.Exists(reportKeyPrefix+"k"))
}
