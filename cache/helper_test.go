package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCacheAsideMissThenHit(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			fetches++
			*dest = []string{"#golang", "#redis"}
			return nil
		}
	}

	var first []string
	require.NoError(t, CacheAside(ctx, rdb, "trending:test", &first, time.Minute, fetch(&first)))
	assert.Equal(t, []string{"#golang", "#redis"}, first)
	assert.Equal(t, 1, fetches)

	// The second read is served from the cache.
	var second []string
	require.NoError(t, CacheAside(ctx, rdb, "trending:test", &second, time.Minute, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches)
}

func TestCacheAsideRefetchesAfterTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	ctx := context.Background()

	fetches := 0
	var dest int
	fetch := func() error {
		fetches++
		dest = fetches
		return nil
	}

	require.NoError(t, CacheAside(ctx, rdb, "counter", &dest, time.Minute, fetch))
	require.Equal(t, 1, fetches)

	mr.FastForward(time.Minute + time.Second)

	require.NoError(t, CacheAside(ctx, rdb, "counter", &dest, time.Minute, fetch))
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 2, dest)
}

func TestCacheAsideNilClientAlwaysFetches(t *testing.T) {
	ctx := context.Background()

	fetches := 0
	var dest string
	fetch := func() error {
		fetches++
		dest = "fresh"
		return nil
	}

	require.NoError(t, CacheAside(ctx, nil, "key", &dest, time.Minute, fetch))
	require.NoError(t, CacheAside(ctx, nil, "key", &dest, time.Minute, fetch))
	assert.Equal(t, 2, fetches)
	assert.Equal(t, "fresh", dest)
}

func TestGetJSONMissingKey(t *testing.T) {
	rdb := newTestRedis(t)

	var dest map[string]any
	found, err := GetJSON(context.Background(), rdb, "absent", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetJSONThenGetJSON(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	type entry struct {
		Tag   string `json:"tag"`
		Count int    `json:"count"`
	}
	require.NoError(t, SetJSON(ctx, rdb, "entry", entry{Tag: "#go", Count: 3}, time.Minute))

	var got entry
	found, err := GetJSON(ctx, rdb, "entry", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{Tag: "#go", Count: 3}, got)
}
