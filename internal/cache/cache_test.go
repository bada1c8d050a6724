package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func counter(calls *int, v listing) func(context.Context) (listing, error) {
	return func(context.Context) (listing, error) {
		*calls++
		return v, nil
	}
}

func TestFetch_HitAfterMiss(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	calls := 0
	want := listing{Items: []string{"a", "b"}, Total: 2}

	got, err := Fetch(ctx, c, []string{TopicProducts}, "page=1", counter(&calls, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Fetch(ctx, c, []string{TopicProducts}, "page=1", counter(&calls, listing{}))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Regexp(t, `^products:v0:[0-9a-f]{32}$`, keys[0])
	assert.InDelta(t, time.Minute.Seconds(), mr.TTL(keys[0]).Seconds(), 1)
}

func TestFetch_DistinctKeys(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	calls := 0

	_, _ = Fetch(ctx, c, []string{TopicProducts}, Key(1, 10, ""), counter(&calls, listing{Total: 1}))
	_, _ = Fetch(ctx, c, []string{TopicProducts}, Key(2, 10, ""), counter(&calls, listing{Total: 2}))
	assert.Equal(t, 2, calls)
}

func TestInvalidate_OrphansEntries(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	calls := 0

	_, err := Fetch(ctx, c, []string{TopicProducts}, "k", counter(&calls, listing{Total: 1}))
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, TopicProducts))
	v, err := mr.Get("products:version")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	got, err := Fetch(ctx, c, []string{TopicProducts}, "k", counter(&calls, listing{Total: 5}))
	require.NoError(t, err)
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 2, calls)
}

func TestInvalidate_SecondaryTopic(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	calls := 0
	topics := []string{TopicProducts, TopicReviews}

	_, _ = Fetch(ctx, c, topics, "k", counter(&calls, listing{}))
	_, _ = Fetch(ctx, c, topics, "k", counter(&calls, listing{}))
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Invalidate(ctx, TopicReviews))
	_, _ = Fetch(ctx, c, topics, "k", counter(&calls, listing{}))
	assert.Equal(t, 2, calls)

	require.NoError(t, c.Invalidate(ctx, TopicUsers))
	_, _ = Fetch(ctx, c, topics, "k", counter(&calls, listing{}))
	assert.Equal(t, 2, calls)
}

func TestFetch_LoadErrorNotCached(t *testing.T) {
	c, mr := setupCache(t)
	boom := errors.New("db down")

	_, err := Fetch(context.Background(), c, []string{TopicReviews}, "k", func(context.Context) (listing, error) {
		return listing{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, mr.Keys())
}

func TestFetch_RedisDownFallsBackToLoad(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()
	calls := 0

	got, err := Fetch(context.Background(), c, []string{TopicProducts}, "k", counter(&calls, listing{Total: 3}))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, calls)
	assert.Error(t, c.Invalidate(context.Background(), TopicProducts))
}

func TestFetch_CorruptEntryReloads(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	calls := 0

	_, _ = Fetch(ctx, c, []string{TopicProducts}, "k", counter(&calls, listing{Total: 1}))
	for _, k := range mr.Keys() {
		mr.Set(k, "{not json")
	}

	got, err := Fetch(ctx, c, []string{TopicProducts}, "k", counter(&calls, listing{Total: 7}))
	require.NoError(t, err)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, 2, calls)
}

func TestNilCache(t *testing.T) {
	var c *Cache
	calls := 0

	got, err := Fetch(context.Background(), c, []string{TopicProducts}, "k", counter(&calls, listing{Total: 4}))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Total)
	assert.NoError(t, c.Invalidate(context.Background(), TopicProducts))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "1|10|shoe", Key(1, 10, "shoe"))
}
