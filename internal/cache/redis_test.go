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

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAside_CachesFetchResult(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"a", "b"}
			return nil
		}
	}

	var first []string
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, 1, calls)

	var second []string
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, []string{"a", "b"}, second)
	assert.Equal(t, 1, calls, "second read served from cache")
}

func TestAside_CorruptEntryFallsBackToFetch(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("k", "{not json"))

	var got []string
	err := Aside(ctx, "k", &got, time.Minute, func() error {
		got = []string{"fresh"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got)
}

func TestAside_NoClientDegradesToFetch(t *testing.T) {
	SetClient(nil)

	var got []string
	err := Aside(context.Background(), "k", &got, time.Minute, func() error {
		got = []string{"direct"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"direct"}, got)
}

func TestInvalidate_RemovesKey(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	var v []string
	require.NoError(t, Aside(ctx, "k", &v, time.Minute, func() error {
		v = []string{"x"}
		return nil
	}))
	assert.True(t, mr.Exists("k"))

	Invalidate(ctx, "k")
	assert.False(t, mr.Exists("k"))
}
