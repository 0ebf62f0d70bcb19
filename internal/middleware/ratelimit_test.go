package middleware

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

func TestCheckRateLimit_EnforcesLimit(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "create_post", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within limit", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "create_post", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client is unaffected
	allowed, err = CheckRateLimit(ctx, rdb, "create_post", "ip:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_DisabledOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	for i := 0; i < 10; i++ {
		allowed, err := CheckRateLimit(context.Background(), nil, "create_post", "ip:1.2.3.4", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestCheckRateLimit_NilRedisErrors(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := CheckRateLimit(context.Background(), nil, "create_post", "ip:1.2.3.4", 1, time.Minute)
	assert.Error(t, err)
}
