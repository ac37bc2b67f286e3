package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreBudget(t *testing.T) {
	store, _ := newTestRedisStore(t)
	limiter := New("auth", store, 5, 5*time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Consume(ctx, "10.0.0.1"))
	}
	assert.ErrorIs(t, limiter.Consume(ctx, "10.0.0.1"), ErrLimitExhausted)
	assert.NoError(t, limiter.Consume(ctx, "10.0.0.2"))
}

func TestRedisStoreWindowExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	limiter := New("general", store, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "key"))
	require.ErrorIs(t, limiter.Consume(ctx, "key"), ErrLimitExhausted)

	mr.FastForward(time.Minute + time.Second)
	assert.NoError(t, limiter.Consume(ctx, "key"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.Incr(context.Background(), "key", time.Minute)
	assert.Error(t, err)
}
