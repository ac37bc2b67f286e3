package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsUpToBudget(t *testing.T) {
	limiter := New("general", NewMemoryStore(), 10, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Consume(ctx, "10.0.0.1"))
	}
	assert.ErrorIs(t, limiter.Consume(ctx, "10.0.0.1"), ErrLimitExhausted)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter := New("auth", NewMemoryStore(), 5, 5*time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Consume(ctx, "10.0.0.1"))
	}
	assert.ErrorIs(t, limiter.Consume(ctx, "10.0.0.1"), ErrLimitExhausted)

	assert.NoError(t, limiter.Consume(ctx, "10.0.0.2"))
	assert.NoError(t, limiter.Consume(ctx, "anonymous"))
}

func TestLimitersSharingStoreDoNotCollide(t *testing.T) {
	store := NewMemoryStore()
	general := New("general", store, 1, time.Minute)
	auth := New("auth", store, 1, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, general.Consume(ctx, "10.0.0.1"))
	assert.ErrorIs(t, general.Consume(ctx, "10.0.0.1"), ErrLimitExhausted)

	assert.NoError(t, auth.Consume(ctx, "10.0.0.1"))
}

func TestMemoryStoreWindowReset(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	limiter := New("general", store, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Consume(ctx, "key"))
	require.NoError(t, limiter.Consume(ctx, "key"))
	require.ErrorIs(t, limiter.Consume(ctx, "key"), ErrLimitExhausted)

	now = now.Add(time.Minute + time.Second)
	assert.NoError(t, limiter.Consume(ctx, "key"))
}

func TestMemoryStorePrune(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	_, err := store.Incr(context.Background(), "a", time.Minute)
	require.NoError(t, err)
	_, err = store.Incr(context.Background(), "b", time.Hour)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	store.Prune()

	assert.Len(t, store.counters, 1)
	assert.Contains(t, store.counters, "b")
}

func TestMemoryStoreConcurrentIncr(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Incr(ctx, "shared", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.Incr(ctx, "shared", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(51), count)
}
