package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCache_ValidityBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	cache := NewTokenCacheWithClock(clock.Now)

	_, ok := cache.Get()
	assert.False(t, ok, "empty cache")

	cache.Set("abc", clock.Now().Add(10*time.Minute))
	tok, ok := cache.Get()
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	clock.Advance(5 * time.Minute) // exactly at the margin
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestTokenCache_InvalidateOnlyMatchingToken(t *testing.T) {
	cache := NewTokenCache()
	cache.Set("new", time.Now().Add(time.Hour))

	cache.Invalidate("old")
	tok, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "new", tok)

	cache.Invalidate("new")
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestTokenCache_GetOrFetchKeepsCacheOnError(t *testing.T) {
	cache := NewTokenCache()
	boom := errors.New("boom")

	_, err := cache.GetOrFetch(context.Background(), func(ctx context.Context) (string, time.Duration, error) {
		return "", 0, boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok := cache.Get()
	assert.False(t, ok)

	tok, err := cache.GetOrFetch(context.Background(), func(ctx context.Context) (string, time.Duration, error) {
		return "fresh", time.Hour, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
}

func TestTokenCache_Clear(t *testing.T) {
	cache := NewTokenCache()
	cache.Set("abc", time.Now().Add(time.Hour))
	cache.Clear()

	_, ok := cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.ExpiresAt().IsZero())
}

func TestTokenCache_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	cache := NewTokenCache()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, time.Duration, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		return "shared", time.Hour, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.GetOrFetch(ctx, fetch)
		firstErr <- err
	}()
	<-started

	secondTok := make(chan string, 1)
	go func() {
		tok, err := cache.GetOrFetch(context.Background(), fetch)
		assert.NoError(t, err)
		secondTok <- tok
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.Equal(t, "shared", <-secondTok)
	assert.Equal(t, int32(1), calls.Load())

	tok, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "shared", tok)
}
