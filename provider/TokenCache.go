package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenSafetyMargin is how long before its recorded expiry a token stops being handed out.
const TokenSafetyMargin = 5 * time.Minute

// FetchFunc obtains a fresh bearer token and its lifetime from the provider.
type FetchFunc func(ctx context.Context) (token string, ttl time.Duration, err error)

// TokenCache holds at most one bearer token and its expiry.
// Concurrent callers that miss the cache share a single in-flight fetch.
type TokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	margin time.Duration
	now    func() time.Time
	group  singleflight.Group
}

func NewTokenCache() *TokenCache {
	return &TokenCache{
		margin: TokenSafetyMargin,
		now:    time.Now,
	}
}

// NewTokenCacheWithClock lets tests drive expiry deterministically.
func NewTokenCacheWithClock(now func() time.Time) *TokenCache {
	c := NewTokenCache()
	c.now = now
	return c
}

// Get returns the cached token if it is still outside the safety margin.
func (c *TokenCache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" {
		return "", false
	}
	if !c.now().Add(c.margin).Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

// Set replaces the cached token.
func (c *TokenCache) Set(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiresAt = expiresAt
}

// ExpiresAt reports the recorded expiry of the cached token (zero when empty).
func (c *TokenCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// Clear drops the cached token.
func (c *TokenCache) Clear() {
	c.Set("", time.Time{})
}

// Invalidate clears the cache only if it still holds the given token,
// so a token rejected by the provider does not wipe a newer one.
func (c *TokenCache) Invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == token {
		c.token = ""
		c.expiresAt = time.Time{}
	}
}

// GetOrFetch returns the cached token or runs fetch once for all concurrent callers.
// The shared fetch is detached from any single caller's cancellation; each caller
// stops waiting when its own ctx is done. A failed fetch leaves the cache untouched.
func (c *TokenCache) GetOrFetch(ctx context.Context, fetch FetchFunc) (string, error) {
	if token, ok := c.Get(); ok {
		return token, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("token", func() (interface{}, error) {
		// Another caller may have refreshed while we waited for the group.
		if token, ok := c.Get(); ok {
			return token, nil
		}

		token, ttl, err := fetch(fetchCtx)
		if err != nil {
			return "", err
		}
		c.Set(token, c.now().Add(ttl))
		return token, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
