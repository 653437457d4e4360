package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is an httptest-backed stand-in for the verification API.
type fakeProvider struct {
	t          *testing.T
	server     *httptest.Server
	tokenCalls atomic.Int32

	mu          sync.Mutex
	token       string
	expiresIn   int64
	tokenStatus int
	tokenBody   map[string]interface{}
	tokenGate   chan struct{}
	handler     http.HandlerFunc
	lastPath    string
	lastAuth    string
	lastBody    map[string]interface{}
}

func newFakeProvider(t *testing.T) *fakeProvider {
	fp := &fakeProvider{t: t, token: "token-1", expiresIn: 3600, tokenStatus: http.StatusOK}
	fp.server = httptest.NewServer(http.HandlerFunc(fp.serve))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakeProvider) set(fn func(fp *fakeProvider)) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fn(fp)
}

func (fp *fakeProvider) handle(h http.HandlerFunc) {
	fp.set(func(fp *fakeProvider) { fp.handler = h })
}

func (fp *fakeProvider) last() (path, auth string, body map[string]interface{}) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.lastPath, fp.lastAuth, fp.lastBody
}

func (fp *fakeProvider) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == TokenPath {
		fp.tokenCalls.Add(1)
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		assert.Equal(fp.t, "client-id", creds["clientId"])
		assert.Equal(fp.t, "client-secret", creds["secret"])

		fp.mu.Lock()
		gate, status, body := fp.tokenGate, fp.tokenStatus, fp.tokenBody
		token, expiresIn := fp.token, fp.expiresIn
		fp.mu.Unlock()

		if gate != nil {
			<-gate
		}
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"accessToken": token,
			"expiresIn":   expiresIn,
			"tokenType":   "Bearer",
		})
		return
	}

	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	fp.mu.Lock()
	fp.lastPath = r.URL.Path
	fp.lastAuth = r.Header.Get("Authorization")
	fp.lastBody = body
	handler := fp.handler
	fp.mu.Unlock()

	if handler != nil {
		handler(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  map[string]interface{}{"state": "complete", "status": "verified"},
		"summary": map[string]interface{}{"nin_check": map[string]interface{}{"status": "EXACT_MATCH"}},
	})
}

func (fp *fakeProvider) client(cache *TokenCache) *Client {
	return NewClient(Config{
		ClientID: "client-id",
		Secret:   "client-secret",
		BaseURL:  fp.server.URL,
		Timeout:  2 * time.Second,
	}, cache, nil)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGetAccessToken_FirstCallFetchesOnce(t *testing.T) {
	fp := newFakeProvider(t)
	c := fp.client(nil)

	token, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, int32(1), fp.tokenCalls.Load())
}

func TestGetAccessToken_ReusesTokenWithinWindow(t *testing.T) {
	fp := newFakeProvider(t)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	c := fp.client(NewTokenCacheWithClock(clock.Now))

	first, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)

	fp.set(func(fp *fakeProvider) { fp.token = "token-2" })
	clock.Advance(50 * time.Minute) // 10 minutes left, outside the margin

	second, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fp.tokenCalls.Load())
}

func TestGetAccessToken_RefreshesInsideSafetyMargin(t *testing.T) {
	fp := newFakeProvider(t)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	cache := NewTokenCacheWithClock(clock.Now)
	c := fp.client(cache)

	_, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)

	fp.set(func(fp *fakeProvider) { fp.token = "token-2" })
	clock.Advance(56 * time.Minute) // 4 minutes left

	token, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
	assert.Equal(t, int32(2), fp.tokenCalls.Load())

	cached, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "token-2", cached)
}

func TestGetAccessToken_DefaultLifetime(t *testing.T) {
	fp := newFakeProvider(t)
	fp.set(func(fp *fakeProvider) { fp.expiresIn = 0 })
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	cache := NewTokenCacheWithClock(clock.Now)
	c := fp.client(cache)

	_, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(DefaultTokenTTL), cache.ExpiresAt())
}

func TestGetAccessToken_MissingTokenIsAuthenticationError(t *testing.T) {
	fp := newFakeProvider(t)
	fp.set(func(fp *fakeProvider) {
		fp.tokenStatus = http.StatusUnauthorized
		fp.tokenBody = map[string]interface{}{"message": "invalid client credentials"}
	})
	cache := NewTokenCache()
	c := fp.client(cache)

	_, err := c.GetAccessToken(context.Background())
	require.Error(t, err)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "invalid client credentials", authErr.Message)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)

	_, ok := cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.ExpiresAt().IsZero())
}

func TestGetAccessToken_MissingTokenDefaultMessage(t *testing.T) {
	fp := newFakeProvider(t)
	fp.set(func(fp *fakeProvider) { fp.tokenBody = map[string]interface{}{} })
	c := fp.client(nil)

	_, err := c.GetAccessToken(context.Background())

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, defaultAuthMessage, authErr.Message)
}

func TestGetAccessToken_FailureDoesNotPoisonNextAttempt(t *testing.T) {
	fp := newFakeProvider(t)
	fp.set(func(fp *fakeProvider) { fp.tokenBody = map[string]interface{}{"message": "temporarily unavailable"} })
	c := fp.client(nil)

	_, err := c.GetAccessToken(context.Background())
	require.Error(t, err)

	fp.set(func(fp *fakeProvider) { fp.tokenBody = nil })
	token, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, int32(2), fp.tokenCalls.Load())
}

func TestGetAccessToken_ConcurrentMissSharesOneFetch(t *testing.T) {
	fp := newFakeProvider(t)
	release := make(chan struct{})
	fp.set(func(fp *fakeProvider) { fp.tokenGate = release })
	c := fp.client(nil)

	const callers = 8
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := c.GetAccessToken(context.Background())
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fp.tokenCalls.Load())
	for _, tok := range tokens {
		assert.Equal(t, "token-1", tok)
	}
}

func TestVerifyIdentityNumber_SendsBodyAndBearer(t *testing.T) {
	fp := newFakeProvider(t)
	c := fp.client(nil)

	res, err := c.VerifyIdentityNumber(context.Background(), "12345678901", ApplicantInfo{FirstName: "Ada", LastName: "Obi"})
	require.NoError(t, err)

	path, auth, body := fp.last()
	assert.Equal(t, NINPath, path)
	assert.Equal(t, "Bearer token-1", auth)
	assert.Equal(t, map[string]interface{}{
		"firstname": "Ada",
		"lastname":  "Obi",
		"idNumber":  "12345678901",
	}, body)

	assert.True(t, res.Success())
	assert.Equal(t, "verified", res.VerificationStatus())
	assert.Equal(t, "EXACT_MATCH", res.CheckStatus("nin_check"))
}

func TestVerifyCompanyRegistration_SendsBody(t *testing.T) {
	fp := newFakeProvider(t)
	c := fp.client(nil)

	_, err := c.VerifyCompanyRegistration(context.Background(), "RC123456", "Volt Cells Ltd")
	require.NoError(t, err)

	path, _, body := fp.last()
	assert.Equal(t, CACPath, path)
	assert.Equal(t, map[string]interface{}{
		"registrationNumber": "RC123456",
		"companyName":        "Volt Cells Ltd",
	}, body)
}

func TestRequest_ForwardsProviderNonMatchVerbatim(t *testing.T) {
	fp := newFakeProvider(t)
	fp.handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":{"state":"complete","status":"id_mismatch"},"message":"record not found"}`))
	})
	c := fp.client(nil)

	res, err := c.Request(context.Background(), NINPath, "", map[string]string{"idNumber": "1"})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "id_mismatch", res.VerificationStatus())
	assert.Equal(t, "record not found", res["message"])
}

func TestRequest_NetworkFailureResolvesToFailureResult(t *testing.T) {
	fp := newFakeProvider(t)
	fp.handle(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, _, err := hj.Hijack()
		if assert.NoError(t, err) {
			_ = conn.Close()
		}
	})
	c := fp.client(nil)

	res, err := c.VerifyIdentityNumber(context.Background(), "12345678901", ApplicantInfo{FirstName: "Ada", LastName: "Obi"})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, false, res["success"])
	assert.NotEmpty(t, res.ErrorMessage())
}

func TestRequest_UnparseableBodyResolvesToFailureResult(t *testing.T) {
	fp := newFakeProvider(t)
	fp.handle(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	c := fp.client(nil)

	res, err := c.Request(context.Background(), CACPath, http.MethodPost, nil)
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Contains(t, res.ErrorMessage(), "failed to parse response")
}

func TestRequest_AuthenticationErrorPropagates(t *testing.T) {
	fp := newFakeProvider(t)
	fp.set(func(fp *fakeProvider) { fp.tokenBody = map[string]interface{}{"message": "bad secret"} })
	c := fp.client(nil)

	res, err := c.VerifyIdentityNumber(context.Background(), "1", ApplicantInfo{})
	assert.Nil(t, res)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "bad secret", authErr.Message)
}

func TestRequest_RevokedTokenIsRefreshedOnce(t *testing.T) {
	fp := newFakeProvider(t)
	var calls atomic.Int32
	fp.handle(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token revoked"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":{"status":"verified"}}`))
	})
	cache := NewTokenCache()
	cache.Set("stale-token", time.Now().Add(time.Hour))
	c := fp.client(cache)

	res, err := c.VerifyIdentityNumber(context.Background(), "1", ApplicantInfo{})
	require.NoError(t, err)
	assert.Equal(t, "verified", res.VerificationStatus())
	assert.Equal(t, int32(1), fp.tokenCalls.Load())
	assert.Equal(t, int32(2), calls.Load())

	_, auth, _ := fp.last()
	assert.Equal(t, "Bearer token-1", auth)
}

func TestRequest_SeededCacheSkipsTokenEndpoint(t *testing.T) {
	fp := newFakeProvider(t)
	cache := NewTokenCache()
	cache.Set("seeded", time.Now().Add(time.Hour))
	c := fp.client(cache)

	_, err := c.VerifyIdentityNumber(context.Background(), "1", ApplicantInfo{})
	require.NoError(t, err)
	assert.Equal(t, int32(0), fp.tokenCalls.Load())

	_, auth, _ := fp.last()
	assert.Equal(t, "Bearer seeded", auth)
}

func TestRequest_ProviderOutageResolvesToFailureResult(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusInternalServerError, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			fp := newFakeProvider(t)
			fp.handle(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"statusCode": status, "message": "Service Unavailable"})
			})
			c := fp.client(nil)

			res, err := c.VerifyIdentityNumber(context.Background(), "12345678901", ApplicantInfo{FirstName: "Ada", LastName: "Obi"})
			require.NoError(t, err)
			assert.False(t, res.Success())
			assert.Contains(t, res.ErrorMessage(), "provider unavailable")
			assert.Contains(t, res.ErrorMessage(), "Service Unavailable")
		})
	}
}

func TestRequest_NullBodyResolvesToFailureResult(t *testing.T) {
	fp := newFakeProvider(t)
	fp.handle(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})
	c := fp.client(nil)

	res, err := c.VerifyCompanyRegistration(context.Background(), "RC123456", "Volt Cells Ltd")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success())
	assert.Contains(t, res.ErrorMessage(), "empty JSON body")
}
