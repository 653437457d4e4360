package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL  = "https://api.qoreid.com"
	DefaultTimeout  = 30 * time.Second
	DefaultTokenTTL = 3600 * time.Second

	TokenPath = "/token"
	NINPath   = "/v1/ng/identities/nin"
	CACPath   = "/v2/ng/identities/cac-basic"
)

// Config is constant for the life of a Client.
type Config struct {
	ClientID string
	Secret   string
	BaseURL  string
	Timeout  time.Duration
}

// ApplicantInfo carries the name fields matched against the national ID registry.
type ApplicantInfo struct {
	FirstName string
	LastName  string
}

// Client talks to the identity verification provider, reusing one bearer token until near expiry.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      *TokenCache
	logger     *zap.Logger
}

// NewClient builds a client. A nil cache gets a fresh one; a nil logger is a no-op logger.
func NewClient(cfg Config, cache *TokenCache, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cache == nil {
		cache = NewTokenCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		logger:     logger,
	}
}

// Cache exposes the token cache (seeded and expired by tests and admin tooling).
func (c *Client) Cache() *TokenCache {
	return c.cache
}

type tokenRequest struct {
	ClientID string `json:"clientId"`
	Secret   string `json:"secret"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
	TokenType   string `json:"tokenType"`
	Message     string `json:"message"`
	Error       string `json:"error"`
}

// GetAccessToken returns the cached token or fetches a new one from the token endpoint.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	return c.cache.GetOrFetch(ctx, c.fetchToken)
}

func (c *Client) fetchToken(ctx context.Context) (string, time.Duration, error) {
	c.logger.Debug("requesting provider access token")

	payload, err := json.Marshal(tokenRequest{ClientID: c.cfg.ClientID, Secret: c.cfg.Secret})
	if err != nil {
		return "", 0, &AuthenticationError{Message: "failed to marshal token request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+TokenPath, bytes.NewReader(payload))
	if err != nil {
		return "", 0, &AuthenticationError{Message: "failed to create token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("token endpoint unreachable", zap.Error(err))
		return "", 0, &AuthenticationError{Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &AuthenticationError{Message: "failed to read token response", StatusCode: resp.StatusCode, Err: err}
	}

	var tr tokenResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &tr); err != nil {
			return "", 0, &AuthenticationError{Message: "failed to parse token response", StatusCode: resp.StatusCode, Err: err}
		}
	}

	if tr.AccessToken == "" {
		msg := tr.Message
		if msg == "" {
			msg = tr.Error
		}
		if msg == "" {
			msg = defaultAuthMessage
		}
		c.logger.Warn("token endpoint returned no access token",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		status := 0
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			status = resp.StatusCode
		}
		return "", 0, &AuthenticationError{Message: msg, StatusCode: status}
	}

	ttl := DefaultTokenTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}

	c.logger.Info("provider access token refreshed", zap.Duration("ttl", ttl))
	return tr.AccessToken, ttl, nil
}

// Request performs an authenticated call and returns the provider's JSON verbatim.
// Only token acquisition failures are returned as errors; transport and decode
// failures come back as a FailureResult so callers can branch on Result.Success.
func (c *Client) Request(ctx context.Context, endpoint, method string, body interface{}) (Result, error) {
	if method == "" {
		method = http.MethodPost
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return FailureResult(&VerificationRequestError{Endpoint: endpoint, Err: err}), nil
		}
		payload = b
	}

	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	result, status, err := c.do(ctx, endpoint, method, payload, token)
	if err == nil && status == http.StatusUnauthorized {
		// Token was revoked upstream before its expiry; fetch a new one and retry once.
		c.logger.Info("provider rejected cached token, refreshing", zap.String("endpoint", endpoint))
		c.cache.Invalidate(token)
		token, err = c.GetAccessToken(ctx)
		if err != nil {
			return nil, err
		}
		result, _, err = c.do(ctx, endpoint, method, payload, token)
		if err == nil && result == nil {
			err = fmt.Errorf("provider rejected access token")
		}
	}
	if err != nil {
		vErr := &VerificationRequestError{Endpoint: endpoint, Err: err}
		c.logger.Warn("verification request failed", zap.Error(vErr))
		return FailureResult(vErr), nil
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, endpoint, method string, payload []byte, token string) (Result, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		// outage or throttling: whatever the body says, it is not a verdict
		var body Result
		_ = json.Unmarshal(raw, &body)
		msg, _ := body["message"].(string)
		return nil, resp.StatusCode, fmt.Errorf("provider unavailable (status %d): %s", resp.StatusCode, msg)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, resp.StatusCode, nil
		}
		return nil, resp.StatusCode, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if result == nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, resp.StatusCode, nil
		}
		return nil, resp.StatusCode, fmt.Errorf("failed to parse response (status %d): empty JSON body", resp.StatusCode)
	}
	return result, resp.StatusCode, nil
}

// VerifyIdentityNumber checks a NIN against the applicant's names.
func (c *Client) VerifyIdentityNumber(ctx context.Context, idNumber string, applicant ApplicantInfo) (Result, error) {
	return c.Request(ctx, NINPath, http.MethodPost, map[string]string{
		"firstname": applicant.FirstName,
		"lastname":  applicant.LastName,
		"idNumber":  idNumber,
	})
}

// VerifyCompanyRegistration checks a CAC registration number against the company name.
func (c *Client) VerifyCompanyRegistration(ctx context.Context, registrationNumber, companyName string) (Result, error) {
	return c.Request(ctx, CACPath, http.MethodPost, map[string]string{
		"registrationNumber": registrationNumber,
		"companyName":        companyName,
	})
}
