package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/storein/mobile-core/internal/domain/shared"
)

const (
	// defaultMaxResponseSize limits the response body size to prevent memory exhaustion
	defaultMaxResponseSize = 10 * 1024 * 1024 // 10MB
	// expiryLeeway refreshes tokens slightly before their actual expiry
	expiryLeeway = 30 * time.Second
)

// TokenSource supplies the bearer token attached to every request and can
// obtain a fresh one when the backend rejects the current token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StaticTokenSource is a TokenSource holding a fixed token. Refresh returns
// the same token, so a rejected static token fails after the single retry.
type StaticTokenSource string

// Token returns the fixed token
func (s StaticTokenSource) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// Refresh returns the fixed token unchanged
func (s StaticTokenSource) Refresh(_ context.Context) (string, error) {
	return string(s), nil
}

// Transport is the HTTP collaborator all backend calls go through. It attaches
// the bearer token, refreshes it proactively when the JWT expiry is near, and
// retries exactly once with a refreshed token on a 401 response. Every call
// takes a context and suspends only at the network boundary.
type Transport struct {
	baseURL         string
	httpClient      *http.Client
	tokens          TokenSource
	logger          *zap.Logger
	maxResponseSize int64
}

// TransportOption is a functional option for configuring Transport
type TransportOption func(*Transport)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *Transport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the underlying client
func WithTimeout(timeout time.Duration) TransportOption {
	return func(t *Transport) {
		if timeout > 0 {
			t.httpClient.Timeout = timeout
		}
	}
}

// WithMaxResponseSize bounds the accepted response body size
func WithMaxResponseSize(size int64) TransportOption {
	return func(t *Transport) {
		if size > 0 {
			t.maxResponseSize = size
		}
	}
}

// WithLogger sets the transport logger
func WithLogger(logger *zap.Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTransport creates a transport for the given backend base URL.
func NewTransport(baseURL string, tokens TokenSource, opts ...TransportOption) *Transport {
	t := &Transport{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		tokens:          tokens,
		logger:          zap.NewNop(),
		maxResponseSize: defaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get issues a GET request and decodes the JSON response into out.
func (t *Transport) Get(ctx context.Context, path string, query url.Values, out any) error {
	return t.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (t *Transport) Post(ctx context.Context, path string, body, out any) error {
	return t.do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch issues a PATCH request with a JSON body and decodes the response into out.
func (t *Transport) Patch(ctx context.Context, path string, body, out any) error {
	return t.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (t *Transport) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	token, err := t.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUnauthorized, err)
	}
	if tokenNeedsRefresh(token) {
		if refreshed, rerr := t.tokens.Refresh(ctx); rerr == nil {
			token = refreshed
		}
	}

	resp, err := t.send(ctx, method, path, query, bodyBytes, token)
	if err != nil {
		return err
	}

	// Single retry with a refreshed token when the backend rejects the
	// current one. A second 401 is surfaced to the caller.
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		refreshed, rerr := t.tokens.Refresh(ctx)
		if rerr != nil {
			return fmt.Errorf("%w: token refresh failed: %v", shared.ErrUnauthorized, rerr)
		}
		t.logger.Debug("retrying request with refreshed token",
			zap.String("method", method), zap.String("path", path))
		resp, err = t.send(ctx, method, path, query, bodyBytes, refreshed)
		if err != nil {
			return err
		}
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: HTTP %d", shared.ErrRequestFailed, resp.StatusCode)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (t *Transport) send(ctx context.Context, method, path string, query url.Values, body []byte, token string) (*http.Response, error) {
	requestURL := t.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBackendUnavailable, err)
	}
	return resp, nil
}

// tokenNeedsRefresh inspects the JWT expiry claim without verifying the
// signature. Opaque tokens and tokens without an expiry are assumed valid;
// the 401 retry path covers them.
func tokenNeedsRefresh(raw string) bool {
	if raw == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().Add(expiryLeeway).After(claims.ExpiresAt.Time)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
