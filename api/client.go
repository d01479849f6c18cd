package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"driveshare/config"
	"driveshare/models"
	"driveshare/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token for the active session. Token may
// block (the provider refreshes lazily); an empty token with a nil error
// means "no session" and the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client handles all communication with the marketplace backend. One
// attempt per request, no retry: failures are normalized and returned.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource

	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithRateLimit caps outbound requests per minute. Zero disables the limiter.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// New creates a client for the given base URL. tokens may be nil for a
// purely anonymous client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Tokens:     tokens,
		logger:     utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the loaded application config.
func NewFromConfig(tokens TokenSource) *Client {
	cfg := config.AppConfig
	return New(cfg.APIBaseURL, tokens,
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSecs) * time.Second}),
		WithRateLimit(cfg.MaxRequestsPerMin),
	)
}

// Request performs a single API call and decodes the response body into out
// (skipped when out is nil). Error normalization:
//   - backend answered with an error status: RequestError carrying the
//     server's message, or a generic fallback when it sent none
//   - request went out, no response came back: NetworkError
//   - anything before dispatch (marshalling, token retrieval): the
//     underlying error, unchanged
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	// Attach a fresh bearer token when a session exists.
	if c.Tokens != nil {
		token, err := c.Tokens.Token(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn("Network error", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &utils.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("Network error reading response", zap.String("path", path), zap.Error(err))
		return &utils.NetworkError{Cause: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope models.ErrorEnvelope
		// A non-JSON error body falls through to the generic message.
		_ = json.Unmarshal(data, &envelope)
		c.logger.Warn("API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", envelope.Message),
		)
		return utils.NewRequestError(resp.StatusCode, envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return utils.NewRequestError(resp.StatusCode, "")
		}
	}

	c.logger.Debug("API call", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Request(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Request(ctx, http.MethodDelete, path, nil, out)
}
