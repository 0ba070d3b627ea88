// File: httpclient/client.go
// Package httpclient wraps net/http with retry, throttling, and JSON helpers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/momentics/hioload-core/api"
)

const requestIDHeader = "X-Request-ID"

// Client is a thin wrapper around http.Client adding exponential-backoff
// retry for transient failures, client-side throttling, and a request ID
// header on every call. Zero configuration yields a usable client.
type Client struct {
	hc          *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	maxInterval time.Duration
	header      http.Header
	log         *slog.Logger
}

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithMaxAttempts bounds the number of tries per request (including the first).
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) { c.maxAttempts = n }
}

// WithMaxInterval caps the backoff delay between attempts.
func WithMaxInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.maxInterval = d }
}

// WithHeader adds a header applied to every outgoing request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.header.Set(key, value) }
}

// WithClientLogger overrides the default slog logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// New constructs a client with 3 attempts, a 10s request timeout, and no
// throttle unless configured.
func New(opts ...ClientOption) *Client {
	c := &Client{
		hc:          &http.Client{Timeout: 10 * time.Second},
		maxAttempts: 3,
		maxInterval: 2 * time.Second,
		header:      make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Do sends the request, retrying transport errors and 429/5xx responses
// with exponential backoff. The returned response body is the caller's to
// close. Requests with a body must carry GetBody to be retryable.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("httpclient: throttle: %w", err)
		}
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = c.maxInterval

	var lastErr error
	for attempt := 1; ; attempt++ {
		r, err := c.prepare(ctx, req)
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(r)
		switch {
		case err != nil:
			lastErr = err
		case !retryable(resp.StatusCode):
			return resp, nil
		default:
			lastErr = api.NewError(api.ErrCodeInternal, "retryable response").
				WithContext("status", resp.StatusCode)
			// Drain so the connection can be reused across attempts.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		if attempt >= c.maxAttempts {
			return nil, fmt.Errorf("httpclient: %d attempts exhausted: %w", attempt, lastErr)
		}
		sleep := bo.NextBackOff()
		if sleep == backoff.Stop {
			return nil, fmt.Errorf("httpclient: backoff stopped: %w", lastErr)
		}
		c.log.Debug("httpclient: retrying", "attempt", attempt, "sleep", sleep, "err", lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// prepare clones the request for one attempt, rewinding the body and
// stamping default headers plus a fresh request ID.
func (c *Client) prepare(ctx context.Context, req *http.Request) (*http.Request, error) {
	r := req.Clone(ctx)
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("httpclient: rewind body: %w", err)
		}
		r.Body = body
	}
	for key, vals := range c.header {
		if r.Header.Get(key) == "" && len(vals) > 0 {
			r.Header.Set(key, vals[0])
		}
	}
	if r.Header.Get(requestIDHeader) == "" {
		r.Header.Set(requestIDHeader, uuid.NewString())
	}
	return r, nil
}

// GetJSON fetches url and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, out)
}

// PostJSON encodes in, posts it to url, and decodes a 2xx JSON body into
// out when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("httpclient: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(ctx, req, out)
}

func (c *Client) doJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return api.NewError(api.ErrCodeInternal, "unexpected status").
			WithContext("status", resp.StatusCode).
			WithContext("url", req.URL.String())
	}
	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("httpclient: decode body: %w", err)
	}
	return nil
}

// Shutdown implements api.GracefulShutdown by releasing idle connections.
func (c *Client) Shutdown() error {
	c.hc.CloseIdleConnections()
	return nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

var _ api.GracefulShutdown = (*Client)(nil)
