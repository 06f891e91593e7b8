// Package client provides a retrying HTTP client and URL helpers for
// registry APIs.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenk/backoff"
)

const (
	defaultUserAgent   = "plugindex"
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 5
	defaultRetryDelay  = time.Second
)

// Client is an HTTP client for registry APIs. Transport failures and
// rate-limit responses are retried within a fixed attempt budget with a
// constant delay between attempts; any other non-2xx response is returned
// to the caller without retry.
type Client struct {
	http        *http.Client
	userAgent   string
	maxAttempts int
	retryDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithMaxAttempts sets the total attempt budget, first try included.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the delay between retry attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: defaultTimeout},
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 attempts total, constant delay between retries
// - Retry on 429 and transport failures only
func DefaultClient() *Client {
	return NewClient()
}

// WithUserAgent returns a copy of c that sends the given User-Agent.
func (c *Client) WithUserAgent(ua string) *Client {
	cp := *c
	cp.userAgent = ua
	return &cp
}

// GetBody issues a GET and returns the response body. A 404 is reported as
// an *HTTPError whose IsNotFound is true; callers decide whether absence is
// an error. Exhausting the attempt budget on 429 surfaces the final
// *RateLimitError.
func (c *Client) GetBody(ctx context.Context, rawURL string) ([]byte, error) {
	bo := backoff.NewConstantBackOff(c.retryDelay)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		delay := bo.NextBackOff()
		var rateErr *RateLimitError
		var netErr *url.Error
		switch {
		case errors.As(err, &rateErr):
			if rateErr.RetryAfter > 0 {
				delay = time.Duration(rateErr.RetryAfter) * time.Second
			}
		case errors.As(err, &netErr):
			// transport failure, treated as transient
		default:
			return nil, err
		}

		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// GetJSON issues a GET and decodes the JSON response body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.GetBody(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}

// Head issues a HEAD request and returns the response status code.
func (c *Client) Head(ctx context.Context, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rawURL, err)
		}
		return body, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 0
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if n, err := strconv.Atoi(ra); err == nil {
				retryAfter = n
			}
		}
		return nil, &RateLimitError{RetryAfter: retryAfter}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Body:       string(body),
		}
	}
}
