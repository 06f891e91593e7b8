// Package fetch downloads file contents from source hosts with retry,
// DNS caching, and per-host circuit breaking.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/dnscache"

	"github.com/logstash-tools/plugindex/client"
)

var (
	// ErrNotFound reports a file absent at the requested ref.
	ErrNotFound = client.ErrNotFound

	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream host unavailable")
)

// Content is the result of fetching one file.
type Content struct {
	Body        []byte
	ContentType string
	ETag        string
}

// ContentFetcher is the interface satisfied by Fetcher and its wrappers.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (*Content, error)
	Head(ctx context.Context, url string) (size int64, contentType string, err error)
}

// Fetcher downloads file contents from source hosts.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries uint64
	baseDelay  time.Duration
	maxBody    int64
	authFn     func(url string) (headerName, headerValue string)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets how many times a failed fetch is retried.
func WithMaxRetries(n uint64) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the initial delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// WithAuthFunc sets a function that returns an auth header for a given URL.
// Return empty strings to skip authentication for that URL.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(f *Fetcher) {
		f.authFn = fn
	}
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	// DNS answers are cached and refreshed out of band to keep bulk
	// traversals from hammering the resolver.
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: time.Minute,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP")
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:  "plugindex",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		maxBody:    4 << 20,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the file at url. Absence is reported as ErrNotFound
// and never retried; rate limits and server errors are retried with
// exponential backoff until the attempt budget runs out.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Content, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.baseDelay
	bo.MaxElapsedTime = 0

	var content *Content
	op := func() error {
		c, err := f.doFetch(ctx, url)
		if err != nil {
			if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamDown) {
				return err
			}
			return backoff.Permanent(err)
		}
		content = c
		return nil
	}

	retryable := backoff.WithContext(backoff.WithMaxRetries(bo, f.maxRetries), ctx)
	if err := backoff.Retry(op, retryable); err != nil {
		return nil, err
	}
	return content, nil
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	if f.authFn != nil {
		if name, value := f.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", url, err)
		}
		return &Content{
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
			ETag:        resp.Header.Get("ETag"),
		}, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited

	case resp.StatusCode >= 500:
		return nil, ErrUpstreamDown

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// Head checks whether a file exists without downloading it.
func (f *Fetcher) Head(ctx context.Context, url string) (size int64, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	if f.authFn != nil {
		if name, value := f.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("head request: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	size = resp.ContentLength
	return size, resp.Header.Get("Content-Type"), nil
}
