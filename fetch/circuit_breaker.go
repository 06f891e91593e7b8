package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// CircuitBreakerFetcher wraps a Fetcher with per-host circuit breakers,
// so a source host that starts failing stops receiving traffic for a
// while instead of burning the retry budget on every call.
type CircuitBreakerFetcher struct {
	fetcher  ContentFetcher
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewCircuitBreakerFetcher creates a circuit breaker wrapper for a fetcher.
func NewCircuitBreakerFetcher(f ContentFetcher) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		fetcher:  f,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates the circuit breaker for the given host.
func (cbf *CircuitBreakerFetcher) getBreaker(host string) *circuit.Breaker {
	cbf.mu.RLock()
	breaker, exists := cbf.breakers[host]
	cbf.mu.RUnlock()

	if exists {
		return breaker
	}

	cbf.mu.Lock()
	defer cbf.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := cbf.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures, reopens on exponential backoff.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	cbf.breakers[host] = breaker
	return breaker
}

// Fetch wraps the underlying fetcher's Fetch with circuit breaker logic.
func (cbf *CircuitBreakerFetcher) Fetch(ctx context.Context, fetchURL string) (*Content, error) {
	host := extractHost(fetchURL)
	breaker := cbf.getBreaker(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for host %s: %w", host, ErrUpstreamDown)
	}

	// A missing file is a normal answer for doc path probing, so it
	// reports success to the breaker and the error to the caller.
	var content *Content
	var notFound error
	err := breaker.Call(func() error {
		var fetchErr error
		content, fetchErr = cbf.fetcher.Fetch(ctx, fetchURL)
		if errors.Is(fetchErr, ErrNotFound) {
			notFound = fetchErr
			return nil
		}
		return fetchErr
	}, 0)

	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}

	return content, nil
}

// Head wraps the underlying fetcher's Head with circuit breaker logic.
func (cbf *CircuitBreakerFetcher) Head(ctx context.Context, headURL string) (size int64, contentType string, err error) {
	host := extractHost(headURL)
	breaker := cbf.getBreaker(host)

	if !breaker.Ready() {
		return 0, "", fmt.Errorf("circuit breaker open for host %s: %w", host, ErrUpstreamDown)
	}

	var notFound error
	err = breaker.Call(func() error {
		var headErr error
		size, contentType, headErr = cbf.fetcher.Head(ctx, headURL)
		if errors.Is(headErr, ErrNotFound) {
			notFound = headErr
			return nil
		}
		return headErr
	}, 0)

	if err == nil {
		err = notFound
	}
	return size, contentType, err
}

// extractHost extracts a host identifier from a URL for breaker grouping.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}

// BreakerState returns the current state of each host's breaker.
func (cbf *CircuitBreakerFetcher) BreakerState() map[string]string {
	cbf.mu.RLock()
	defer cbf.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range cbf.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
