package client

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an artifact, version, or file is not found.
var ErrNotFound = errors.New("not found")

// HTTPError represents an unexpected HTTP error response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// RateLimitError is returned when the registry rate limits requests and the
// retry budget is exhausted.
type RateLimitError struct {
	RetryAfter int // seconds, 0 if the response carried no hint
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
}
