package core

import (
	"fmt"

	"github.com/logstash-tools/plugindex/client"
)

// Transport-level errors are defined by the client package and aliased here
// so the entity model and its callers deal with one package.
var ErrNotFound = client.ErrNotFound

type (
	HTTPError      = client.HTTPError
	RateLimitError = client.RateLimitError
)

// ValidationError reports a malformed canonical artifact name. It is fatal
// to the one entity being constructed; batch operations catch it per entry
// and continue with the rest.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid canonical name %q: %s", e.Input, e.Reason)
}

// NotFoundError wraps ErrNotFound with artifact context.
type NotFoundError struct {
	Name    string
	Version string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("artifact %s version %s not found", e.Name, e.Version)
	}
	return fmt.Sprintf("artifact %s not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
