// Package github reads raw file contents from GitHub repositories.
package github

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/logstash-tools/plugindex/fetch"
)

const (
	DefaultRawURL = "https://raw.githubusercontent.com"
	DefaultWebURL = "https://github.com"
)

// defaultFetcher is shared by every Source so all traffic to one host
// goes through the same circuit breaker.
var defaultFetcher = sync.OnceValue(func() fetch.ContentFetcher {
	return fetch.NewCircuitBreakerFetcher(fetch.NewFetcher())
})

// Source reads files from one GitHub repository over the raw content
// endpoint. It implements the content host contract used by Repository.
type Source struct {
	owner   string
	repo    string
	rawURL  string
	webURL  string
	fetcher fetch.ContentFetcher
}

// Option configures a Source.
type Option func(*Source)

// WithRawURL overrides the raw content endpoint. Used in tests.
func WithRawURL(u string) Option {
	return func(s *Source) {
		s.rawURL = strings.TrimSuffix(u, "/")
	}
}

// WithWebURL overrides the base for browsable URLs.
func WithWebURL(u string) Option {
	return func(s *Source) {
		s.webURL = strings.TrimSuffix(u, "/")
	}
}

// WithFetcher replaces the shared content fetcher.
func WithFetcher(f fetch.ContentFetcher) Option {
	return func(s *Source) {
		s.fetcher = f
	}
}

// New creates a Source for github.com/<owner>/<repo>.
func New(owner, repo string, opts ...Option) *Source {
	s := &Source{
		owner:  owner,
		repo:   repo,
		rawURL: DefaultRawURL,
		webURL: DefaultWebURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = defaultFetcher()
	}
	return s
}

// Owner returns the repository owner.
func (s *Source) Owner() string {
	return s.owner
}

// Repo returns the repository name.
func (s *Source) Repo() string {
	return s.repo
}

// ReadFile returns the content of path at ref. Absence is reported as an
// error unwrapping to fetch.ErrNotFound.
func (s *Source) ReadFile(ctx context.Context, path, ref string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/%s", s.rawURL, s.owner, s.repo, ref, strings.TrimPrefix(path, "/"))

	content, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	// Some mirrors answer 200 with a literal not-found page.
	body := string(content.Body)
	if strings.TrimSpace(body) == "404: Not Found" {
		return "", fetch.ErrNotFound
	}
	return body, nil
}

// WebURL returns the browsable URL for path at ref.
func (s *Source) WebURL(path, ref string) string {
	return fmt.Sprintf("%s/%s/%s/blob/%s/%s", s.webURL, s.owner, s.repo, ref, strings.TrimPrefix(path, "/"))
}
