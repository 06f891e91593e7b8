// Package plugindex resolves logstash plugin artifacts: their published
// versions from rubygems.org and their documentation and changelogs from
// source control.
//
// Everything is resolved lazily and cached for the life of the process.
// Asking twice for the same version returns the same package; asking for
// something the registry does not know is a cached miss, not a repeated
// network call.
//
// Basic usage:
//
//	repo, err := plugindex.New("logstash-filter-grok")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pkg, err := repo.LastRelease(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
//	plugins, err := pkg.Plugins(context.Background())
//	for _, pl := range plugins {
//		fmt.Println(pl.Desc(), pl.ChangelogURL())
//	}
package plugindex

import (
	"context"
	"fmt"

	"github.com/git-pkgs/purl"
	"github.com/rs/zerolog"

	"github.com/logstash-tools/plugindex/client"
	"github.com/logstash-tools/plugindex/internal/core"
	"github.com/logstash-tools/plugindex/internal/github"
	"github.com/logstash-tools/plugindex/internal/rubygems"
)

// DefaultOwner is the GitHub organization that hosts the plugin sources.
const DefaultOwner = "logstash-plugins"

// Re-export the entity model from internal/core
type (
	// Repository is a named artifact bound to a registry and a source.
	Repository = core.Repository

	// ReleasePackage is one version of an artifact.
	ReleasePackage = core.ReleasePackage

	// Plugin is a resolved plugin inside a package.
	Plugin = core.Plugin

	// CanonicalName is a parsed logstash-<type>-<name> identifier.
	CanonicalName = core.CanonicalName

	// PluginType classifies a plugin by its role in the pipeline.
	PluginType = core.PluginType

	// VersionRecord is one published version as reported by the registry.
	VersionRecord = core.VersionRecord

	// Metadata is the registry contract.
	Metadata = core.Metadata

	// Source is the content host contract.
	Source = core.Source
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// URLBuilder constructs URLs for a registry.
	URLBuilder = client.URLBuilder
)

// Plugin type constants.
const (
	Input       = core.Input
	Output      = core.Output
	Filter      = core.Filter
	Codec       = core.Codec
	Integration = core.Integration
)

// Version resolution constants.
const (
	// HeadVersion selects the unreleased head of a repository.
	HeadVersion = core.HeadVersion

	// DefaultBranch is the ref used when no release tag applies.
	DefaultBranch = core.DefaultBranch
)

// Re-export errors
var (
	ErrNotFound = core.ErrNotFound
)

// Error types
type (
	HTTPError       = core.HTTPError
	RateLimitError  = core.RateLimitError
	ValidationError = core.ValidationError
	NotFoundError   = core.NotFoundError
)

// Option configures repository construction.
type Option func(*config)

type config struct {
	owner       string
	registryURL string
	client      *Client
	source      core.Source
	log         zerolog.Logger
}

// WithOwner overrides the GitHub organization the source lives under.
func WithOwner(owner string) Option {
	return func(c *config) {
		c.owner = owner
	}
}

// WithRegistryURL overrides the registry endpoint. Used in tests.
func WithRegistryURL(u string) Option {
	return func(c *config) {
		c.registryURL = u
	}
}

// WithClient sets the HTTP client used for registry calls.
func WithClient(cl *Client) Option {
	return func(c *config) {
		c.client = cl
	}
}

// WithSource replaces the GitHub-backed content source entirely.
func WithSource(s Source) Option {
	return func(c *config) {
		c.source = s
	}
}

// WithLogger routes resolution diagnostics through log.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// New creates a repository for the canonically named artifact, backed by
// rubygems.org metadata and GitHub source content.
func New(name string, opts ...Option) (*Repository, error) {
	parsed, err := core.ParseName(name)
	if err != nil {
		return nil, err
	}

	cfg := &config{
		owner: DefaultOwner,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	gem := rubygems.New(parsed.Full(), cfg.registryURL, cfg.client)

	source := cfg.source
	if source == nil {
		source = github.New(cfg.owner, parsed.Full())
	}

	return core.NewRepository(parsed, gem, source,
		core.WithURLs(gem.URLs()),
		core.WithLogger(cfg.log),
	), nil
}

// FromPURL creates a repository from a package URL such as
// pkg:gem/logstash-filter-grok@4.4.3. The returned version is empty when
// the PURL names no version.
func FromPURL(purlStr string, opts ...Option) (*Repository, string, error) {
	p, err := purl.Parse(purlStr)
	if err != nil {
		return nil, "", err
	}
	if p.Type != "gem" {
		return nil, "", fmt.Errorf("unsupported purl type %q, want gem", p.Type)
	}

	repo, err := New(p.Name, opts...)
	if err != nil {
		return nil, "", err
	}
	return repo, p.Version, nil
}

// ParseName parses a canonical logstash-<type>-<name> identifier.
func ParseName(s string) (CanonicalName, error) {
	return core.ParseName(s)
}

// RefFor resolves a version to its version-control ref.
func RefFor(version string) string {
	return core.RefFor(version)
}

// PluginsEqual reports whether two plugins share identity.
func PluginsEqual(a, b Plugin) bool {
	return core.PluginsEqual(a, b)
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 attempts with constant backoff
// - Retry on 429 and transport errors
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...ClientOption) *Client {
	return client.NewClient(opts...)
}

// ClientOption configures a Client.
type ClientOption = client.Option

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxAttempts sets the total number of attempts per request.
var WithMaxAttempts = client.WithMaxAttempts

// WithRetryDelay sets the delay between retries.
var WithRetryDelay = client.WithRetryDelay

// BuildURLs returns a map of all non-empty URLs for an artifact.
// Keys are "registry", "download", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}

// BulkLastReleases resolves the latest released package for many
// repositories in parallel. Repositories with no releases or failing
// lookups are omitted.
func BulkLastReleases(ctx context.Context, repos []*Repository) map[string]*ReleasePackage {
	return core.BulkLastReleases(ctx, repos)
}

// BulkLastReleasesWithConcurrency resolves latest releases with a custom
// concurrency limit.
func BulkLastReleasesWithConcurrency(ctx context.Context, repos []*Repository, concurrency int) map[string]*ReleasePackage {
	return core.BulkLastReleasesWithConcurrency(ctx, repos, concurrency)
}

// BulkCollectPlugins expands each repository's newest matching package
// into its plugins and merges everything into one deduplicated list.
func BulkCollectPlugins(ctx context.Context, repos []*Repository, includePrerelease bool) []Plugin {
	return core.BulkCollectPlugins(ctx, repos, includePrerelease)
}

// BulkCollectPluginsWithConcurrency collects plugins with a custom
// concurrency limit.
func BulkCollectPluginsWithConcurrency(ctx context.Context, repos []*Repository, includePrerelease bool, concurrency int) []Plugin {
	return core.BulkCollectPluginsWithConcurrency(ctx, repos, includePrerelease, concurrency)
}
