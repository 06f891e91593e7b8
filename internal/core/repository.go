package core

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/rs/zerolog"

	"github.com/logstash-tools/plugindex/client"
	"github.com/logstash-tools/plugindex/memo"
)

// HeadVersion is the cache key for the unreleased head of a repository,
// described by the latest published metadata.
const HeadVersion = ""

// DefaultBranch is the ref used for versions with no release tag.
const DefaultBranch = "master"

// Repository is a named artifact: one canonical name bound to a registry
// metadata client and a content source. It creates and caches one
// ReleasePackage per requested version for the life of the process.
type Repository struct {
	name   CanonicalName
	meta   Metadata
	source Source
	urls   client.URLBuilder
	log    zerolog.Logger
	pkgs   *memo.Keyed[string, *ReleasePackage]
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithLogger routes the repository's diagnostics through log.
func WithLogger(log zerolog.Logger) RepositoryOption {
	return func(r *Repository) {
		r.log = log
	}
}

// WithURLs attaches a URL builder for registry-facing links.
func WithURLs(urls client.URLBuilder) RepositoryOption {
	return func(r *Repository) {
		r.urls = urls
	}
}

// NewRepository creates a repository for name backed by the given metadata
// client and content source.
func NewRepository(name CanonicalName, meta Metadata, source Source, opts ...RepositoryOption) *Repository {
	r := &Repository{
		name:   name,
		meta:   meta,
		source: source,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.pkgs = memo.NewKeyed(r.lookup)
	return r
}

// Name returns the repository's canonical name.
func (r *Repository) Name() CanonicalName {
	return r.name
}

// lookup builds the package for one version key. An unpublished version
// resolves to nil, which the cache stores: the miss is a fact.
func (r *Repository) lookup(ctx context.Context, version string) (*ReleasePackage, error) {
	if version == HeadVersion {
		rec, err := r.meta.Latest(ctx)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return newReleasePackage(r, HeadVersion, rec), nil
	}

	rec, err := r.meta.ForVersion(ctx, version)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return newReleasePackage(r, version, rec), nil
}

// Package returns the cached ReleasePackage for version, creating it on
// first request. version may be HeadVersion for the unreleased head. An
// unpublished version returns a *NotFoundError; callers are expected to
// skip, not crash.
func (r *Repository) Package(ctx context.Context, version string) (*ReleasePackage, error) {
	pkg, err := r.pkgs.Get(ctx, version)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, &NotFoundError{Name: r.name.Full(), Version: version}
	}
	return pkg, nil
}

// Packages returns a lazy, restartable sequence over all released packages
// in descending version order, skipping prereleases unless requested.
func (r *Repository) Packages(ctx context.Context, includePrerelease bool) iter.Seq2[*ReleasePackage, error] {
	return func(yield func(*ReleasePackage, error) bool) {
		recs, err := r.meta.Versions(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, rec := range recs {
			if rec.Prerelease && !includePrerelease {
				continue
			}
			pkg, err := r.Package(ctx, rec.Number)
			if !yield(pkg, err) {
				return
			}
		}
	}
}

// LastRelease returns the package for the newest published version, or
// (nil, nil) if the artifact has no releases.
func (r *Repository) LastRelease(ctx context.Context) (*ReleasePackage, error) {
	rec, err := r.meta.Latest(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.Package(ctx, rec.Number)
}

// LastReleaseDate returns the publication time of the newest version, or
// the zero time if the artifact has no releases.
func (r *Repository) LastReleaseDate(ctx context.Context) (time.Time, error) {
	rec, err := r.meta.Latest(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return rec.CreatedAt, nil
}

// RefFor resolves a version to its version-control ref: "v<version>" for a
// release, the default branch for the head.
func RefFor(version string) string {
	if version == HeadVersion {
		return DefaultBranch
	}
	return "v" + version
}

// ReadFile fetches file content from the source at the ref for version.
func (r *Repository) ReadFile(ctx context.Context, path, version string) (string, error) {
	return r.source.ReadFile(ctx, path, RefFor(version))
}

// WebURL returns a browsable source URL for path at the ref for version.
func (r *Repository) WebURL(path, version string) string {
	return r.source.WebURL(path, RefFor(version))
}

// ChangelogURL returns a browsable URL for the changelog at version.
func (r *Repository) ChangelogURL(version string) string {
	return r.WebURL("CHANGELOG.md", version)
}

// RegistryURL returns the artifact's registry page if a URL builder is
// attached, "" otherwise.
func (r *Repository) RegistryURL(version string) string {
	if r.urls == nil {
		return ""
	}
	return r.urls.Registry(r.name.Full(), version)
}

// Equal reports whether two repositories share identity: same canonical
// name and same source.
func (r *Repository) Equal(o *Repository) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.name == o.name && r.source == o.source
}
