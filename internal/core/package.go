package core

import (
	"context"
	"strings"
	"time"

	"github.com/logstash-tools/plugindex/memo"
)

// ReleasePackage is one version of a Repository. Its plugin list is
// resolved lazily from registry metadata and never mutated once set.
type ReleasePackage struct {
	repo    *Repository
	version string         // HeadVersion for the unreleased head
	record  *VersionRecord // nil only for a head with no releases
	plugins *memo.Lazy[[]Plugin]
}

func newReleasePackage(repo *Repository, version string, record *VersionRecord) *ReleasePackage {
	p := &ReleasePackage{
		repo:    repo,
		version: version,
		record:  record,
	}
	p.plugins = memo.NewLazy(p.resolvePlugins)
	return p
}

// Repository returns the owning repository.
func (p *ReleasePackage) Repository() *Repository {
	return p.repo
}

// Version returns the version number, or HeadVersion for the head.
func (p *ReleasePackage) Version() string {
	return p.version
}

// Released reports whether this package is a published release rather than
// the unreleased head.
func (p *ReleasePackage) Released() bool {
	return p.version != HeadVersion
}

// Tag returns the version-control ref for this package.
func (p *ReleasePackage) Tag() string {
	return RefFor(p.version)
}

// ReleaseDate returns the publication time, or the zero time for the head.
func (p *ReleasePackage) ReleaseDate() time.Time {
	if p.version == HeadVersion || p.record == nil {
		return time.Time{}
	}
	return p.record.CreatedAt
}

// ChangelogURL returns a browsable URL for the changelog at this version.
func (p *ReleasePackage) ChangelogURL() string {
	return p.repo.ChangelogURL(p.version)
}

// Desc returns a human-readable identifier, e.g. "logstash-filter-grok 4.4.3".
func (p *ReleasePackage) Desc() string {
	v := p.version
	if v == HeadVersion {
		v = DefaultBranch
	}
	return p.repo.Name().Full() + " " + v
}

// ReadFile fetches file content from the source at this package's ref.
func (p *ReleasePackage) ReadFile(ctx context.Context, path string) (string, error) {
	return p.repo.ReadFile(ctx, path, p.version)
}

// Plugins returns the package's plugins, resolved once from metadata. If
// the metadata carries no integration_plugins entry the package holds a
// single standalone plugin named after the repository; otherwise each
// comma-separated canonical name becomes one packaged plugin. A malformed
// entry is logged and dropped without failing the rest of the package.
func (p *ReleasePackage) Plugins(ctx context.Context) ([]Plugin, error) {
	return p.plugins.Get(ctx)
}

func (p *ReleasePackage) resolvePlugins(ctx context.Context) ([]Plugin, error) {
	var raw string
	if p.record != nil {
		raw = p.record.Metadata[MetaIntegrationPlugins]
	}

	if raw == "" {
		return []Plugin{newStandalone(p, p.repo.Name())}, nil
	}

	// Non-nil even when every entry is dropped, so the computed result
	// caches and the warnings are not re-logged on every call.
	out := []Plugin{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, err := ParseName(entry)
		if err != nil {
			p.repo.log.Warn().
				Str("package", p.Desc()).
				Str("plugin", entry).
				Err(err).
				Msg("skipping malformed plugin entry")
			continue
		}
		out = append(out, newPackaged(p, name))
	}
	return out, nil
}

// Integration reports whether the package bundles multiple independently
// named plugins.
func (p *ReleasePackage) Integration(ctx context.Context) (bool, error) {
	plugins, err := p.Plugins(ctx)
	if err != nil {
		return false, err
	}
	for _, pl := range plugins {
		if _, ok := pl.(*packagedPlugin); ok {
			return true, nil
		}
	}
	return false, nil
}

// Equal reports whether two packages share repository identity and version.
func (p *ReleasePackage) Equal(o *ReleasePackage) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.repo.Equal(o.repo) && p.version == o.version
}
