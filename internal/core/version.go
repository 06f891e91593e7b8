package core

import (
	"context"
	"time"
)

// VersionRecord is one published version of an artifact as reported by the
// registry. Metadata is the registry's opaque key/value document; the keys
// this package reads are named by the Meta* constants.
type VersionRecord struct {
	Number     string
	CreatedAt  time.Time
	Prerelease bool
	Metadata   map[string]string
}

// Metadata document keys read by the resolution logic.
const (
	MetaIntegrationPlugins = "integration_plugins"
	MetaSourceCodeURI      = "source_code_uri"
)

// Metadata is the registry contract: the full set of published version
// records for one artifact, fetched once and cached for the process
// lifetime.
type Metadata interface {
	// Versions returns all published records, strictly descending by
	// semantic version. An artifact unknown to the registry yields an
	// empty slice, not an error.
	Versions(ctx context.Context) ([]VersionRecord, error)

	// ForVersion returns the record matching number exactly, or an error
	// unwrapping to ErrNotFound if that version is unpublished.
	ForVersion(ctx context.Context, number string) (*VersionRecord, error)

	// Latest returns the newest record, or an error unwrapping to
	// ErrNotFound if the artifact has no releases.
	Latest(ctx context.Context) (*VersionRecord, error)
}

// Source is the content host contract: raw file contents and browsable
// URLs for a version-control ref.
type Source interface {
	// ReadFile returns the content of path at ref, or an error unwrapping
	// to ErrNotFound when the file is absent.
	ReadFile(ctx context.Context, path, ref string) (string, error)

	// WebURL returns a browsable URL for path at ref.
	WebURL(path, ref string) string
}
