package core

import (
	"context"
	"errors"
	"time"
)

const docExt = ".asciidoc"

// Plugin is a named sub-artifact inside a ReleasePackage. Version, release
// date, changelog URL, and tag all delegate unchanged to the owning
// package; the two variants differ only in documentation path and
// description format.
type Plugin interface {
	Type() PluginType
	Name() string
	CanonicalName() CanonicalName
	Package() *ReleasePackage
	Version() string
	ReleaseDate() time.Time
	ChangelogURL() string
	Tag() string
	Desc() string

	// Documentation fetches the plugin's documentation file from the
	// package's source, or an error unwrapping to ErrNotFound.
	Documentation(ctx context.Context) (string, error)
}

// pluginBase carries the delegation shared by both variants.
type pluginBase struct {
	pkg  *ReleasePackage
	name CanonicalName
}

func (b *pluginBase) Type() PluginType             { return b.name.Type() }
func (b *pluginBase) Name() string                 { return b.name.Name() }
func (b *pluginBase) CanonicalName() CanonicalName { return b.name }
func (b *pluginBase) Package() *ReleasePackage     { return b.pkg }
func (b *pluginBase) Version() string              { return b.pkg.Version() }
func (b *pluginBase) ReleaseDate() time.Time       { return b.pkg.ReleaseDate() }
func (b *pluginBase) ChangelogURL() string         { return b.pkg.ChangelogURL() }
func (b *pluginBase) Tag() string                  { return b.pkg.Tag() }

// standalonePlugin is the sole plugin of a non-integration package, named
// after the repository itself.
type standalonePlugin struct {
	pluginBase
	desc string
}

func newStandalone(pkg *ReleasePackage, name CanonicalName) *standalonePlugin {
	return &standalonePlugin{
		pluginBase: pluginBase{pkg: pkg, name: name},
		desc:       pkg.Desc(),
	}
}

func (p *standalonePlugin) Desc() string {
	return p.desc
}

func (p *standalonePlugin) Documentation(ctx context.Context) (string, error) {
	return p.pkg.ReadFile(ctx, "docs/index"+docExt)
}

// packagedPlugin is one of several independently named plugins bundled in
// an integration package.
type packagedPlugin struct {
	pluginBase
	desc string
}

func newPackaged(pkg *ReleasePackage, name CanonicalName) *packagedPlugin {
	return &packagedPlugin{
		pluginBase: pluginBase{pkg: pkg, name: name},
		desc:       pkg.Desc() + "/" + name.Name(),
	}
}

func (p *packagedPlugin) Desc() string {
	return p.desc
}

// Documentation prefers the per-plugin doc path and falls back to the
// legacy per-type path used by artifacts published before per-plugin docs
// existed, so call sites never need to know the old convention.
func (p *packagedPlugin) Documentation(ctx context.Context) (string, error) {
	primary := "docs/" + string(p.Type()) + "-" + p.Name() + docExt
	content, err := p.pkg.ReadFile(ctx, primary)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	legacy := "docs/index-" + string(p.Type()) + docExt
	return p.pkg.ReadFile(ctx, legacy)
}

// PluginsEqual reports whether two plugins belong to equal packages and
// share the same type and name.
func PluginsEqual(a, b Plugin) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Package().Equal(b.Package()) && a.CanonicalName() == b.CanonicalName()
}
