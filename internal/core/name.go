// Package core provides the artifact entity model: canonical names,
// version records, and the repository/package/plugin hierarchy.
package core

import (
	"fmt"
	"strings"
)

// PluginType classifies a plugin by its role in the pipeline.
type PluginType string

const (
	Input       PluginType = "input"
	Output      PluginType = "output"
	Filter      PluginType = "filter"
	Codec       PluginType = "codec"
	Integration PluginType = "integration"
)

const namePrefix = "logstash"

var validTypes = map[PluginType]bool{
	Input:       true,
	Output:      true,
	Filter:      true,
	Codec:       true,
	Integration: true,
}

// CanonicalName is a parsed three-part artifact identifier of the form
// logstash-<type>-<name>. A CanonicalName only exists fully parsed;
// ParseName fails rather than produce a partial one.
type CanonicalName struct {
	typ  PluginType
	name string
}

// ParseName parses s into a CanonicalName or returns a *ValidationError.
func ParseName(s string) (CanonicalName, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return CanonicalName{}, &ValidationError{Input: s, Reason: "want logstash-<type>-<name>"}
	}
	if parts[0] != namePrefix {
		return CanonicalName{}, &ValidationError{Input: s, Reason: fmt.Sprintf("prefix must be %q", namePrefix)}
	}
	typ := PluginType(parts[1])
	if !validTypes[typ] {
		return CanonicalName{}, &ValidationError{Input: s, Reason: fmt.Sprintf("unknown plugin type %q", parts[1])}
	}
	if parts[2] == "" {
		return CanonicalName{}, &ValidationError{Input: s, Reason: "empty plugin name"}
	}
	return CanonicalName{typ: typ, name: parts[2]}, nil
}

// Type returns the plugin type component.
func (n CanonicalName) Type() PluginType { return n.typ }

// Name returns the short name component.
func (n CanonicalName) Name() string { return n.name }

// Full reconstructs the canonical three-part identifier.
func (n CanonicalName) Full() string {
	return namePrefix + "-" + string(n.typ) + "-" + n.name
}

func (n CanonicalName) String() string { return n.Full() }

// IsZero reports whether n is the zero value rather than a parsed name.
func (n CanonicalName) IsZero() bool { return n.typ == "" }
