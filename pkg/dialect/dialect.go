// Package dialect supplies per-dialect pattern data to the analysis core:
// reserved-word lists, quote and comment quirks, and extra rule patterns. The
// core treats a Registry as an injected, read-only lookup; profiles are
// built once by the caller and never mutated afterwards.
package dialect

import (
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// Pattern is one dialect-specific rule template. Expr is an uncompiled
// regular expression matched per code line; the rule engine compiles it once
// when the registry is handed over.
type Pattern struct {
	ID       string         `yaml:"id" json:"id"`
	Expr     string         `yaml:"expr" json:"expr"`
	Message  string         `yaml:"message" json:"message"`
	Category types.Category `yaml:"category" json:"category"`
	Severity types.Severity `yaml:"severity" json:"severity"`
}

// Profile bundles everything the core consults for one dialect.
type Profile struct {
	Dialect       types.Dialect
	ScanOptions   tokenizer.Options
	ExtraPatterns []Pattern

	reserved map[string]struct{}
}

// NewProfile builds a profile with the given reserved words (case-insensitive).
func NewProfile(d types.Dialect, opts tokenizer.Options, reserved []string, patterns []Pattern) Profile {
	p := Profile{
		Dialect:       d,
		ScanOptions:   opts,
		ExtraPatterns: patterns,
		reserved:      make(map[string]struct{}, len(reserved)),
	}
	for _, w := range reserved {
		p.reserved[strings.ToUpper(w)] = struct{}{}
	}
	return p
}

// IsReserved reports whether word is reserved in this dialect,
// case-insensitive.
func (p Profile) IsReserved(word string) bool {
	_, ok := p.reserved[strings.ToUpper(word)]
	return ok
}

// ReservedWords returns the profile's reserved words in unspecified order.
func (p Profile) ReservedWords() []string {
	out := make([]string, 0, len(p.reserved))
	for w := range p.reserved {
		out = append(out, w)
	}
	return out
}

// Registry is the dialect lookup handed into the analyzer. Lookups for
// unknown dialects fall back to the generic profile.
type Registry struct {
	profiles map[types.Dialect]Profile
}

// NewRegistry builds a registry from the given profiles. A generic profile is
// always present as the fallback.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: make(map[types.Dialect]Profile, len(profiles)+1)}
	r.profiles[types.DialectGeneric] = genericProfile()
	for _, p := range profiles {
		r.profiles[p.Dialect] = p
	}
	return r
}

// Lookup returns the profile for d, falling back to the generic profile.
func (r *Registry) Lookup(d types.Dialect) Profile {
	if p, ok := r.profiles[d]; ok {
		return p
	}
	return r.profiles[types.DialectGeneric]
}

// Dialects returns the registered dialects in unspecified order.
func (r *Registry) Dialects() []types.Dialect {
	out := make([]types.Dialect, 0, len(r.profiles))
	for d := range r.profiles {
		out = append(out, d)
	}
	return out
}
