package graph

import "strings"

// StemRule names an entity stem and the satellite entities that usually
// accompany it. A schema containing a table whose name matches the stem but
// no table matching a satellite gets a missing-table suggestion for it.
type StemRule struct {
	Stem       string   `json:"stem" yaml:"stem"`
	Satellites []string `json:"satellites" yaml:"satellites"`
}

// JunctionRule names a pair of entities that usually relate many-to-many
// through a junction table. When both sides exist and the junction does not,
// the engine suggests it.
type JunctionRule struct {
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
	Name  string `json:"name" yaml:"name"`
}

// Lexicon is the domain vocabulary the suggestion pass runs against. Rules
// are ordered so suggestion output is deterministic.
type Lexicon struct {
	Stems     []StemRule     `json:"stems" yaml:"stems"`
	Junctions []JunctionRule `json:"junctions" yaml:"junctions"`

	// AuditThreshold is the table count above which a schema with no audit
	// or log table gets an audit-table suggestion. Zero means the default.
	AuditThreshold int `json:"auditThreshold" yaml:"auditThreshold"`
}

const defaultAuditThreshold = 10

// DefaultLexicon returns the built-in vocabulary of common entities.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Stems: []StemRule{
			{Stem: "user", Satellites: []string{"profile", "address", "preference"}},
			{Stem: "customer", Satellites: []string{"address", "payment", "contact"}},
			{Stem: "product", Satellites: []string{"category", "review", "inventory"}},
			{Stem: "order", Satellites: []string{"item", "payment", "shipment"}},
			{Stem: "employee", Satellites: []string{"department", "address"}},
			{Stem: "patient", Satellites: []string{"appointment", "insurance"}},
			{Stem: "student", Satellites: []string{"guardian", "attendance"}},
		},
		Junctions: []JunctionRule{
			{Left: "student", Right: "course", Name: "enrollment"},
			{Left: "user", Right: "role", Name: "user_role"},
			{Left: "order", Right: "product", Name: "order_item"},
			{Left: "post", Right: "tag", Name: "post_tag"},
			{Left: "employee", Right: "project", Name: "assignment"},
		},
	}
}

func (l Lexicon) auditThreshold() int {
	if l.AuditThreshold > 0 {
		return l.AuditThreshold
	}
	return defaultAuditThreshold
}

// matchTable returns the first table whose lowercased name contains the
// term, or "" when none does.
func matchTable(names []string, term string) string {
	term = strings.ToLower(term)
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), term) {
			return n
		}
	}
	return ""
}
