// Package rules implements the pattern-driven detectors that scan SQL
// documents for syntax, performance, security, logic and naming findings.
// Rules are pure: a Matcher reads a Document and reports matches, with no
// state shared between invocations, so one Engine may scan documents from
// multiple goroutines.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/dialect"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// Match is one spot where a rule fired. Message, when set, replaces the
// rule's template message; the remaining fields feed the confidence scorer.
type Match struct {
	Line        int
	ColumnStart int
	ColumnEnd   int
	LineText    string

	Message string
	Fix     *types.SuggestedFix

	StatementKind   string
	ReferencedNames []string
	ExactMatch      bool
}

// Matcher scans a document and reports every place its rule applies.
// Implementations must be read-only over the document and deterministic.
type Matcher interface {
	Match(doc *tokenizer.Document) []Match
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(doc *tokenizer.Document) []Match

func (f MatcherFunc) Match(doc *tokenizer.Document) []Match { return f(doc) }

// Rule couples a matcher with the finding template it emits.
type Rule struct {
	ID       string
	Category types.Category
	Severity types.Severity
	Message  string
	Kind     confidence.AnalysisKind
	Matcher  Matcher
}

// LinePattern returns a matcher that applies re to every code line. Comment
// and blank lines are skipped; one match is reported per matching line at the
// matched span.
func LinePattern(re *regexp.Regexp) Matcher {
	return MatcherFunc(func(doc *tokenizer.Document) []Match {
		var out []Match
		for n := 1; n <= doc.LineCount(); n++ {
			if !doc.IsCodeLine(n) {
				continue
			}
			line := doc.Line(n)
			loc := re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			out = append(out, Match{
				Line:        n,
				ColumnStart: loc[0] + 1,
				ColumnEnd:   loc[1] + 1,
				LineText:    line,
			})
		}
		return out
	})
}

// FromPattern compiles a dialect pattern into a line rule. The expression is
// compiled once here; a broken pattern is reported instead of panicking.
func FromPattern(p dialect.Pattern) (Rule, error) {
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return Rule{}, errors.Wrapf(err, "compile pattern %q", p.ID)
	}
	return Rule{
		ID:       p.ID,
		Category: p.Category,
		Severity: p.Severity,
		Message:  p.Message,
		Kind:     confidence.KindPatternScan,
		Matcher:  LinePattern(re),
	}, nil
}

// Registry is an ordered, caller-constructed rule set. Order matters: it is
// the tiebreaker for findings on the same severity and line.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry over the given rules.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: append([]Rule(nil), rules...)}
}

// Add appends rules, preserving order.
func (r *Registry) Add(rules ...Rule) {
	r.rules = append(r.rules, rules...)
}

// Rules returns the registered rules in order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Without returns a copy of the registry with the given rule IDs removed.
func (r *Registry) Without(ids ...string) *Registry {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := &Registry{}
	for _, rule := range r.rules {
		if !drop[rule.ID] {
			out.rules = append(out.rules, rule)
		}
	}
	return out
}

// DefaultRegistry returns the built-in rules plus the profile's dialect
// patterns. Patterns that fail to compile are skipped and reported.
func DefaultRegistry(profile dialect.Profile) (*Registry, error) {
	reg := NewRegistry(
		NewUnbalancedDelimitersRule(),
		NewMissingWhereRule(),
		NewInjectionRule(),
		NewNullComparisonRule(),
		NewSelectStarRule(),
		NewKeywordIdentifierRule(profile),
		NewMissingTerminatorRule(),
	)
	var errs []string
	for _, p := range profile.ExtraPatterns {
		rule, err := FromPattern(p)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		reg.Add(rule)
	}
	if len(errs) > 0 {
		return reg, errors.Errorf("dialect %s: %s", profile.Dialect, strings.Join(errs, "; "))
	}
	return reg, nil
}

// Engine runs a registry over documents and turns matches into scored,
// deterministically ordered findings.
type Engine struct {
	rules  []Rule
	scorer *confidence.Scorer
}

// NewEngine builds an engine. A nil scorer gets the default one.
func NewEngine(reg *Registry, scorer *confidence.Scorer) *Engine {
	if scorer == nil {
		scorer = confidence.NewScorer()
	}
	return &Engine{rules: reg.Rules(), scorer: scorer}
}

// Scan runs every rule over doc and returns the findings sorted by severity
// descending, then line ascending, with insertion order breaking ties.
func (e *Engine) Scan(doc *tokenizer.Document) []types.Finding {
	var findings []types.Finding
	for _, rule := range e.rules {
		matches := rule.Matcher.Match(doc)
		for i, m := range matches {
			msg := rule.Message
			if m.Message != "" {
				msg = m.Message
			}
			res := e.scorer.Score(rule.Category, rule.Kind, confidence.Context{
				HasLocation:     m.Line > 0,
				Snippet:         m.LineText,
				StatementKind:   m.StatementKind,
				ReferencedNames: m.ReferencedNames,
				SimilarFindings: i,
				ExactMatch:      m.ExactMatch,
			})
			findings = append(findings, types.Finding{
				ID:       rule.ID,
				Severity: rule.Severity,
				Category: rule.Category,
				Message:  msg,
				Location: types.Location{
					Line:        m.Line,
					ColumnStart: m.ColumnStart,
					ColumnEnd:   m.ColumnEnd,
					LineText:    m.LineText,
				},
				Fix:        m.Fix,
				Confidence: res.Value,
			})
		}
	}
	SortFindings(findings)
	return findings
}

// SortFindings orders findings by severity descending then line ascending,
// keeping insertion order for ties.
func SortFindings(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		return findings[i].Location.Line < findings[j].Location.Line
	})
}

// referencedTables extracts table names named after FROM/INTO/UPDATE/JOIN or
// TABLE keywords, for the scorer's context.
func referencedTables(sig []tokenizer.Token) []string {
	var out []string
	for i := 0; i+1 < len(sig); i++ {
		switch {
		case sig[i].IsKeyword("FROM"), sig[i].IsKeyword("INTO"),
			sig[i].IsKeyword("UPDATE"), sig[i].IsKeyword("JOIN"),
			sig[i].IsKeyword("TABLE"):
			if sig[i+1].Kind == tokenizer.TokenIdentifier {
				out = append(out, sig[i+1].Text)
			}
		}
	}
	return out
}

// lineOf returns the document line the token sits on.
func lineOf(doc *tokenizer.Document, t tokenizer.Token) string {
	return doc.Line(t.Line)
}

// span builds the location part of a match from a single token.
func span(doc *tokenizer.Document, t tokenizer.Token) Match {
	return Match{
		Line:        t.Line,
		ColumnStart: t.Column,
		ColumnEnd:   t.Column + len([]rune(t.Text)),
		LineText:    lineOf(doc, t),
	}
}
