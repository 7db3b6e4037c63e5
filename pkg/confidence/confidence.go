// Package confidence turns the loose signals around a finding into a single
// bounded confidence value and a coarse level. Six component scores are
// computed independently, each clamped to [0,1], then combined by a fixed
// weighted sum. The scorer carries only static lookup tables built at
// construction; Score never mutates them, so one Scorer is safe to share
// across goroutines.
package confidence

import (
	"fmt"
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// Level is the discrete bucket a confidence value falls into.
type Level int32

const (
	LevelVeryLow Level = iota + 1
	LevelLow
	LevelMedium
	LevelHigh
	LevelVeryHigh
)

func (l Level) String() string {
	switch l {
	case LevelVeryLow:
		return "VERY_LOW"
	case LevelLow:
		return "LOW"
	case LevelMedium:
		return "MEDIUM"
	case LevelHigh:
		return "HIGH"
	case LevelVeryHigh:
		return "VERY_HIGH"
	}
	return "UNKNOWN"
}

// LevelOf maps a clamped confidence value onto its level.
func LevelOf(v float64) Level {
	switch {
	case v >= 0.90:
		return LevelVeryHigh
	case v >= 0.75:
		return LevelHigh
	case v >= 0.50:
		return LevelMedium
	case v >= 0.25:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// Component weights of the combination. ComplexityPenalty subtracts.
const (
	weightPatternMatch       = 0.25
	weightContextRelevance   = 0.20
	weightHistoricalAccuracy = 0.20
	weightComplexityPenalty  = -0.10
	weightValidation         = 0.15
	weightConsensus          = 0.10
)

// Metrics holds the six component scores before combination. Callers
// normally obtain one from Scorer.Score rather than filling it by hand.
type Metrics struct {
	PatternMatch       float64 `json:"pattern_match" yaml:"pattern_match"`
	ContextRelevance   float64 `json:"context_relevance" yaml:"context_relevance"`
	HistoricalAccuracy float64 `json:"historical_accuracy" yaml:"historical_accuracy"`
	ComplexityPenalty  float64 `json:"complexity_penalty" yaml:"complexity_penalty"`
	Validation         float64 `json:"validation" yaml:"validation"`
	Consensus          float64 `json:"consensus" yaml:"consensus"`
}

// Combine clamps each component to [0,1], applies the fixed weights and
// clamps the result. The output is always in [0,1].
func (m Metrics) Combine() float64 {
	v := types.Clamp01(m.PatternMatch)*weightPatternMatch +
		types.Clamp01(m.ContextRelevance)*weightContextRelevance +
		types.Clamp01(m.HistoricalAccuracy)*weightHistoricalAccuracy +
		types.Clamp01(m.ComplexityPenalty)*weightComplexityPenalty +
		types.Clamp01(m.Validation)*weightValidation +
		types.Clamp01(m.Consensus)*weightConsensus
	return types.Clamp01(v)
}

// AnalysisKind describes which subsystem produced the finding; pattern
// scans are trusted more than name-similarity heuristics.
type AnalysisKind int32

const (
	KindPatternScan AnalysisKind = iota + 1
	KindTokenScan
	KindSchemaInference
)

func (k AnalysisKind) String() string {
	switch k {
	case KindPatternScan:
		return "pattern-scan"
	case KindTokenScan:
		return "token-scan"
	case KindSchemaInference:
		return "schema-inference"
	}
	return "unknown"
}

// Context carries the optional signals available when a finding is scored.
// The zero value is a legal, fully pessimistic context.
type Context struct {
	// HasLocation is true when the finding carries a line and column.
	HasLocation bool
	// Snippet is the surrounding source text, typically the matched line.
	Snippet string
	// StatementKind is the leading keyword of the enclosing statement.
	StatementKind string
	// ReferencedNames lists tables or functions the statement mentions.
	ReferencedNames []string
	// SimilarFindings counts findings of the same rule earlier in this run.
	SimilarFindings int
	// ExactMatch is true when the rule matched a literal token sequence
	// rather than a loose textual pattern.
	ExactMatch bool
}

// Result is the scored outcome for one finding.
type Result struct {
	Value       float64 `json:"value" yaml:"value"`
	Level       Level   `json:"-" yaml:"-"`
	Metrics     Metrics `json:"metrics" yaml:"metrics"`
	Description string  `json:"description" yaml:"description"`
}

type validator struct {
	name string
	pass func(Context) bool
}

// Scorer combines component scores using tables fixed at construction.
type Scorer struct {
	historical map[types.Category]float64
	validators map[types.Category][]validator
}

// NewScorer builds a scorer with the default historical-accuracy table and
// the category validation sets.
func NewScorer() *Scorer {
	s := &Scorer{
		historical: map[types.Category]float64{
			types.CategorySyntax:       0.92,
			types.CategorySecurity:     0.85,
			types.CategoryLogic:        0.80,
			types.CategoryPerformance:  0.75,
			types.CategoryNaming:       0.70,
			types.CategoryBestPractice: 0.65,
		},
		validators: map[types.Category][]validator{},
	}

	s.validators[types.CategorySyntax] = []validator{
		{"snippet captured", func(c Context) bool { return strings.TrimSpace(c.Snippet) != "" }},
		{"position known", func(c Context) bool { return c.HasLocation }},
	}
	s.validators[types.CategoryPerformance] = []validator{
		{"dml statement", func(c Context) bool {
			switch strings.ToUpper(c.StatementKind) {
			case "SELECT", "INSERT", "UPDATE", "DELETE", "MERGE":
				return true
			}
			return false
		}},
		{"tables referenced", func(c Context) bool { return len(c.ReferencedNames) > 0 }},
	}
	s.validators[types.CategorySecurity] = []validator{
		{"snippet captured", func(c Context) bool { return strings.TrimSpace(c.Snippet) != "" }},
		{"literal or comment present", func(c Context) bool {
			return strings.ContainsAny(c.Snippet, "'\"") || strings.Contains(c.Snippet, "--")
		}},
	}
	s.validators[types.CategoryLogic] = []validator{
		{"statement kind known", func(c Context) bool { return c.StatementKind != "" }},
	}
	s.validators[types.CategoryNaming] = []validator{
		{"identifier captured", func(c Context) bool { return len(c.ReferencedNames) > 0 }},
	}
	s.validators[types.CategoryBestPractice] = []validator{
		{"snippet captured", func(c Context) bool { return strings.TrimSpace(c.Snippet) != "" }},
	}
	return s
}

// Score computes the six components for one finding and combines them.
func (s *Scorer) Score(category types.Category, kind AnalysisKind, ctx Context) Result {
	m := Metrics{
		PatternMatch:       s.patternMatch(kind, ctx),
		ContextRelevance:   s.contextRelevance(ctx),
		HistoricalAccuracy: s.historicalAccuracy(category),
		ComplexityPenalty:  s.complexityPenalty(ctx),
		Validation:         s.validation(category, ctx),
		Consensus:          s.consensus(ctx),
	}
	v := m.Combine()
	lvl := LevelOf(v)
	return Result{
		Value:       v,
		Level:       lvl,
		Metrics:     m,
		Description: describe(lvl, category, kind),
	}
}

func (s *Scorer) patternMatch(kind AnalysisKind, ctx Context) float64 {
	var base float64
	switch kind {
	case KindTokenScan:
		base = 0.90
	case KindPatternScan:
		base = 0.80
	case KindSchemaInference:
		base = 0.60
	default:
		base = 0.50
	}
	if ctx.ExactMatch {
		base += 0.10
	}
	return base
}

func (s *Scorer) contextRelevance(ctx Context) float64 {
	v := 0.40
	if ctx.HasLocation {
		v += 0.25
	}
	if ctx.StatementKind != "" {
		v += 0.20
	}
	if len(ctx.ReferencedNames) > 0 {
		v += 0.15
	}
	return v
}

func (s *Scorer) historicalAccuracy(category types.Category) float64 {
	if v, ok := s.historical[category]; ok {
		return v
	}
	return 0.5
}

// complexityPenalty grows with how tangled the surrounding code is; dense
// nesting and long lines make a textual match less trustworthy.
func (s *Scorer) complexityPenalty(ctx Context) float64 {
	if ctx.Snippet == "" {
		return 0
	}
	depth := 0
	maxDepth := 0
	for _, r := range ctx.Snippet {
		switch r {
		case '(':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	penalty := float64(maxDepth) * 0.15
	if len(ctx.Snippet) > 200 {
		penalty += 0.25
	} else if len(ctx.Snippet) > 120 {
		penalty += 0.10
	}
	return types.Clamp01(penalty)
}

func (s *Scorer) validation(category types.Category, ctx Context) float64 {
	checks := s.validators[category]
	if len(checks) == 0 {
		return 0.5
	}
	passed := 0
	for _, c := range checks {
		if c.pass(ctx) {
			passed++
		}
	}
	return float64(passed) / float64(len(checks))
}

// consensus saturates once a handful of sibling findings agree.
func (s *Scorer) consensus(ctx Context) float64 {
	if ctx.SimilarFindings <= 0 {
		return 0.3
	}
	return types.Clamp01(0.3 + float64(ctx.SimilarFindings)*0.175)
}

func describe(lvl Level, category types.Category, kind AnalysisKind) string {
	var verdict string
	switch lvl {
	case LevelVeryHigh:
		verdict = "very high confidence"
	case LevelHigh:
		verdict = "high confidence"
	case LevelMedium:
		verdict = "moderate confidence"
	case LevelLow:
		verdict = "low confidence"
	default:
		verdict = "very low confidence"
	}
	return fmt.Sprintf("%s %s finding from %s", verdict, category, kind)
}
