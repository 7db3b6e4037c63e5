package analyzer

import (
	"fmt"

	"github.com/sqlinsight/sqlinsight/pkg/catalog"
	"github.com/sqlinsight/sqlinsight/pkg/graph"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// AnalysisResult is the complete output of one Analyze call.
//
// Findings are ordered by severity descending, then line ascending. Tables
// is empty when the document declared none; Schema, the category scores and
// the summary are always present.
type AnalysisResult struct {
	// ID is assigned by outer surfaces (HTTP API, batch runner); the core
	// leaves it empty so identical input yields an identical result.
	ID      string        `json:"id,omitempty" yaml:"id,omitempty"`
	Dialect types.Dialect `json:"dialect" yaml:"dialect"`

	Findings []types.Finding `json:"findings" yaml:"findings"`
	Tables   []catalog.Table `json:"tables,omitempty" yaml:"tables,omitempty"`
	Schema   *graph.Analysis `json:"schema,omitempty" yaml:"schema,omitempty"`

	// CategoryScores maps each category name to a 0-100 score: 100 minus a
	// per-finding deduction by severity, floored at zero.
	CategoryScores map[string]int `json:"categoryScores" yaml:"categoryScores"`
	Summary        Summary        `json:"summary" yaml:"summary"`
}

// Summary counts findings by severity.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
	Info     int `json:"info" yaml:"info"`
}

// HasCritical reports whether any CRITICAL finding was produced.
//
// Useful for CI pipelines that should fail hard:
//
//	if res.HasCritical() {
//	    os.Exit(1)
//	}
func (r *AnalysisResult) HasCritical() bool {
	return r.Summary.Critical > 0
}

// IsClean reports whether nothing at MEDIUM severity or above was found.
// LOW and INFO findings are advisory and do not make a document dirty.
func (r *AnalysisResult) IsClean() bool {
	return r.Summary.Critical == 0 && r.Summary.High == 0 && r.Summary.Medium == 0
}

// WorstSeverity returns the highest severity present, or zero when the
// document produced no findings.
func (r *AnalysisResult) WorstSeverity() types.Severity {
	if len(r.Findings) == 0 {
		return 0
	}
	// Findings are kept severity-descending.
	return r.Findings[0].Severity
}

// FilterBySeverity returns the findings with exactly the given severity,
// preserving order.
func (r *AnalysisResult) FilterBySeverity(s types.Severity) []types.Finding {
	filtered := make([]types.Finding, 0)
	for _, f := range r.Findings {
		if f.Severity == s {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// FilterByCategory returns the findings in the given category, preserving
// order.
func (r *AnalysisResult) FilterByCategory(c types.Category) []types.Finding {
	filtered := make([]types.Finding, 0)
	for _, f := range r.Findings {
		if f.Category == c {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// String returns a one-line human-readable summary.
//
// Example output:
//
//	Analysis: 5 findings (1 critical, 2 high, 1 medium, 1 low, 0 info)
func (r *AnalysisResult) String() string {
	return fmt.Sprintf(
		"Analysis: %d findings (%d critical, %d high, %d medium, %d low, %d info)",
		r.Summary.Total,
		r.Summary.Critical,
		r.Summary.High,
		r.Summary.Medium,
		r.Summary.Low,
		r.Summary.Info,
	)
}

// summarize counts findings per severity.
func summarize(findings []types.Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityCritical:
			s.Critical++
		case types.SeverityHigh:
			s.High++
		case types.SeverityMedium:
			s.Medium++
		case types.SeverityLow:
			s.Low++
		case types.SeverityInfo:
			s.Info++
		}
	}
	return s
}

// deduction is how many points one finding costs its category score.
func deduction(s types.Severity) int {
	switch s {
	case types.SeverityCritical:
		return 25
	case types.SeverityHigh:
		return 15
	case types.SeverityMedium:
		return 8
	case types.SeverityLow:
		return 3
	default:
		return 1
	}
}

// scoreCategories starts every category at 100 and deducts per finding,
// flooring at zero.
func scoreCategories(findings []types.Finding) map[string]int {
	scores := make(map[string]int, len(types.Categories()))
	for _, c := range types.Categories() {
		scores[c.String()] = 100
	}
	for _, f := range findings {
		key := f.Category.String()
		scores[key] = max(scores[key]-deduction(f.Severity), 0)
	}
	return scores
}
