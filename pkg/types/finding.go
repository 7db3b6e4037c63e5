package types

// Location pins a finding to its source position. Line is 1-based; ColumnStart
// and ColumnEnd are 1-based and inclusive. LineText carries the full source
// line so report writers never need the raw input back.
type Location struct {
	Line        int    `json:"line" yaml:"line"`
	ColumnStart int    `json:"columnStart" yaml:"columnStart"`
	ColumnEnd   int    `json:"columnEnd" yaml:"columnEnd"`
	LineText    string `json:"lineText,omitempty" yaml:"lineText,omitempty"`
}

// SuggestedFix is an optional original/replacement pair attached to a finding.
type SuggestedFix struct {
	Original    string `json:"original" yaml:"original"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Rationale   string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// Finding is one reported issue. Findings are data, not errors: a malformed
// statement produces findings and analysis continues.
type Finding struct {
	ID         string        `json:"id" yaml:"id"`
	Severity   Severity      `json:"severity" yaml:"severity"`
	Category   Category      `json:"category" yaml:"category"`
	Message    string        `json:"message" yaml:"message"`
	Location   Location      `json:"location" yaml:"location"`
	Fix        *SuggestedFix `json:"fix,omitempty" yaml:"fix,omitempty"`
	Confidence float64       `json:"confidence" yaml:"confidence"`
}

// Clamp01 bounds v to [0,1]. Every confidence value passes through here
// before it is stored on a Finding or combined by the scorer.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
