package rules

import (
	"fmt"

	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// NewNullComparisonRule flags = / != / <> comparisons against NULL, which
// evaluate to UNKNOWN and silently drop rows. Assignments in an UPDATE's SET
// list are legal and skipped: only tokens after the WHERE keyword are
// examined there.
func NewNullComparisonRule() Rule {
	return Rule{
		ID:       "logic.null-comparison",
		Category: types.CategoryLogic,
		Severity: types.SeverityHigh,
		Message:  "comparison with NULL is never true; use IS NULL or IS NOT NULL",
		Kind:     confidence.KindTokenScan,
		Matcher:  MatcherFunc(matchNullComparison),
	}
}

func matchNullComparison(doc *tokenizer.Document) []Match {
	var out []Match
	for si := range doc.Statements {
		st := &doc.Statements[si]
		if st.Empty {
			continue
		}
		sig := st.Significant()

		start := 0
		if st.LeadingKeyword() == "UPDATE" {
			start = -1
			for i, t := range sig {
				if t.IsKeyword("WHERE") {
					start = i + 1
					break
				}
			}
			if start < 0 {
				continue // SET assignments only, nothing to compare
			}
		}

		for i := start; i < len(sig); i++ {
			op := sig[i]
			if !op.IsPunct("=") && !op.IsPunct("!=") && !op.IsPunct("<>") {
				continue
			}
			var nullTok tokenizer.Token
			switch {
			case i+1 < len(sig) && sig[i+1].IsKeyword("NULL"):
				nullTok = sig[i+1]
			case i > start && sig[i-1].IsKeyword("NULL"):
				nullTok = sig[i-1]
			default:
				continue
			}

			m := span(doc, op)
			if nullTok.Line == op.Line {
				if nullTok.Column < m.ColumnStart {
					m.ColumnStart = nullTok.Column
				}
				if end := nullTok.Column + len(nullTok.Text); end > m.ColumnEnd {
					m.ColumnEnd = end
				}
			}
			m.StatementKind = st.LeadingKeyword()
			m.ReferencedNames = referencedTables(sig)
			m.ExactMatch = true

			replacement := "IS NULL"
			if op.Text != "=" {
				replacement = "IS NOT NULL"
			}
			m.Message = fmt.Sprintf("%q comparison with NULL always yields UNKNOWN; use %s", op.Text, replacement)
			m.Fix = &types.SuggestedFix{
				Original:    op.Text + " NULL",
				Replacement: replacement,
				Rationale:   "NULL is not equal to anything, including NULL; only IS [NOT] NULL tests it",
			}
			out = append(out, m)
		}
	}
	return out
}
