package rules

import (
	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// NewSelectStarRule flags SELECT * projections. One finding is emitted per
// statement; missing WHERE/LIMIT clauses sharpen the message but never add
// findings of their own.
func NewSelectStarRule() Rule {
	return Rule{
		ID:       "performance.select-star",
		Category: types.CategoryPerformance,
		Severity: types.SeverityMedium,
		Message:  "SELECT * fetches every column; list the columns you need",
		Kind:     confidence.KindTokenScan,
		Matcher:  MatcherFunc(matchSelectStar),
	}
}

func matchSelectStar(doc *tokenizer.Document) []Match {
	var out []Match
	for si := range doc.Statements {
		st := &doc.Statements[si]
		if st.Empty {
			continue
		}
		sig := st.Significant()
		for i := 0; i+1 < len(sig); i++ {
			if !sig[i].IsKeyword("SELECT") || !sig[i+1].IsPunct("*") {
				continue
			}
			m := span(doc, sig[i+1])
			m.StatementKind = st.LeadingKeyword()
			m.ReferencedNames = referencedTables(sig)
			m.ExactMatch = true

			msg := "SELECT * fetches every column; list the columns you need"
			switch {
			case !st.HasKeyword("WHERE") && !st.HasKeyword("LIMIT"):
				msg += " (statement has neither WHERE nor LIMIT)"
			case !st.HasKeyword("WHERE"):
				msg += " (statement has no WHERE clause)"
			case !st.HasKeyword("LIMIT"):
				msg += " (statement has no LIMIT clause)"
			}
			m.Message = msg
			m.Fix = &types.SuggestedFix{
				Original:    "SELECT *",
				Replacement: "SELECT <column list>",
				Rationale:   "explicit column lists keep results stable when the table gains columns",
			}
			out = append(out, m)
			break // one finding per statement
		}
	}
	return out
}
