package rules

import (
	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// NewMissingTerminatorRule flags statements that reach end-of-input without a
// semicolon. Only statements opening with a DML/DDL keyword are checked, so
// fragments and expression snippets do not trip it.
func NewMissingTerminatorRule() Rule {
	return Rule{
		ID:       "syntax.missing-terminator",
		Category: types.CategorySyntax,
		Severity: types.SeverityLow,
		Message:  "statement does not end with ';'",
		Kind:     confidence.KindTokenScan,
		Matcher:  MatcherFunc(matchMissingTerminator),
	}
}

func matchMissingTerminator(doc *tokenizer.Document) []Match {
	var out []Match
	for si := range doc.Statements {
		st := &doc.Statements[si]
		if st.Empty || st.Terminated {
			continue
		}
		if !tokenizer.IsDMLDDLStarter(st.LeadingKeyword()) {
			continue
		}
		sig := st.Significant()
		last := sig[len(sig)-1]
		m := span(doc, last)
		m.StatementKind = st.LeadingKeyword()
		m.ReferencedNames = referencedTables(sig)
		m.ExactMatch = true
		m.Fix = &types.SuggestedFix{
			Original:    last.Text,
			Replacement: last.Text + ";",
			Rationale:   "an explicit terminator keeps the statement intact when the script grows",
		}
		out = append(out, m)
	}
	return out
}
