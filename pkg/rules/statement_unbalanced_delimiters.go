package rules

import (
	"fmt"

	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// NewUnbalancedDelimitersRule flags statements whose parentheses do not
// balance, and statements the scanner had to close implicitly because a
// quote or block comment was still open at end-of-input. At most one paren
// finding and one quote finding are emitted per statement to avoid cascades.
func NewUnbalancedDelimitersRule() Rule {
	return Rule{
		ID:       "syntax.unbalanced-delimiters",
		Category: types.CategorySyntax,
		Severity: types.SeverityHigh,
		Message:  "unbalanced delimiters",
		Kind:     confidence.KindTokenScan,
		Matcher:  MatcherFunc(matchUnbalancedDelimiters),
	}
}

func matchUnbalancedDelimiters(doc *tokenizer.Document) []Match {
	var out []Match
	for si := range doc.Statements {
		st := &doc.Statements[si]
		sig := st.Significant()

		depth := 0
		reported := false
		var lastOpen tokenizer.Token
		for _, t := range sig {
			switch {
			case t.IsPunct("("):
				depth++
				lastOpen = t
			case t.IsPunct(")"):
				depth--
				if depth < 0 && !reported {
					m := span(doc, t)
					m.Message = "closing parenthesis without a matching opener"
					m.StatementKind = st.LeadingKeyword()
					m.ExactMatch = true
					out = append(out, m)
					reported = true
					depth = 0
				}
			}
		}
		if depth > 0 && !reported {
			m := span(doc, lastOpen)
			m.Message = fmt.Sprintf("statement is missing %d closing parenthesis(es)", depth)
			m.StatementKind = st.LeadingKeyword()
			m.ExactMatch = true
			out = append(out, m)
		}

		if st.UnterminatedLiteral {
			last := st.Tokens[len(st.Tokens)-1]
			m := span(doc, last)
			m.Message = "string literal or block comment is never closed"
			m.StatementKind = st.LeadingKeyword()
			m.ExactMatch = true
			out = append(out, m)
		}
	}
	return out
}
