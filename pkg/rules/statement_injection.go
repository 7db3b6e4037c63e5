package rules

import (
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// NewInjectionRule flags token shapes that show up when user input has been
// spliced into SQL: OR 1=1 tautologies, UNION SELECT grafts, a line comment
// straight after a terminator, and a DROP/DELETE stacked on the same line as
// a preceding terminator.
func NewInjectionRule() Rule {
	return Rule{
		ID:       "security.injection-pattern",
		Category: types.CategorySecurity,
		Severity: types.SeverityCritical,
		Message:  "statement contains an injection-indicative pattern",
		Kind:     confidence.KindTokenScan,
		Matcher:  MatcherFunc(matchInjection),
	}
}

func matchInjection(doc *tokenizer.Document) []Match {
	var out []Match
	stmts := doc.Statements
	for si := range stmts {
		st := &stmts[si]
		sig := st.Significant()
		kind := st.LeadingKeyword()
		refs := referencedTables(sig)

		// OR 1=1 and its quoted variants.
		for i := 0; i+3 < len(sig); i++ {
			if !sig[i].IsKeyword("OR") || !isOneLiteral(sig[i+1]) ||
				!sig[i+2].IsPunct("=") || !isOneLiteral(sig[i+3]) {
				continue
			}
			m := span(doc, sig[i])
			if sig[i+3].Line == sig[i].Line {
				m.ColumnEnd = sig[i+3].Column + len([]rune(sig[i+3].Text))
			}
			m.Message = "OR 1=1 tautology defeats the WHERE clause"
			m.StatementKind = kind
			m.ReferencedNames = refs
			m.ExactMatch = true
			out = append(out, m)
		}

		// UNION [ALL] SELECT grafted onto a query.
		for i := 0; i+1 < len(sig); i++ {
			if !sig[i].IsKeyword("UNION") {
				continue
			}
			next := sig[i+1]
			if next.IsKeyword("ALL") && i+2 < len(sig) {
				next = sig[i+2]
			}
			if !next.IsKeyword("SELECT") {
				continue
			}
			m := span(doc, sig[i])
			m.Message = "UNION SELECT can graft attacker-chosen rows onto the result"
			m.StatementKind = kind
			m.ReferencedNames = refs
			m.ExactMatch = true
			out = append(out, m)
		}

		if !st.Terminated || len(sig) == 0 {
			continue
		}
		termLine := sig[len(sig)-1].Line
		if si+1 >= len(stmts) {
			continue
		}
		next := &stmts[si+1]

		// A -- comment immediately after the terminator hides trailing SQL.
		for _, t := range next.Tokens {
			if t.Kind == tokenizer.TokenWhitespace {
				continue
			}
			if t.Kind == tokenizer.TokenComment && strings.HasPrefix(t.Text, "--") && t.Line == termLine {
				m := span(doc, t)
				m.Message = "line comment directly after ';' is a classic injection tail"
				m.StatementKind = kind
				m.ExactMatch = true
				out = append(out, m)
			}
			break
		}

		// DROP/DELETE stacked on the same line as the previous terminator.
		if lead := next.LeadingKeyword(); (lead == "DROP" || lead == "DELETE") && next.StartLine == termLine {
			nsig := next.Significant()
			m := span(doc, nsig[0])
			m.Message = lead + " stacked after ';' on the same line suggests an injected statement"
			m.StatementKind = lead
			m.ReferencedNames = referencedTables(nsig)
			m.ExactMatch = true
			out = append(out, m)
		}
	}
	return out
}

// isOneLiteral matches the literal 1 and its quoted forms '1' and "1".
func isOneLiteral(t tokenizer.Token) bool {
	if t.Kind != tokenizer.TokenLiteral {
		return false
	}
	return strings.Trim(t.Text, `'"`) == "1"
}
