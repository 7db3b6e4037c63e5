package rules

import (
	"fmt"
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/dialect"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// NewKeywordIdentifierRule flags reserved words used as bare object names.
// Only name positions are checked (the token after TABLE, FROM, INTO, JOIN
// or UPDATE), so type keywords and functions do not trip it. Quoted
// identifiers are exempt: quoting is the accepted escape hatch.
func NewKeywordIdentifierRule(profile dialect.Profile) Rule {
	return Rule{
		ID:       "naming.reserved-keyword",
		Category: types.CategoryNaming,
		Severity: types.SeverityMedium,
		Message:  "reserved keyword used as an identifier",
		Kind:     confidence.KindTokenScan,
		Matcher: MatcherFunc(func(doc *tokenizer.Document) []Match {
			return matchKeywordIdentifier(doc, profile)
		}),
	}
}

var namePositionKeywords = []string{"TABLE", "FROM", "INTO", "JOIN", "UPDATE"}

func matchKeywordIdentifier(doc *tokenizer.Document, profile dialect.Profile) []Match {
	var out []Match
	for si := range doc.Statements {
		st := &doc.Statements[si]
		if st.Empty {
			continue
		}
		sig := st.Significant()
		for i := 1; i < len(sig); i++ {
			if !isNamePosition(sig[i-1]) {
				continue
			}
			t := sig[i]
			if t.Kind != tokenizer.TokenKeyword && t.Kind != tokenizer.TokenIdentifier {
				continue
			}
			if isQuotedIdentifier(t.Text) || !profile.IsReserved(t.Text) {
				continue
			}
			m := span(doc, t)
			m.Message = fmt.Sprintf("reserved keyword %q used as an identifier; rename or quote it", t.Text)
			m.StatementKind = st.LeadingKeyword()
			m.ReferencedNames = []string{t.Text}
			m.ExactMatch = true
			m.Fix = &types.SuggestedFix{
				Original:    t.Text,
				Replacement: quoteFor(profile) + t.Text + closeQuoteFor(profile),
				Rationale:   "quoting keeps the name legal but renaming avoids the trap entirely",
			}
			out = append(out, m)
		}
	}
	return out
}

func isNamePosition(t tokenizer.Token) bool {
	for _, kw := range namePositionKeywords {
		if t.IsKeyword(kw) {
			return true
		}
	}
	return false
}

func isQuotedIdentifier(text string) bool {
	return strings.HasPrefix(text, `"`) || strings.HasPrefix(text, "`") || strings.HasPrefix(text, "[")
}

func quoteFor(p dialect.Profile) string {
	switch {
	case p.ScanOptions.BacktickIdentifiers && !p.ScanOptions.DoubleQuoteIsIdentifier:
		return "`"
	case p.ScanOptions.BracketIdentifiers && !p.ScanOptions.DoubleQuoteIsIdentifier:
		return "["
	default:
		return `"`
	}
}

func closeQuoteFor(p dialect.Profile) string {
	q := quoteFor(p)
	if q == "[" {
		return "]"
	}
	return q
}
