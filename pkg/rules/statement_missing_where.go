package rules

import (
	"fmt"
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// NewMissingWhereRule flags DELETE and UPDATE statements with no WHERE
// clause. Without one the statement rewrites or removes every row, so the
// finding is critical.
func NewMissingWhereRule() Rule {
	return Rule{
		ID:       "logic.missing-where",
		Category: types.CategoryLogic,
		Severity: types.SeverityCritical,
		Message:  "statement without WHERE affects every row in the table",
		Kind:     confidence.KindTokenScan,
		Matcher:  MatcherFunc(matchMissingWhere),
	}
}

func matchMissingWhere(doc *tokenizer.Document) []Match {
	var out []Match
	for si := range doc.Statements {
		st := &doc.Statements[si]
		lead := st.LeadingKeyword()
		if lead != "DELETE" && lead != "UPDATE" {
			continue
		}
		if st.HasKeyword("WHERE") {
			continue
		}
		sig := st.Significant()
		m := span(doc, sig[0])
		m.Message = fmt.Sprintf("%s without WHERE affects every row in the table", lead)
		m.StatementKind = lead
		m.ReferencedNames = referencedTables(sig)
		m.ExactMatch = true

		line := strings.TrimSpace(m.LineText)
		fixed := strings.TrimSuffix(line, ";")
		terminator := ""
		if fixed != line {
			terminator = ";"
		}
		m.Fix = &types.SuggestedFix{
			Original:    line,
			Replacement: fixed + " WHERE <condition>" + terminator,
			Rationale:   "a WHERE clause restricts the statement to the rows it is meant to touch",
		}
		out = append(out, m)
	}
	return out
}
