package rules

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlinsight/sqlinsight/pkg/dialect"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

func scanGeneric(t *testing.T, sql string) []types.Finding {
	t.Helper()
	profile := dialect.DefaultRegistry().Lookup(types.DialectGeneric)
	reg, err := DefaultRegistry(profile)
	require.NoError(t, err)
	eng := NewEngine(reg, nil)
	return eng.Scan(tokenizer.NewDocument(sql, profile.ScanOptions))
}

func byID(findings []types.Finding, id string) []types.Finding {
	var out []types.Finding
	for _, f := range findings {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}

func TestSelectStarWithoutTerminator(t *testing.T) {
	findings := scanGeneric(t, "SELECT * FROM users")
	require.Len(t, findings, 2)

	// Severity-descending order puts the MEDIUM performance finding first.
	assert.Equal(t, "performance.select-star", findings[0].ID)
	assert.Equal(t, types.SeverityMedium, findings[0].Severity)
	assert.Equal(t, types.CategoryPerformance, findings[0].Category)
	assert.Contains(t, findings[0].Message, "neither WHERE nor LIMIT")

	assert.Equal(t, "syntax.missing-terminator", findings[1].ID)
	assert.Equal(t, types.SeverityLow, findings[1].Severity)
	assert.Equal(t, types.CategorySyntax, findings[1].Category)
}

func TestSelectStarOncePerStatement(t *testing.T) {
	findings := scanGeneric(t, "SELECT * FROM (SELECT * FROM t WHERE x = 1) sub;")
	assert.Len(t, byID(findings, "performance.select-star"), 1)
}

func TestSelectStarMessageVariants(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM t;", "neither WHERE nor LIMIT"},
		{"SELECT * FROM t LIMIT 5;", "no WHERE clause"},
		{"SELECT * FROM t WHERE id = 3;", "no LIMIT clause"},
	}
	for _, tt := range tests {
		findings := scanGeneric(t, tt.sql)
		stars := byID(findings, "performance.select-star")
		require.Len(t, stars, 1, tt.sql)
		assert.Contains(t, stars[0].Message, tt.want, tt.sql)
	}
}

func TestDeleteWithoutWhere(t *testing.T) {
	findings := scanGeneric(t, "DELETE FROM t")

	var critical []types.Finding
	for _, f := range findings {
		if f.Severity == types.SeverityCritical {
			critical = append(critical, f)
		}
	}
	require.Len(t, critical, 1)
	assert.Equal(t, "logic.missing-where", critical[0].ID)
	assert.Equal(t, types.CategoryLogic, critical[0].Category)
	assert.Contains(t, critical[0].Message, "WHERE")
	require.NotNil(t, critical[0].Fix)
	assert.Contains(t, critical[0].Fix.Replacement, "WHERE <condition>")
}

func TestUpdateWithoutWhere(t *testing.T) {
	findings := scanGeneric(t, "UPDATE accounts SET balance = 0;")
	hits := byID(findings, "logic.missing-where")
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Message, "UPDATE")
}

func TestWhereClausePresentIsClean(t *testing.T) {
	for _, sql := range []string{
		"DELETE FROM t WHERE id = 4;",
		"UPDATE t SET a = 1 WHERE id = 4;",
	} {
		findings := scanGeneric(t, sql)
		assert.Empty(t, byID(findings, "logic.missing-where"), sql)
	}
}

func TestNullComparison(t *testing.T) {
	tests := []struct {
		sql     string
		hits    int
		replace string
	}{
		{"SELECT id FROM t WHERE a = NULL;", 1, "IS NULL"},
		{"SELECT id FROM t WHERE a != NULL;", 1, "IS NOT NULL"},
		{"SELECT id FROM t WHERE a <> NULL;", 1, "IS NOT NULL"},
		{"SELECT id FROM t WHERE NULL = a;", 1, "IS NULL"},
		{"SELECT id FROM t WHERE a IS NULL;", 0, ""},
		// SET assignments are legal; only the WHERE side is checked.
		{"UPDATE t SET a = NULL WHERE id = 1;", 0, ""},
		{"UPDATE t SET a = NULL WHERE b = NULL;", 1, "IS NULL"},
		{"UPDATE t SET a = NULL;", 0, ""},
	}
	for _, tt := range tests {
		findings := scanGeneric(t, tt.sql)
		hits := byID(findings, "logic.null-comparison")
		require.Len(t, hits, tt.hits, tt.sql)
		if tt.hits > 0 {
			assert.Equal(t, types.SeverityHigh, hits[0].Severity, tt.sql)
			require.NotNil(t, hits[0].Fix, tt.sql)
			assert.Equal(t, tt.replace, hits[0].Fix.Replacement, tt.sql)
		}
	}
}

func TestInjectionPatterns(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"or tautology", "SELECT * FROM users WHERE name = 'x' OR 1=1;", "tautology"},
		{"quoted tautology", "SELECT * FROM users WHERE name = 'x' OR '1'='1';", "tautology"},
		{"union graft", "SELECT id FROM t UNION SELECT password FROM users;", "UNION SELECT"},
		{"union all graft", "SELECT id FROM t UNION ALL SELECT password FROM users;", "UNION SELECT"},
		{"comment tail", "SELECT id FROM t WHERE id = 1; -- AND tenant_id = 4", "injection tail"},
		{"stacked drop", "SELECT 1; DROP TABLE users;", "stacked after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := scanGeneric(t, tt.sql)
			hits := byID(findings, "security.injection-pattern")
			require.NotEmpty(t, hits)
			assert.Equal(t, types.SeverityCritical, hits[0].Severity)
			assert.Equal(t, types.CategorySecurity, hits[0].Category)
			assert.Contains(t, hits[0].Message, tt.want)
		})
	}
}

func TestInjectionIgnoresSeparateLines(t *testing.T) {
	// Multi-statement scripts with statements on their own lines are normal.
	findings := scanGeneric(t, "SELECT 1;\nDROP TABLE scratch;\n")
	assert.Empty(t, byID(findings, "security.injection-pattern"))

	// A comment on its own line is documentation, not a tail.
	findings = scanGeneric(t, "SELECT id FROM t WHERE id = 1;\n-- cleanup below\n")
	assert.Empty(t, byID(findings, "security.injection-pattern"))
}

func TestUnbalancedDelimiters(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"missing closer", "SELECT COUNT( FROM t;", "missing 1 closing"},
		{"stray closer", "SELECT a) FROM t;", "without a matching opener"},
		{"open literal", "SELECT 'abc", "never closed"},
		{"open comment", "SELECT 1 /* trailing", "never closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := scanGeneric(t, tt.sql)
			hits := byID(findings, "syntax.unbalanced-delimiters")
			require.NotEmpty(t, hits)
			assert.Equal(t, types.SeverityHigh, hits[0].Severity)
			assert.Contains(t, hits[0].Message, tt.want)
		})
	}

	clean := scanGeneric(t, "SELECT COUNT(DISTINCT a), MAX(b) FROM t WHERE c IN (1, 2);")
	assert.Empty(t, byID(clean, "syntax.unbalanced-delimiters"))
}

func TestReservedKeywordIdentifier(t *testing.T) {
	findings := scanGeneric(t, "CREATE TABLE order (id INT);")
	hits := byID(findings, "naming.reserved-keyword")
	require.Len(t, hits, 1)
	assert.Equal(t, types.SeverityMedium, hits[0].Severity)
	assert.Equal(t, types.CategoryNaming, hits[0].Category)
	assert.Contains(t, hits[0].Message, `"order"`)

	// Quoting is the accepted escape hatch.
	quoted := scanGeneric(t, `SELECT id FROM "order";`)
	assert.Empty(t, byID(quoted, "naming.reserved-keyword"))

	// Ordinary names in name positions stay quiet.
	clean := scanGeneric(t, "SELECT id FROM orders;")
	assert.Empty(t, byID(clean, "naming.reserved-keyword"))
}

func TestMissingTerminatorOnlyForStatements(t *testing.T) {
	// A fragment that does not open with DML/DDL is left alone.
	findings := scanGeneric(t, "foo bar baz")
	assert.Empty(t, byID(findings, "syntax.missing-terminator"))

	findings = scanGeneric(t, "INSERT INTO t (a) VALUES (1)")
	assert.Len(t, byID(findings, "syntax.missing-terminator"), 1)

	findings = scanGeneric(t, "INSERT INTO t (a) VALUES (1);")
	assert.Empty(t, byID(findings, "syntax.missing-terminator"))
}

func TestFindingOrderAndDeterminism(t *testing.T) {
	sql := "SELECT * FROM a;\nDELETE FROM b;\nSELECT c FROM d WHERE e = NULL;\nUPDATE f SET g = 1\n"
	first := scanGeneric(t, sql)
	second := scanGeneric(t, sql)
	require.True(t, reflect.DeepEqual(first, second), "identical input must give identical output")

	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if prev.Severity == cur.Severity {
			assert.LessOrEqual(t, prev.Location.Line, cur.Location.Line)
			continue
		}
		assert.Greater(t, prev.Severity, cur.Severity)
	}

	for _, f := range first {
		assert.GreaterOrEqual(t, f.Confidence, 0.0)
		assert.LessOrEqual(t, f.Confidence, 1.0)
	}
}

func TestRegistryWithout(t *testing.T) {
	profile := dialect.DefaultRegistry().Lookup(types.DialectGeneric)
	reg, err := DefaultRegistry(profile)
	require.NoError(t, err)

	trimmed := reg.Without("performance.select-star")
	assert.Len(t, trimmed.Rules(), len(reg.Rules())-1)

	eng := NewEngine(trimmed, nil)
	findings := eng.Scan(tokenizer.NewDocument("SELECT * FROM t;", profile.ScanOptions))
	assert.Empty(t, byID(findings, "performance.select-star"))
}

func TestDialectPatternRule(t *testing.T) {
	profile := dialect.DefaultRegistry().Lookup(types.DialectMySQL)
	reg, err := DefaultRegistry(profile)
	require.NoError(t, err)
	eng := NewEngine(reg, nil)

	doc := tokenizer.NewDocument("CREATE TABLE t (id INT) ENGINE=MyISAM;", profile.ScanOptions)
	findings := eng.Scan(doc)
	hits := byID(findings, "mysql.myisam-engine")
	require.Len(t, hits, 1)
	assert.Equal(t, types.CategoryBestPractice, hits[0].Category)
	assert.Contains(t, hits[0].Location.LineText, "MyISAM")
}

func TestFromPatternRejectsBadExpr(t *testing.T) {
	_, err := FromPattern(dialect.Pattern{ID: "x", Expr: "("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile pattern")
}

func TestCommentOnlyLinesAreSkipped(t *testing.T) {
	findings := scanGeneric(t, "-- DELETE FROM t\n/* SELECT * FROM x */\n")
	assert.Empty(t, findings)
}
