package dialect

import (
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// commonReserved are keywords reserved in essentially every SQL dialect.
// Dialect lists below extend this base instead of repeating it.
var commonReserved = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "FROM", "WHERE", "JOIN",
	"INNER", "OUTER", "LEFT", "RIGHT", "CROSS", "ON", "AND", "OR", "NOT",
	"NULL", "IS", "IN", "EXISTS", "BETWEEN", "LIKE", "ORDER", "GROUP",
	"BY", "HAVING", "LIMIT", "OFFSET", "UNION", "ALL", "DISTINCT", "AS",
	"CREATE", "DROP", "ALTER", "TABLE", "INDEX", "VIEW", "INTO", "VALUES",
	"SET", "PRIMARY", "FOREIGN", "KEY", "REFERENCES", "CONSTRAINT",
	"UNIQUE", "DEFAULT", "CHECK", "CASE", "WHEN", "THEN", "ELSE", "END",
	"GRANT", "REVOKE", "TRUNCATE", "DESC", "ASC", "COLUMN", "USER",
	"TO", "WITH",
}

func merge(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

func genericProfile() Profile {
	return NewProfile(types.DialectGeneric, tokenizer.DefaultOptions(), commonReserved, nil)
}

func mysqlProfile() Profile {
	opts := tokenizer.Options{
		DoubleQuoteIsIdentifier: false, // ANSI_QUOTES off by default
		BacktickIdentifiers:     true,
		HashLineComments:        true,
		BackslashEscapes:        true,
	}
	reserved := merge(commonReserved,
		"DATABASES", "SCHEMAS", "SHOW", "EXPLAIN", "STRAIGHT_JOIN",
		"SQL_CALC_FOUND_ROWS", "LOCK", "UNLOCK", "REPLACE", "IGNORE",
		"FULLTEXT", "SPATIAL", "UNSIGNED", "ZEROFILL", "AUTO_INCREMENT",
		"ENGINE", "CHARSET", "COLLATE", "BINARY", "VARBINARY", "TINYINT",
		"MEDIUMINT", "BIGINT", "LONGTEXT", "MEDIUMTEXT", "TINYTEXT",
		"ENUM", "DIV", "XOR", "RLIKE", "REGEXP", "INTERVAL", "SEPARATOR",
		"PARTITION", "RANGE", "KILL",
	)
	patterns := []Pattern{
		{
			ID:       "mysql.myisam-engine",
			Expr:     `(?i)\bENGINE\s*=\s*MyISAM\b`,
			Message:  "MyISAM engine does not support transactions or foreign keys; prefer InnoDB",
			Category: types.CategoryBestPractice,
			Severity: types.SeverityMedium,
		},
		{
			ID:       "mysql.sql-calc-found-rows",
			Expr:     `(?i)\bSQL_CALC_FOUND_ROWS\b`,
			Message:  "SQL_CALC_FOUND_ROWS forces a full scan; issue a separate COUNT query instead",
			Category: types.CategoryPerformance,
			Severity: types.SeverityMedium,
		},
	}
	return NewProfile(types.DialectMySQL, opts, reserved, patterns)
}

func postgresProfile() Profile {
	opts := tokenizer.Options{
		DoubleQuoteIsIdentifier: true,
		BacktickIdentifiers:     false,
		HashLineComments:        false,
		BackslashEscapes:        false, // standard_conforming_strings
	}
	reserved := merge(commonReserved,
		"ANALYZE", "ANALYSE", "ARRAY", "CONCURRENTLY", "CURRENT_CATALOG",
		"CURRENT_ROLE", "CURRENT_SCHEMA", "DEFERRABLE", "DO", "FETCH",
		"ILIKE", "INITIALLY", "LATERAL", "LEADING", "LOCALTIME",
		"LOCALTIMESTAMP", "ONLY", "OVERLAPS", "PLACING", "RETURNING",
		"SESSION_USER", "SIMILAR", "SYMMETRIC", "TABLESAMPLE", "TRAILING",
		"VARIADIC", "VERBOSE", "WINDOW", "SERIAL", "BIGSERIAL",
	)
	patterns := []Pattern{
		{
			ID:       "postgres.money-type",
			Expr:     `(?i)\bMONEY\b`,
			Message:  "the MONEY type has locale-dependent formatting; prefer NUMERIC for currency",
			Category: types.CategoryBestPractice,
			Severity: types.SeverityLow,
		},
		{
			ID:       "postgres.delete-only-vacuum",
			Expr:     `(?i)\bVACUUM\s+FULL\b`,
			Message:  "VACUUM FULL takes an exclusive lock on the table; plain VACUUM usually suffices",
			Category: types.CategoryPerformance,
			Severity: types.SeverityMedium,
		},
	}
	return NewProfile(types.DialectPostgres, opts, reserved, patterns)
}

func sqliteProfile() Profile {
	opts := tokenizer.Options{
		DoubleQuoteIsIdentifier: true,
		BacktickIdentifiers:     true,
		BracketIdentifiers:      true,
		HashLineComments:        false,
		BackslashEscapes:        false,
	}
	reserved := merge(commonReserved,
		"ABORT", "ATTACH", "DETACH", "AUTOINCREMENT", "CONFLICT",
		"DEFERRED", "EXCLUSIVE", "GLOB", "IMMEDIATE", "INDEXED", "INSTEAD",
		"ISNULL", "NOTNULL", "PLAN", "PRAGMA", "QUERY", "RAISE", "REINDEX",
		"TEMP", "TEMPORARY", "VACUUM", "VIRTUAL", "WITHOUT", "ROWID",
	)
	patterns := []Pattern{
		{
			ID:       "sqlite.pragma-in-script",
			Expr:     `(?i)^\s*PRAGMA\s+`,
			Message:  "PRAGMA statements are connection-scoped and easy to lose in migration scripts",
			Category: types.CategoryBestPractice,
			Severity: types.SeverityInfo,
		},
	}
	return NewProfile(types.DialectSQLite, opts, reserved, patterns)
}

func sqlserverProfile() Profile {
	opts := tokenizer.Options{
		DoubleQuoteIsIdentifier: true, // QUOTED_IDENTIFIER on by default
		BacktickIdentifiers:     false,
		BracketIdentifiers:      true,
		HashLineComments:        false,
		BackslashEscapes:        false,
	}
	reserved := merge(commonReserved,
		"TOP", "NOLOCK", "READPAST", "ROWLOCK", "TABLOCK", "HOLDLOCK",
		"IDENTITY", "CLUSTERED", "NONCLUSTERED", "NVARCHAR", "NTEXT",
		"DATETIME2", "DATETIMEOFFSET", "SMALLDATETIME", "UNIQUEIDENTIFIER",
		"MERGE", "OUTPUT", "PIVOT", "UNPIVOT", "APPLY", "GO", "EXEC",
		"EXECUTE", "PROC", "PROCEDURE",
	)
	patterns := []Pattern{
		{
			ID:       "sqlserver.nolock-hint",
			Expr:     `(?i)\bWITH\s*\(\s*NOLOCK\s*\)`,
			Message:  "NOLOCK reads uncommitted data and can return duplicate or missing rows",
			Category: types.CategoryLogic,
			Severity: types.SeverityHigh,
		},
		{
			ID:       "sqlserver.select-top-no-order",
			Expr:     `(?i)\bSELECT\s+TOP\b`,
			Message:  "SELECT TOP without ORDER BY returns nondeterministic rows",
			Category: types.CategoryLogic,
			Severity: types.SeverityMedium,
		},
	}
	return NewProfile(types.DialectSQLServer, opts, reserved, patterns)
}

func oracleProfile() Profile {
	opts := tokenizer.Options{
		DoubleQuoteIsIdentifier: true,
		BacktickIdentifiers:     false,
		BracketIdentifiers:      false,
		HashLineComments:        false,
		BackslashEscapes:        false,
	}
	reserved := merge(commonReserved,
		"ROWNUM", "ROWID", "SYSDATE", "SYSTIMESTAMP", "DUAL", "MINUS",
		"CONNECT", "START", "PRIOR", "LEVEL", "VARCHAR2", "NVARCHAR2",
		"NUMBER", "CLOB", "NCLOB", "BFILE", "RAW", "LONG", "SEQUENCE",
		"NEXTVAL", "CURRVAL", "SYNONYM", "TABLESPACE", "PCTFREE",
	)
	patterns := []Pattern{
		{
			ID:       "oracle.rownum-pagination",
			Expr:     `(?i)\bROWNUM\s*[<>=]`,
			Message:  "ROWNUM pagination breaks with ORDER BY; use OFFSET ... FETCH on 12c+",
			Category: types.CategoryBestPractice,
			Severity: types.SeverityLow,
		},
	}
	return NewProfile(types.DialectOracle, opts, reserved, patterns)
}

// DefaultRegistry returns the built-in registry covering all known dialects.
func DefaultRegistry() *Registry {
	return NewRegistry(
		mysqlProfile(),
		postgresProfile(),
		sqliteProfile(),
		sqlserverProfile(),
		oracleProfile(),
	)
}
