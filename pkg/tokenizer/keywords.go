package tokenizer

import "strings"

// sqlKeywords is the dialect-neutral keyword set the scanner classifies
// against. Dialect-specific reserved-word lists live in the dialect profiles;
// this set only has to be broad enough for statement-boundary and clause
// detection, not for full grammar coverage.
var sqlKeywords = map[string]struct{}{
	"ADD": {}, "ALL": {}, "ALTER": {}, "AND": {}, "AS": {}, "ASC": {},
	"AUTO_INCREMENT": {}, "BEGIN": {}, "BETWEEN": {}, "BY": {}, "CASCADE": {},
	"CASE": {}, "CHECK": {}, "COLUMN": {}, "COMMIT": {}, "CONSTRAINT": {},
	"CREATE": {}, "CROSS": {}, "DATABASE": {}, "DEFAULT": {}, "DELETE": {},
	"DESC": {}, "DISTINCT": {}, "DROP": {}, "ELSE": {}, "END": {}, "EXCEPT": {},
	"EXISTS": {}, "FOREIGN": {}, "FROM": {}, "FULL": {}, "GRANT": {},
	"GROUP": {}, "HAVING": {}, "IF": {}, "IN": {}, "INDEX": {}, "INNER": {},
	"INSERT": {}, "INTERSECT": {}, "INTO": {}, "IS": {}, "JOIN": {}, "KEY": {},
	"LEFT": {}, "LIKE": {}, "LIMIT": {}, "MERGE": {}, "NOT": {}, "NULL": {},
	"OFFSET": {}, "ON": {}, "OR": {}, "ORDER": {}, "OUTER": {}, "PRIMARY": {},
	"PROCEDURE": {}, "REFERENCES": {}, "REPLACE": {}, "RESTRICT": {},
	"REVOKE": {}, "RIGHT": {}, "ROLLBACK": {}, "SCHEMA": {}, "SELECT": {},
	"SET": {}, "TABLE": {}, "THEN": {}, "TRIGGER": {}, "TRUNCATE": {},
	"UNION": {}, "UNIQUE": {}, "UPDATE": {}, "USING": {}, "VALUES": {},
	"VIEW": {}, "WHEN": {}, "WHERE": {}, "WITH": {},
}

// IsKeyword reports whether word is in the scanner's keyword set,
// case-insensitive.
func IsKeyword(word string) bool {
	_, ok := sqlKeywords[strings.ToUpper(word)]
	return ok
}

// dmlDDLStarters are the keywords that may legally begin a data-manipulation
// or data-definition statement. The missing-terminator rule only fires for
// statements opening with one of these.
var dmlDDLStarters = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "CREATE": {},
	"DROP": {}, "ALTER": {}, "TRUNCATE": {}, "MERGE": {}, "REPLACE": {},
	"GRANT": {}, "REVOKE": {},
}

// IsDMLDDLStarter reports whether kw begins a DML or DDL statement.
func IsDMLDDLStarter(kw string) bool {
	_, ok := dmlDDLStarters[strings.ToUpper(kw)]
	return ok
}
