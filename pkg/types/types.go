package types

import (
	"encoding/json"
	"strings"
)

// Dialect identifies the SQL variant under analysis. It only selects which
// dialect-specific pattern subset (reserved words, quote characters, extra
// syntax patterns) the rule engine consults; the core never executes SQL.
type Dialect int32

const (
	DialectGeneric   Dialect = 0
	DialectMySQL     Dialect = 1
	DialectPostgres  Dialect = 2
	DialectSQLite    Dialect = 3
	DialectSQLServer Dialect = 4
	DialectOracle    Dialect = 5
)

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "MYSQL"
	case DialectPostgres:
		return "POSTGRES"
	case DialectSQLite:
		return "SQLITE"
	case DialectSQLServer:
		return "SQLSERVER"
	case DialectOracle:
		return "ORACLE"
	default:
		return "GENERIC"
	}
}

// ParseDialect maps a user-supplied name to a Dialect. Unknown names fall
// back to the generic profile rather than failing.
func ParseDialect(s string) Dialect {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MYSQL", "MARIADB":
		return DialectMySQL
	case "POSTGRES", "POSTGRESQL":
		return DialectPostgres
	case "SQLITE", "SQLITE3":
		return DialectSQLite
	case "MSSQL", "SQLSERVER":
		return DialectSQLServer
	case "ORACLE":
		return DialectOracle
	default:
		return DialectGeneric
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Dialect
func (d *Dialect) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*d = ParseDialect(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Dialect
func (d *Dialect) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDialect(s)
	return nil
}

// MarshalJSON implements json.Marshaler for Dialect
func (d Dialect) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML implements yaml.Marshaler for Dialect
func (d Dialect) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Severity ranks findings. Values are ordered so that a larger value is
// always more severe, which keeps severity-descending sorts a plain integer
// comparison.
type Severity int32

const (
	SeverityInfo     Severity = 1
	SeverityLow      Severity = 2
	SeverityMedium   Severity = 3
	SeverityHigh     Severity = 4
	SeverityCritical Severity = 5
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a name to a Severity, defaulting to INFO.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Severity
func (s *Severity) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	*s = ParseSeverity(str)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ParseSeverity(str)
	return nil
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML implements yaml.Marshaler for Severity
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Category classifies findings into a closed set.
type Category int32

const (
	CategorySyntax       Category = 1
	CategoryPerformance  Category = 2
	CategorySecurity     Category = 3
	CategoryLogic        Category = 4
	CategoryNaming       Category = 5
	CategoryBestPractice Category = 6
)

// Categories lists every category in declaration order, for iteration.
func Categories() []Category {
	return []Category{
		CategorySyntax,
		CategoryPerformance,
		CategorySecurity,
		CategoryLogic,
		CategoryNaming,
		CategoryBestPractice,
	}
}

func (c Category) String() string {
	switch c {
	case CategorySyntax:
		return "syntax"
	case CategoryPerformance:
		return "performance"
	case CategorySecurity:
		return "security"
	case CategoryLogic:
		return "logic"
	case CategoryNaming:
		return "naming"
	case CategoryBestPractice:
		return "best-practice"
	default:
		return "unknown"
	}
}

// ParseCategory maps a name to a Category, defaulting to best-practice.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "syntax":
		return CategorySyntax
	case "performance":
		return CategoryPerformance
	case "security":
		return CategorySecurity
	case "logic":
		return CategoryLogic
	case "naming":
		return CategoryNaming
	default:
		return CategoryBestPractice
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Category
func (c *Category) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*c = ParseCategory(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Category
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseCategory(s)
	return nil
}

// MarshalJSON implements json.Marshaler for Category
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// MarshalYAML implements yaml.Marshaler for Category
func (c Category) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
