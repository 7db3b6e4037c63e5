// Package catalog builds a normalized table/column model out of CREATE TABLE
// statements. It is deliberately permissive: malformed clauses are skipped
// and recorded as warnings, and a CREATE TABLE that cannot be parsed at all
// still registers a zero-column table so relationship inference can refer to
// the name.
package catalog

import "strings"

// Column is one declared column. Nullable defaults to true; NOT NULL and
// PRIMARY KEY clear it.
type Column struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Nullable     bool   `json:"nullable" yaml:"nullable"`
	IsPrimaryKey bool   `json:"isPrimaryKey" yaml:"isPrimaryKey"`
	IsForeignKey bool   `json:"isForeignKey" yaml:"isForeignKey"`
	RefTable     string `json:"refTable,omitempty" yaml:"refTable,omitempty"`
	RefColumn    string `json:"refColumn,omitempty" yaml:"refColumn,omitempty"`
	Default      string `json:"default,omitempty" yaml:"default,omitempty"`
}

// ForeignKey is one declared reference, column-level or table-level.
type ForeignKey struct {
	Column    string `json:"column" yaml:"column"`
	RefTable  string `json:"refTable" yaml:"refTable"`
	RefColumn string `json:"refColumn" yaml:"refColumn"`
}

// Table is one extracted table. It is owned by the analysis run that built
// it and never shared across runs.
type Table struct {
	Name        string       `json:"name" yaml:"name"`
	Columns     []Column     `json:"columns" yaml:"columns"`
	PrimaryKey  []string     `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty" yaml:"foreignKeys,omitempty"`
	Line        int          `json:"line" yaml:"line"`
}

// Column returns the named column, case-insensitive, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasPrimaryKey reports whether any primary-key column is declared.
func (t *Table) HasPrimaryKey() bool { return len(t.PrimaryKey) > 0 }

// IsPrimaryKeyColumn reports whether name is one of the table's primary-key
// columns, case-insensitive.
func (t *Table) IsPrimaryKeyColumn(name string) bool {
	for _, pk := range t.PrimaryKey {
		if strings.EqualFold(pk, name) {
			return true
		}
	}
	return false
}

// Warning records a clause the builder had to skip. Warnings are data for
// the caller, never a reason to abort the build.
type Warning struct {
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Clause string `json:"clause,omitempty" yaml:"clause,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

// Catalog is the set of tables one build produced, in statement order.
type Catalog struct {
	Tables   []Table   `json:"tables" yaml:"tables"`
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	index map[string]int
}

// Table returns the named table, case-insensitive, or nil.
func (c *Catalog) Table(name string) *Table {
	if i, ok := c.index[strings.ToLower(name)]; ok {
		return &c.Tables[i]
	}
	return nil
}

// TableNames returns the table names in extraction order.
func (c *Catalog) TableNames() []string {
	out := make([]string, len(c.Tables))
	for i := range c.Tables {
		out[i] = c.Tables[i].Name
	}
	return out
}

func (c *Catalog) add(t Table) {
	key := strings.ToLower(t.Name)
	if i, ok := c.index[key]; ok {
		// Re-declaration: last definition wins, mirroring script execution.
		c.Tables[i] = t
		return
	}
	c.index[key] = len(c.Tables)
	c.Tables = append(c.Tables, t)
}

func (c *Catalog) warn(w Warning) {
	c.Warnings = append(c.Warnings, w)
}

// TypeClass groups declared types for foreign-key compatibility checks.
// Only the integer and string families ever match; everything else is
// ClassOther and never compatible.
type TypeClass int32

const (
	ClassOther TypeClass = iota
	ClassInteger
	ClassString
)

func (tc TypeClass) String() string {
	switch tc {
	case ClassInteger:
		return "integer"
	case ClassString:
		return "string"
	}
	return "other"
}

var integerTypes = map[string]struct{}{
	"INT": {}, "INTEGER": {}, "BIGINT": {}, "SMALLINT": {}, "TINYINT": {},
	"MEDIUMINT": {}, "SERIAL": {}, "BIGSERIAL": {}, "SMALLSERIAL": {},
	"INT2": {}, "INT4": {}, "INT8": {}, "NUMBER": {},
}

var stringTypes = map[string]struct{}{
	"CHAR": {}, "VARCHAR": {}, "VARCHAR2": {}, "NCHAR": {}, "NVARCHAR": {},
	"NVARCHAR2": {}, "TEXT": {}, "TINYTEXT": {}, "MEDIUMTEXT": {},
	"LONGTEXT": {}, "CLOB": {}, "NCLOB": {}, "UUID": {}, "CHARACTER": {},
}

// TypeClassOf classifies a declared type string such as "VARCHAR(255)" or
// "bigint unsigned" by its base word.
func TypeClassOf(declared string) TypeClass {
	base := strings.ToUpper(strings.TrimSpace(declared))
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}
	if _, ok := integerTypes[base]; ok {
		return ClassInteger
	}
	if _, ok := stringTypes[base]; ok {
		return ClassString
	}
	return ClassOther
}

// Compatible reports whether two declared types may participate in the same
// inferred foreign key.
func Compatible(a, b string) bool {
	ca, cb := TypeClassOf(a), TypeClassOf(b)
	return ca != ClassOther && ca == cb
}
