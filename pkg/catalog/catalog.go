package catalog

import (
	"fmt"
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
)

// Build extracts every CREATE TABLE statement into the catalog. Statements
// that are not CREATE TABLE are ignored; a CREATE TABLE whose body cannot be
// parsed still registers a zero-column table so relationship inference can
// reference the name.
func Build(stmts []tokenizer.Statement) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for i := range stmts {
		st := &stmts[i]
		if st.Empty {
			continue
		}
		sig := st.Significant()
		if !isCreateTable(sig) {
			continue
		}
		buildTable(c, sig)
	}
	return c
}

// isCreateTable reports whether the statement opens with CREATE ... TABLE,
// allowing modifiers such as TEMPORARY between the two keywords.
func isCreateTable(sig []tokenizer.Token) bool {
	if len(sig) < 2 || !sig[0].IsKeyword("CREATE") {
		return false
	}
	for _, t := range sig[1:] {
		if t.IsKeyword("TABLE") {
			return true
		}
		if t.Kind != tokenizer.TokenKeyword && t.Kind != tokenizer.TokenIdentifier {
			return false
		}
	}
	return false
}

func buildTable(c *Catalog, sig []tokenizer.Token) {
	table := Table{Line: sig[0].Line}

	// Position after the TABLE keyword.
	pos := 0
	for i, t := range sig {
		if t.IsKeyword("TABLE") {
			pos = i + 1
			break
		}
	}

	// Optional IF NOT EXISTS.
	if pos+2 < len(sig) && sig[pos].IsKeyword("IF") && sig[pos+1].IsKeyword("NOT") && sig[pos+2].IsKeyword("EXISTS") {
		pos += 3
	}

	name, pos := readQualifiedName(sig, pos)
	if name == "" {
		c.warn(Warning{Line: table.Line, Reason: "CREATE TABLE without a table name"})
		return
	}
	table.Name = name

	body, ok := parenBody(sig, pos)
	if !ok {
		// Body missing or never opened: register the bare table.
		c.warn(Warning{Table: name, Line: table.Line, Reason: "CREATE TABLE body could not be located"})
		c.add(table)
		return
	}

	for _, clause := range splitTopLevel(body) {
		if len(clause) == 0 {
			continue
		}
		if err := applyClause(&table, clause); err != nil {
			c.warn(Warning{
				Table:  name,
				Line:   clause[0].Line,
				Clause: clauseText(clause),
				Reason: err.Error(),
			})
		}
	}
	c.add(table)
}

// readQualifiedName reads an optionally schema-qualified identifier starting
// at pos and returns the unqualified name plus the position after it. Keyword
// tokens are accepted as names; people do name tables "order".
func readQualifiedName(sig []tokenizer.Token, pos int) (string, int) {
	if pos >= len(sig) {
		return "", pos
	}
	t := sig[pos]
	if t.Kind != tokenizer.TokenIdentifier && t.Kind != tokenizer.TokenKeyword {
		return "", pos
	}
	name := trimIdentifier(t.Text)
	pos++
	for pos+1 < len(sig) && sig[pos].IsPunct(".") {
		name = trimIdentifier(sig[pos+1].Text)
		pos += 2
	}
	return name, pos
}

// parenBody returns the tokens between the first "(" at pos and its matching
// close, exclusive. ok is false when no body opens before the statement ends.
func parenBody(sig []tokenizer.Token, pos int) ([]tokenizer.Token, bool) {
	for pos < len(sig) && !sig[pos].IsPunct("(") {
		pos++
	}
	if pos >= len(sig) {
		return nil, false
	}
	depth := 0
	start := pos + 1
	for i := pos; i < len(sig); i++ {
		switch {
		case sig[i].IsPunct("("):
			depth++
		case sig[i].IsPunct(")"):
			depth--
			if depth == 0 {
				return sig[start:i], true
			}
		}
	}
	// Unterminated body: everything to end-of-statement is the best guess.
	return sig[start:], true
}

// splitTopLevel splits body tokens on commas at parenthesis depth zero, so
// DECIMAL(10,2) and composite key lists survive intact.
func splitTopLevel(body []tokenizer.Token) [][]tokenizer.Token {
	var out [][]tokenizer.Token
	depth := 0
	start := 0
	for i, t := range body {
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			if depth > 0 {
				depth--
			}
		case t.IsPunct(",") && depth == 0:
			out = append(out, body[start:i])
			start = i + 1
		}
	}
	if start < len(body) {
		out = append(out, body[start:])
	}
	return out
}

func clauseText(clause []tokenizer.Token) string {
	parts := make([]string, len(clause))
	for i, t := range clause {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// applyClause classifies one comma-separated clause as a table-level
// constraint or a column definition and folds it into the table.
func applyClause(t *Table, clause []tokenizer.Token) error {
	head := clause[0]
	switch {
	case head.IsKeyword("CONSTRAINT"):
		// CONSTRAINT <name> <definition>: drop the name, re-classify.
		if len(clause) < 3 {
			return fmt.Errorf("dangling CONSTRAINT clause")
		}
		return applyClause(t, clause[2:])

	case head.IsKeyword("PRIMARY"):
		cols, err := namesInParens(clause, "PRIMARY KEY")
		if err != nil {
			return err
		}
		for _, name := range cols {
			if !t.IsPrimaryKeyColumn(name) {
				t.PrimaryKey = append(t.PrimaryKey, name)
			}
			if col := t.Column(name); col != nil {
				col.IsPrimaryKey = true
				col.Nullable = false
			}
		}
		return nil

	case head.IsKeyword("FOREIGN"):
		return applyForeignKey(t, clause)

	case head.IsKeyword("UNIQUE"), head.IsKeyword("CHECK"),
		head.IsKeyword("KEY"), head.IsKeyword("INDEX"):
		// Recognized constraints with no effect on the relationship model.
		return nil

	default:
		return applyColumn(t, clause)
	}
}

// namesInParens extracts identifier names from the first parenthesized group
// in the clause.
func namesInParens(clause []tokenizer.Token, what string) ([]string, error) {
	open := -1
	for i, t := range clause {
		if t.IsPunct("(") {
			open = i
			break
		}
	}
	if open < 0 {
		return nil, fmt.Errorf("%s without a column list", what)
	}
	var names []string
	for _, t := range clause[open+1:] {
		if t.IsPunct(")") {
			break
		}
		if t.Kind == tokenizer.TokenIdentifier || t.Kind == tokenizer.TokenKeyword {
			names = append(names, trimIdentifier(t.Text))
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s with an empty column list", what)
	}
	return names, nil
}

// applyForeignKey parses FOREIGN KEY (col, ...) REFERENCES table (col, ...).
func applyForeignKey(t *Table, clause []tokenizer.Token) error {
	cols, err := namesInParens(clause, "FOREIGN KEY")
	if err != nil {
		return err
	}

	refIdx := -1
	for i, tok := range clause {
		if tok.IsKeyword("REFERENCES") {
			refIdx = i
			break
		}
	}
	if refIdx < 0 || refIdx+1 >= len(clause) {
		return fmt.Errorf("FOREIGN KEY without REFERENCES")
	}
	refTable, pos := readQualifiedName(clause, refIdx+1)
	if refTable == "" {
		return fmt.Errorf("REFERENCES without a table name")
	}
	refCols, err := namesInParens(clause[pos:], "REFERENCES")
	if err != nil {
		return err
	}

	for i, name := range cols {
		refCol := refCols[0]
		if i < len(refCols) {
			refCol = refCols[i]
		}
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
			Column:    name,
			RefTable:  refTable,
			RefColumn: refCol,
		})
		if col := t.Column(name); col != nil {
			col.IsForeignKey = true
			col.RefTable = refTable
			col.RefColumn = refCol
		}
	}
	return nil
}

// applyColumn parses one column definition clause: name, a recognized type,
// then inline modifiers in any order.
func applyColumn(t *Table, clause []tokenizer.Token) error {
	head := clause[0]
	if head.Kind != tokenizer.TokenIdentifier && head.Kind != tokenizer.TokenKeyword {
		return fmt.Errorf("clause does not start with a column name")
	}
	if len(clause) < 2 {
		return fmt.Errorf("column %q has no type", head.Text)
	}

	col := Column{Name: trimIdentifier(head.Text), Nullable: true}

	declared, pos, ok := readType(clause, 1)
	if !ok {
		return fmt.Errorf("column %q has unrecognized type %q", col.Name, clause[1].Text)
	}
	col.Type = declared

	for pos < len(clause) {
		tok := clause[pos]
		switch {
		case tok.IsKeyword("PRIMARY"):
			col.IsPrimaryKey = true
			col.Nullable = false
			if !t.IsPrimaryKeyColumn(col.Name) {
				t.PrimaryKey = append(t.PrimaryKey, col.Name)
			}
			pos++
			if pos < len(clause) && clause[pos].IsKeyword("KEY") {
				pos++
			}

		case tok.IsKeyword("NOT"):
			pos++
			if pos < len(clause) && clause[pos].IsKeyword("NULL") {
				col.Nullable = false
				pos++
			}

		case tok.IsKeyword("NULL"):
			col.Nullable = true
			pos++

		case tok.IsKeyword("REFERENCES"):
			refTable, next := readQualifiedName(clause, pos+1)
			if refTable == "" {
				return fmt.Errorf("column %q REFERENCES without a table name", col.Name)
			}
			pos = next
			col.IsForeignKey = true
			col.RefTable = refTable
			if refCols, err := namesInParens(clause[pos:], "REFERENCES"); err == nil {
				col.RefColumn = refCols[0]
				pos = skipParenGroup(clause, pos)
			}
			t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
				Column:    col.Name,
				RefTable:  col.RefTable,
				RefColumn: col.RefColumn,
			})

		case tok.IsKeyword("DEFAULT"):
			pos++
			if pos < len(clause) {
				col.Default = clause[pos].Text
				pos++
				// Function defaults such as NOW().
				if pos < len(clause) && clause[pos].IsPunct("(") {
					col.Default += "()"
					pos = skipParenGroup(clause, pos)
				}
			}

		default:
			// UNIQUE, AUTO_INCREMENT, COMMENT '...', CHECK (...), collation
			// noise: skip the token and any parenthesized argument it drags.
			pos++
			if pos < len(clause) && clause[pos].IsPunct("(") {
				pos = skipParenGroup(clause, pos)
			}
		}
	}

	t.Columns = append(t.Columns, col)
	return nil
}

// readType reads a declared type starting at pos: a recognized base word,
// optional (args), and optional bare modifiers such as UNSIGNED or VARYING.
func readType(clause []tokenizer.Token, pos int) (string, int, bool) {
	tok := clause[pos]
	if tok.Kind != tokenizer.TokenIdentifier && tok.Kind != tokenizer.TokenKeyword {
		return "", pos, false
	}
	base := strings.ToUpper(tok.Text)
	if _, ok := recognizedTypes[base]; !ok {
		return "", pos, false
	}
	declared := tok.Text
	pos++

	if pos < len(clause) && clause[pos].IsPunct("(") {
		depth := 0
		for ; pos < len(clause); pos++ {
			t := clause[pos]
			declared += t.Text
			if t.IsPunct("(") {
				depth++
			} else if t.IsPunct(")") {
				depth--
				if depth == 0 {
					pos++
					break
				}
			}
		}
	}

	for pos < len(clause) {
		mod := strings.ToUpper(clause[pos].Text)
		if _, ok := typeModifiers[mod]; !ok {
			break
		}
		declared += " " + clause[pos].Text
		pos++
	}
	return declared, pos, true
}

// skipParenGroup advances past the parenthesized group opening at pos.
func skipParenGroup(clause []tokenizer.Token, pos int) int {
	for pos < len(clause) && !clause[pos].IsPunct("(") {
		pos++
	}
	depth := 0
	for ; pos < len(clause); pos++ {
		switch {
		case clause[pos].IsPunct("("):
			depth++
		case clause[pos].IsPunct(")"):
			depth--
			if depth == 0 {
				return pos + 1
			}
		}
	}
	return pos
}

// trimIdentifier strips quoting delimiters from an identifier token.
func trimIdentifier(text string) string {
	if len(text) >= 2 {
		switch {
		case text[0] == '`' && text[len(text)-1] == '`',
			text[0] == '"' && text[len(text)-1] == '"':
			return text[1 : len(text)-1]
		case text[0] == '[' && text[len(text)-1] == ']':
			return text[1 : len(text)-1]
		}
	}
	return text
}

// recognizedTypes is the closed set of base type words a column definition
// may use. It deliberately covers the common dialects' spellings; anything
// else is a malformed clause, skipped with a warning.
var recognizedTypes = map[string]struct{}{
	// integer family
	"INT": {}, "INTEGER": {}, "BIGINT": {}, "SMALLINT": {}, "TINYINT": {},
	"MEDIUMINT": {}, "SERIAL": {}, "BIGSERIAL": {}, "SMALLSERIAL": {},
	"INT2": {}, "INT4": {}, "INT8": {}, "NUMBER": {},
	// string family
	"CHAR": {}, "VARCHAR": {}, "VARCHAR2": {}, "NCHAR": {}, "NVARCHAR": {},
	"NVARCHAR2": {}, "TEXT": {}, "TINYTEXT": {}, "MEDIUMTEXT": {},
	"LONGTEXT": {}, "CLOB": {}, "NCLOB": {}, "UUID": {}, "CHARACTER": {},
	// everything else we accept as a declared type
	"DECIMAL": {}, "NUMERIC": {}, "FLOAT": {}, "DOUBLE": {}, "REAL": {},
	"MONEY": {}, "BIT": {}, "BOOL": {}, "BOOLEAN": {}, "DATE": {},
	"TIME": {}, "DATETIME": {}, "DATETIME2": {}, "TIMESTAMP": {},
	"TIMESTAMPTZ": {}, "SMALLDATETIME": {}, "INTERVAL": {}, "YEAR": {},
	"BLOB": {}, "TINYBLOB": {}, "MEDIUMBLOB": {}, "LONGBLOB": {},
	"BINARY": {}, "VARBINARY": {}, "BYTEA": {}, "RAW": {}, "JSON": {},
	"JSONB": {}, "XML": {}, "ENUM": {}, "UNIQUEIDENTIFIER": {},
}

// typeModifiers are bare words that extend a declared type.
var typeModifiers = map[string]struct{}{
	"UNSIGNED": {}, "SIGNED": {}, "ZEROFILL": {}, "VARYING": {},
	"PRECISION": {},
}
