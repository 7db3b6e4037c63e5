package tokenizer

import "strings"

// Document couples one SQL source text with its line table and split
// statements. Rule detectors consume it: line-oriented rules walk the code
// lines, token-oriented rules walk the statements.
type Document struct {
	Text       string
	Statements []Statement

	lines []string
	code  []bool
}

// NewDocument splits text and indexes its lines. Lines containing at least
// one significant token are marked as code lines; lines that are blank or
// hold only comments are not.
func NewDocument(text string, opts Options) *Document {
	d := &Document{
		Text:       text,
		Statements: SplitWithOptions(text, opts),
	}
	d.lines = strings.Split(text, "\n")
	for i, l := range d.lines {
		d.lines[i] = strings.TrimSuffix(l, "\r")
	}
	d.code = make([]bool, len(d.lines)+1)
	for _, st := range d.Statements {
		for _, t := range st.Tokens {
			if t.Kind == TokenWhitespace || t.Kind == TokenComment {
				continue
			}
			if t.Line >= 1 && t.Line < len(d.code) {
				d.code[t.Line] = true
			}
		}
	}
	return d
}

// LineCount returns the number of source lines.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the 1-based source line without its trailing newline, or ""
// when n is out of range.
func (d *Document) Line(n int) string {
	if n < 1 || n > len(d.lines) {
		return ""
	}
	return d.lines[n-1]
}

// IsCodeLine reports whether line n carries at least one significant token.
func (d *Document) IsCodeLine(n int) bool {
	if n < 1 || n >= len(d.code) {
		return false
	}
	return d.code[n]
}
