// Package tokenizer splits raw SQL text into statements and flat token
// streams. It is statement-boundary- and keyword-aware only, not a grammar,
// and never rejects input: malformed text still tokenizes, with structural
// flags for the rule engine instead of errors.
package tokenizer

// Options control quote and comment handling. They mirror the quoting quirks
// a dialect profile supplies; zero value means ANSI-ish defaults via
// DefaultOptions.
type Options struct {
	// DoubleQuoteIsIdentifier treats "..." as a quoted identifier rather
	// than a string literal.
	DoubleQuoteIsIdentifier bool

	// BacktickIdentifiers enables `...` quoting (MySQL).
	BacktickIdentifiers bool

	// BracketIdentifiers enables [...] quoting (SQL Server).
	BracketIdentifiers bool

	// HashLineComments enables # line comments (MySQL).
	HashLineComments bool

	// BackslashEscapes allows backslash escapes inside quoted runs.
	BackslashEscapes bool
}

// DefaultOptions returns the generic profile's scanning options.
func DefaultOptions() Options {
	return Options{
		DoubleQuoteIsIdentifier: true,
		BacktickIdentifiers:     true,
		BackslashEscapes:        true,
	}
}

// Split tokenizes text with DefaultOptions. See SplitWithOptions.
func Split(text string) []Statement {
	return SplitWithOptions(text, DefaultOptions())
}

// SplitWithOptions splits text into statements on semicolons that sit outside
// quoted runs and comments. The result is deterministic: re-invoking on the
// same input yields identical output. Unterminated quotes and block comments
// are closed at end-of-input and flagged on the affected statement.
func SplitWithOptions(text string, opts Options) []Statement {
	s := &scanner{src: []rune(text), line: 1, col: 1, opts: opts}

	var (
		stmts        []Statement
		cur          []Token
		segStart     int
		unterminated bool
	)

	flush := func(terminated bool) {
		end := s.pos
		st := Statement{
			Tokens:              cur,
			Text:                string(s.src[segStart:end]),
			Terminated:          terminated,
			UnterminatedLiteral: unterminated,
			Empty:               true,
			StartLine:           1,
		}
		for i, t := range cur {
			if i == 0 {
				st.StartLine = t.Line
			}
			if t.Kind == TokenWhitespace || t.Kind == TokenComment || t.IsPunct(";") {
				continue
			}
			st.StartLine = t.Line
			st.Empty = false
			break
		}
		stmts = append(stmts, st)
		cur = nil
		segStart = end
		unterminated = false
	}

	for !s.eof() {
		tok, open := s.next()
		cur = append(cur, tok)
		if open {
			unterminated = true
		}
		if tok.IsPunct(";") {
			flush(true)
		}
	}
	if len(cur) > 0 {
		flush(false)
	}

	return stmts
}

type scanner struct {
	src  []rune
	pos  int
	line int
	col  int
	opts Options
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek(off int) rune {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) advance() rune {
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) token(kind TokenKind, start, line, col int) Token {
	return Token{Kind: kind, Text: string(s.src[start:s.pos]), Line: line, Column: col}
}

// next scans one token. The second return value is true when the token is a
// quoted run or block comment that reached end-of-input before closing.
func (s *scanner) next() (Token, bool) {
	start, line, col := s.pos, s.line, s.col
	r := s.peek(0)

	switch {
	case isSpace(r):
		for !s.eof() && isSpace(s.peek(0)) {
			s.advance()
		}
		return s.token(TokenWhitespace, start, line, col), false

	case r == '-' && s.peek(1) == '-':
		s.scanToLineEnd()
		return s.token(TokenComment, start, line, col), false

	case r == '#' && s.opts.HashLineComments:
		s.scanToLineEnd()
		return s.token(TokenComment, start, line, col), false

	case r == '/' && s.peek(1) == '*':
		open := s.scanBlockComment()
		return s.token(TokenComment, start, line, col), open

	case r == '\'':
		open := s.scanQuoted('\'')
		return s.token(TokenLiteral, start, line, col), open

	case r == '"':
		kind := TokenLiteral
		if s.opts.DoubleQuoteIsIdentifier {
			kind = TokenIdentifier
		}
		open := s.scanQuoted('"')
		return s.token(kind, start, line, col), open

	case r == '`' && s.opts.BacktickIdentifiers:
		open := s.scanQuoted('`')
		return s.token(TokenIdentifier, start, line, col), open

	case r == '[' && s.opts.BracketIdentifiers:
		open := s.scanBracketed()
		return s.token(TokenIdentifier, start, line, col), open

	case isDigit(r):
		s.scanNumber()
		return s.token(TokenLiteral, start, line, col), false

	case isIdentStart(r):
		for !s.eof() && isIdentPart(s.peek(0)) {
			s.advance()
		}
		kind := TokenIdentifier
		if IsKeyword(string(s.src[start:s.pos])) {
			kind = TokenKeyword
		}
		return s.token(kind, start, line, col), false

	default:
		if op := twoRuneOperator(r, s.peek(1)); op {
			s.advance()
			s.advance()
			return s.token(TokenPunctuation, start, line, col), false
		}
		s.advance()
		return s.token(TokenPunctuation, start, line, col), false
	}
}

func (s *scanner) scanToLineEnd() {
	for !s.eof() && s.peek(0) != '\n' {
		s.advance()
	}
}

// scanBlockComment consumes /* ... */ and reports true when the comment was
// still open at end-of-input.
func (s *scanner) scanBlockComment() bool {
	s.advance() // '/'
	s.advance() // '*'
	for !s.eof() {
		if s.peek(0) == '*' && s.peek(1) == '/' {
			s.advance()
			s.advance()
			return false
		}
		s.advance()
	}
	return true
}

// scanQuoted consumes a quoted run opened by q. Doubled quotes escape the
// quote character; backslash escapes apply when enabled and q is not a
// backtick. Reports true when the run was still open at end-of-input.
func (s *scanner) scanQuoted(q rune) bool {
	s.advance() // opening quote
	for !s.eof() {
		r := s.peek(0)
		if r == '\\' && s.opts.BackslashEscapes && q != '`' {
			s.advance()
			if !s.eof() {
				s.advance()
			}
			continue
		}
		if r == q {
			if s.peek(1) == q {
				s.advance()
				s.advance()
				continue
			}
			s.advance()
			return false
		}
		s.advance()
	}
	return true
}

func (s *scanner) scanBracketed() bool {
	s.advance() // '['
	for !s.eof() {
		if s.peek(0) == ']' {
			s.advance()
			return false
		}
		s.advance()
	}
	return true
}

func (s *scanner) scanNumber() {
	for !s.eof() && (isDigit(s.peek(0)) || s.peek(0) == '.') {
		s.advance()
	}
	if s.peek(0) == 'e' || s.peek(0) == 'E' {
		if isDigit(s.peek(1)) || ((s.peek(1) == '+' || s.peek(1) == '-') && isDigit(s.peek(2))) {
			s.advance()
			if s.peek(0) == '+' || s.peek(0) == '-' {
				s.advance()
			}
			for !s.eof() && isDigit(s.peek(0)) {
				s.advance()
			}
		}
	}
}

func twoRuneOperator(a, b rune) bool {
	switch string([]rune{a, b}) {
	case "<=", ">=", "<>", "!=", "||", ":=":
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }
