package tokenizer

import "strings"

// TokenKind classifies a scanned token.
type TokenKind int32

const (
	TokenKeyword TokenKind = iota + 1
	TokenIdentifier
	TokenLiteral
	TokenPunctuation
	TokenComment
	TokenWhitespace
)

func (k TokenKind) String() string {
	switch k {
	case TokenKeyword:
		return "keyword"
	case TokenIdentifier:
		return "identifier"
	case TokenLiteral:
		return "literal"
	case TokenPunctuation:
		return "punctuation"
	case TokenComment:
		return "comment"
	case TokenWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Token is one lexical unit. Line and Column are 1-based and refer to the
// token's first rune in the original input. Tokens are immutable once
// produced.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

// IsKeyword reports whether the token is the given keyword, case-insensitive.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokenKeyword && strings.EqualFold(t.Text, kw)
}

// IsPunct reports whether the token is the given punctuation text.
func (t Token) IsPunct(p string) bool {
	return t.Kind == TokenPunctuation && t.Text == p
}

// Statement is one statement's token run plus its raw text span. A Statement
// belongs to the analysis run that produced it and is never mutated after
// Split returns.
type Statement struct {
	// Tokens holds every token in source order, including whitespace and
	// comments.
	Tokens []Token

	// Text is the raw source span, terminator included when present.
	Text string

	// StartLine is the 1-based line of the first significant token, or of
	// the span itself when the statement is empty.
	StartLine int

	// Terminated is true when the statement ended with a semicolon rather
	// than end-of-input.
	Terminated bool

	// UnterminatedLiteral flags a quote or block comment that was still
	// open at end-of-input. The rule engine turns it into a structural
	// finding.
	UnterminatedLiteral bool

	// Empty is true when the statement carries no significant tokens
	// (whitespace, comments, and a bare terminator only).
	Empty bool
}

// Significant returns the statement's tokens with whitespace and comments
// stripped. The returned slice aliases no Statement state and is safe to
// reorder.
func (s *Statement) Significant() []Token {
	out := make([]Token, 0, len(s.Tokens))
	for _, t := range s.Tokens {
		if t.Kind == TokenWhitespace || t.Kind == TokenComment {
			continue
		}
		out = append(out, t)
	}
	return out
}

// LeadingKeyword returns the first keyword token's upper-cased text, or ""
// when the statement does not begin with a keyword.
func (s *Statement) LeadingKeyword() string {
	for _, t := range s.Tokens {
		switch t.Kind {
		case TokenWhitespace, TokenComment:
			continue
		case TokenKeyword:
			return strings.ToUpper(t.Text)
		default:
			return ""
		}
	}
	return ""
}

// HasKeyword reports whether any token is the given keyword.
func (s *Statement) HasKeyword(kw string) bool {
	for _, t := range s.Tokens {
		if t.IsKeyword(kw) {
			return true
		}
	}
	return false
}
