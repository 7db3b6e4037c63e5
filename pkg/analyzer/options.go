package analyzer

import (
	"log/slog"

	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/dialect"
	"github.com/sqlinsight/sqlinsight/pkg/graph"
	"github.com/sqlinsight/sqlinsight/pkg/rules"
)

// Option is a functional option applied by New.
type Option func(*Analyzer)

// WithRegistry replaces the default rule set.
//
// Example:
//
//	reg, _ := rules.DefaultRegistry(profile)
//	a := analyzer.New(types.DialectMySQL,
//	    analyzer.WithRegistry(reg.Without("logic.missing-where")))
func WithRegistry(reg *rules.Registry) Option {
	return func(a *Analyzer) {
		a.registry = reg
	}
}

// WithDialectRegistry replaces the dialect lookup the analyzer resolves its
// profile from. Unknown dialects still fall back to the generic profile.
func WithDialectRegistry(reg *dialect.Registry) Option {
	return func(a *Analyzer) {
		a.dialects = reg
	}
}

// WithLexicon replaces the vocabulary driving missing-table suggestions.
func WithLexicon(lex graph.Lexicon) Option {
	return func(a *Analyzer) {
		a.lexicon = lex
	}
}

// WithScorer replaces the confidence scorer.
func WithScorer(s *confidence.Scorer) Option {
	return func(a *Analyzer) {
		a.scorer = s
	}
}

// WithLogger replaces the logger used for recovered panics and skipped
// patterns. The default is slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(a *Analyzer) {
		a.log = log
	}
}
