// Package analyzer is the high-level entry point for SQL static analysis.
//
// It wires the tokenizer, the rule engine, the schema catalog and the
// relationship graph into one call that always produces a result:
//
//	// Create an analyzer for MySQL
//	a := analyzer.New(types.DialectMySQL)
//
//	// Analyze a document
//	res := a.Analyze(context.Background(), "SELECT * FROM users;")
//
//	// Inspect results
//	fmt.Printf("Found %d findings\n", res.Summary.Total)
//	for _, f := range res.Findings {
//	    fmt.Printf("[%s] %s\n", f.Severity, f.Message)
//	}
//
// # Customizing the analyzer
//
//	reg, _ := rules.DefaultRegistry(profile)
//	a := analyzer.New(types.DialectPostgres,
//	    analyzer.WithRegistry(reg.Without("performance.select-star")),
//	    analyzer.WithLexicon(myLexicon),
//	)
//
// Findings are data, never errors: malformed SQL produces findings and the
// analysis continues. Analyze has no error return at all.
//
// An Analyzer is immutable after New and safe for concurrent use by multiple
// goroutines.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sqlinsight/sqlinsight/pkg/catalog"
	"github.com/sqlinsight/sqlinsight/pkg/confidence"
	"github.com/sqlinsight/sqlinsight/pkg/dialect"
	"github.com/sqlinsight/sqlinsight/pkg/graph"
	"github.com/sqlinsight/sqlinsight/pkg/rules"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// Analyzer runs the full analysis pipeline for one dialect.
type Analyzer struct {
	dialect  types.Dialect
	dialects *dialect.Registry
	profile  dialect.Profile
	registry *rules.Registry
	engine   *rules.Engine
	scorer   *confidence.Scorer
	lexicon  graph.Lexicon
	log      *slog.Logger
}

// New creates an analyzer for the given dialect with the default rule set,
// scorer and lexicon. Options replace individual collaborators.
//
// Dialect patterns that fail to compile are skipped with a warning; the
// analyzer still works with the rules that did compile.
func New(d types.Dialect, opts ...Option) *Analyzer {
	a := &Analyzer{
		dialect:  d,
		dialects: dialect.DefaultRegistry(),
		scorer:   confidence.NewScorer(),
		lexicon:  graph.DefaultLexicon(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.profile = a.dialects.Lookup(d)
	if a.registry == nil {
		reg, err := rules.DefaultRegistry(a.profile)
		if err != nil {
			a.log.Warn("some dialect patterns were skipped", "dialect", d, "error", err)
		}
		a.registry = reg
	}
	a.engine = rules.NewEngine(a.registry, a.scorer)
	return a
}

// Dialect returns the dialect the analyzer was built for.
func (a *Analyzer) Dialect() types.Dialect { return a.dialect }

// Rules returns the active rules in registration order.
func (a *Analyzer) Rules() []rules.Rule { return a.registry.Rules() }

// Analyze runs every phase over one SQL document and returns the complete
// result. It never returns an error and never panics: an internal invariant
// violation is recovered into a single CRITICAL finding on line 1 and the
// phases that completed keep their output.
//
// The context is accepted for call-site symmetry; analysis is pure CPU work
// over an in-memory document and runs to completion. Callers that need a
// deadline run Analyze under their own timeout, the way the batch runner
// does.
func (a *Analyzer) Analyze(ctx context.Context, sql string) (res *AnalysisResult) {
	res = &AnalysisResult{Dialect: a.dialect}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("analysis panic recovered", "dialect", a.dialect, "error", r)
			res.Findings = append(res.Findings, types.Finding{
				ID:         "logic.internal-error",
				Severity:   types.SeverityCritical,
				Category:   types.CategoryLogic,
				Message:    fmt.Sprintf("internal analysis error: %v", r),
				Location:   types.Location{Line: 1, ColumnStart: 1, ColumnEnd: 1},
				Confidence: 1,
			})
			rules.SortFindings(res.Findings)
			res.Summary = summarize(res.Findings)
			res.CategoryScores = scoreCategories(res.Findings)
		}
	}()

	doc := tokenizer.NewDocument(sql, a.profile.ScanOptions)
	res.Findings = a.engine.Scan(doc)

	cat := catalog.Build(doc.Statements)
	res.Tables = cat.Tables
	for i, w := range cat.Warnings {
		res.Findings = append(res.Findings, a.warningFinding(w, i))
	}
	if len(cat.Warnings) > 0 {
		rules.SortFindings(res.Findings)
	}

	res.Schema = graph.Analyze(cat, a.lexicon)

	res.Summary = summarize(res.Findings)
	res.CategoryScores = scoreCategories(res.Findings)
	return res
}

// warningFinding converts one catalog warning into an INFO finding so that
// skipped DDL clauses surface in reports instead of vanishing.
func (a *Analyzer) warningFinding(w catalog.Warning, earlier int) types.Finding {
	msg := w.Reason
	if w.Table != "" {
		msg = fmt.Sprintf("table %q: %s", w.Table, w.Reason)
	}
	score := a.scorer.Score(types.CategorySyntax, confidence.KindTokenScan, confidence.Context{
		HasLocation:     w.Line > 0,
		Snippet:         w.Clause,
		StatementKind:   "CREATE",
		SimilarFindings: earlier,
	})
	return types.Finding{
		ID:         "syntax.skipped-clause",
		Severity:   types.SeverityInfo,
		Category:   types.CategorySyntax,
		Message:    msg,
		Location:   types.Location{Line: w.Line, ColumnStart: 1, ColumnEnd: 1, LineText: w.Clause},
		Confidence: score.Value,
	}
}
