// Package pkg groups the SQL analysis packages.
//
// sqlinsight analyzes SQL scripts without executing them: rule-based findings
// with confidence scores, a schema catalog built from CREATE TABLE
// statements, and a relationship graph with inferred foreign keys, table
// creation order and schema health scores.
//
// # Package Structure
//
// The pkg directory contains several specialized packages:
//
//   - analyzer: High-level API running every analysis phase over one document
//     (recommended starting point)
//   - tokenizer: Statement-boundary- and keyword-aware scanner that never
//     rejects malformed input
//   - rules: Pattern- and token-driven detectors plus the scan engine
//   - confidence: Weighted confidence scoring for findings
//   - catalog: Schema catalog built from CREATE TABLE statements
//   - graph: Relationship inference, creation order and health scoring
//   - dialect: Per-dialect reserved words, scan quirks and extra patterns
//   - types: Core enums and the Finding type
//   - config: Configuration loading, rule overrides, lexicon replacement
//   - report: Text, JSON, YAML and Markdown writers over results
//   - batch: Bounded-concurrency multi-document analysis
//   - logger: Logging setup helpers
//
// # Getting Started
//
// For most use cases, start with the analyzer package:
//
//	import (
//	    "github.com/sqlinsight/sqlinsight/pkg/analyzer"
//	    "github.com/sqlinsight/sqlinsight/pkg/types"
//	)
//
//	func main() {
//	    a := analyzer.New(types.DialectMySQL)
//	    res := a.Analyze(context.Background(), sqlText)
//	    // Process res.Findings, res.Schema, res.CategoryScores...
//	}
//
// # Thread Safety
//
// An Analyzer is immutable after construction and safe for concurrent use by
// multiple goroutines; every Analyze call returns a fresh result.
//
// # Error Handling
//
// Findings are data, not errors: Analyze never returns an error. An internal
// failure is recovered into a single CRITICAL finding rather than a panic, so
// a batch of documents always runs to completion.
package pkg
