// Package batch runs one analyzer over many SQL documents in parallel. The
// work is embarrassingly parallel: documents share nothing, so the runner
// only bounds concurrency and enforces a per-document timeout.
package batch

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
)

// DefaultTimeout bounds a single document's analysis when the caller does
// not set one.
const DefaultTimeout = 30 * time.Second

// Document is one named SQL input, typically a file.
type Document struct {
	Name string
	SQL  string
}

// DocumentResult pairs a document with its outcome. Exactly one of Result
// and Err is set: Err means the document never produced a result (timeout or
// cancellation), not that findings were found.
type DocumentResult struct {
	Name   string
	Result *analyzer.AnalysisResult
	Err    error
}

// Runner analyzes documents with bounded concurrency. A Runner is immutable
// after construction and safe to reuse across batches.
type Runner struct {
	analyzer    *analyzer.Analyzer
	concurrency int
	timeout     time.Duration
	progress    func(DocumentResult)
}

// RunnerOption customizes a Runner at construction.
type RunnerOption func(*Runner)

// WithConcurrency bounds the number of documents analyzed at once. Values
// below one keep the default (the machine's CPU count).
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithTimeout bounds each document's analysis. Values of zero or below keep
// the default.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithProgress registers a callback invoked once per completed document, in
// completion order. It is called from worker goroutines and must be safe for
// concurrent use.
func WithProgress(fn func(DocumentResult)) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner builds a runner over the given analyzer.
func NewRunner(a *analyzer.Analyzer, opts ...RunnerOption) *Runner {
	r := &Runner{
		analyzer:    a,
		concurrency: runtime.NumCPU(),
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run analyzes every document and returns one result per input, in input
// order. Per-document failures land in the result slice; the returned error
// is non-nil only when the batch context itself was cancelled.
func (r *Runner) Run(ctx context.Context, docs []Document) ([]DocumentResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	results := make([]DocumentResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = r.analyzeOne(gctx, doc)
			if r.progress != nil {
				r.progress(results[i])
			}
			// Collect per-document failures in the slice instead of
			// failing the group, so one bad document never stops the rest.
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

// analyzeOne runs a single document under the per-document timeout. Analyze
// is CPU-bound and does not poll the context, so it runs in its own
// goroutine; on timeout the batch stops waiting and the goroutine finishes
// on its own, sending into a buffered channel nobody reads.
func (r *Runner) analyzeOne(ctx context.Context, doc Document) DocumentResult {
	select {
	case <-ctx.Done():
		return DocumentResult{Name: doc.Name, Err: errors.Wrapf(ctx.Err(), "analyze %s", doc.Name)}
	default:
	}

	docCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan *analyzer.AnalysisResult, 1)
	go func() {
		done <- r.analyzer.Analyze(docCtx, doc.SQL)
	}()

	select {
	case res := <-done:
		return DocumentResult{Name: doc.Name, Result: res}
	case <-docCtx.Done():
		return DocumentResult{Name: doc.Name, Err: errors.Wrapf(docCtx.Err(), "analyze %s", doc.Name)}
	}
}
