package core

import (
	"context"

	"github.com/fatih/semgroup"
	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// Publisher checks documents and pushes the results to the diagnostics
// sink and the highlight reconciler.
type Publisher struct {
	checker    *Checker
	sink       contract.DiagnosticsSink
	highlights *HighlightReconciler
	workers    int
	logger     hclog.Logger
}

// NewPublisher wires a checker to its outputs. workers bounds sweeps.
func NewPublisher(checker *Checker, sink contract.DiagnosticsSink, highlights *HighlightReconciler, workers int, logger hclog.Logger) *Publisher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Publisher{
		checker:    checker,
		sink:       sink,
		highlights: highlights,
		workers:    workers,
		logger:     logger,
	}
}

// Recheck runs a check and publishes it. Documents in other languages are
// left alone and yield nil.
func (p *Publisher) Recheck(ctx context.Context, doc contract.Document) *schema.CheckResult {
	result := p.checker.CheckDocument(ctx, doc)
	if result == nil {
		return nil
	}
	p.sink.Set(result.Path, result.Diagnostics)
	p.highlights.Apply(result.Path, result.HighlightRanges)
	return result
}

// Retract removes everything published for a document.
func (p *Publisher) Retract(path string) {
	p.sink.Delete(path)
	p.highlights.Clear(path)
}

// Sweep rechecks several documents with bounded concurrency. When
// clearFirst is set, each document's highlights are cleared before its check.
func (p *Publisher) Sweep(ctx context.Context, docs []contract.Document, clearFirst bool) {
	sg := semgroup.NewGroup(ctx, int64(p.workers))
	for _, doc := range docs {
		sg.Go(func() error {
			if clearFirst {
				p.highlights.Clear(doc.Path())
			}
			p.Recheck(ctx, doc)
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		p.logger.Debug("recheck sweep interrupted", "error", err)
	}
}

// Checker returns the checker behind the publisher.
func (p *Publisher) Checker() *Checker {
	return p.checker
}
