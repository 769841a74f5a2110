// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/nanoextract/internal/document"
	"github.com/pdiddy/nanoextract/internal/metrics"
	"github.com/pdiddy/nanoextract/pkg/types"
)

// Sink receives finished results. Implementations must be safe for
// concurrent Save calls.
type Sink interface {
	Save(ctx context.Context, res types.Result) error
	Close() error
}

// Deduper is implemented by sinks that can tell whether a fingerprint was
// already stored; such documents are skipped.
type Deduper interface {
	Has(ctx context.Context, fileHash string) (bool, error)
}

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of documents considered.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Runner processes a list of documents.
type Runner struct {
	Reader    document.Reader
	Processor *Processor
	Sinks     []Sink

	// Workers is the number of documents processed at once (1 when <= 0).
	Workers int

	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// Run processes every path, printing one status line per document to w,
// and returns the summary. Per-document failures are counted, not returned.
// Cancelling ctx stops new documents from starting; the returned error is
// then ctx.Err().
func (r *Runner) Run(ctx context.Context, paths []string, w io.Writer) (BatchSummary, error) {
	runID := uuid.NewString()
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", runID))
	log.Info("run started", zap.Int("documents", len(paths)), zap.Int("workers", max(1, r.Workers)))

	var (
		mu      sync.Mutex
		summary BatchSummary
	)
	report := func(outcome, line string) {
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case metrics.OutcomeExtracted:
			summary.Extracted++
		case metrics.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		fmt.Fprintln(w, line)
	}

	g := new(errgroup.Group)
	g.SetLimit(max(1, r.Workers))
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Cancellation may land while waiting for a free worker.
			if ctx.Err() != nil {
				return nil
			}
			started := time.Now()
			outcome, line := r.one(ctx, runID, path, log)
			r.Metrics.Document(outcome, time.Since(started))
			report(outcome, line)
			return nil
		})
	}
	g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())
	r.Metrics.RunFinished(!summary.HasFailures() && ctx.Err() == nil)
	log.Info("run finished",
		zap.Int("extracted", summary.Extracted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, ctx.Err()
}

// one processes a single document and returns its outcome and status line.
func (r *Runner) one(ctx context.Context, runID, path string, log *zap.Logger) (string, string) {
	name := filepath.Base(path)

	doc, err := r.Reader.Read(ctx, path)
	if err != nil {
		log.Debug("read failed", zap.String("file", path), zap.Error(err))
		return metrics.OutcomeFailed, fmt.Sprintf("failed  %s: %v", name, err)
	}

	for _, s := range r.Sinks {
		d, ok := s.(Deduper)
		if !ok {
			continue
		}
		seen, err := d.Has(ctx, doc.Hash)
		if err != nil {
			return metrics.OutcomeFailed, fmt.Sprintf("failed  %s: %v", name, err)
		}
		if seen {
			return metrics.OutcomeSkipped, fmt.Sprintf("skipped %s (already stored)", name)
		}
	}

	res := r.Processor.Process(ctx, doc)
	res.RunID = runID

	// A started document is stored even if the run is cancelled meanwhile.
	saveCtx := context.WithoutCancel(ctx)
	for _, s := range r.Sinks {
		if err := s.Save(saveCtx, res); err != nil {
			return metrics.OutcomeFailed, fmt.Sprintf("failed  %s: save error: %v", name, err)
		}
	}

	p := res.Record.Paper
	if p.LLMStatus != "" {
		return metrics.OutcomeExtracted, fmt.Sprintf("extracted %s (%s, %s)", name, p.ExtractionMethod, p.LLMStatus)
	}
	return metrics.OutcomeExtracted, fmt.Sprintf("extracted %s (%s)", name, p.ExtractionMethod)
}
