// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/nanoextract/internal/document"
	"github.com/pdiddy/nanoextract/internal/extract"
	"github.com/pdiddy/nanoextract/internal/merge"
	"github.com/pdiddy/nanoextract/internal/metrics"
	"github.com/pdiddy/nanoextract/internal/refine"
	"github.com/pdiddy/nanoextract/internal/snippet"
	"github.com/pdiddy/nanoextract/pkg/types"
)

// DefaultOracleTimeout bounds one refinement call when none is configured.
const DefaultOracleTimeout = 120 * time.Second

// Processor turns one document into a finished result.
type Processor struct {
	// Refiner is nil when refinement is disabled.
	Refiner *refine.Refiner

	// Model is recorded in llm_model when refinement runs.
	Model string

	// Timeout bounds the oracle call (DefaultOracleTimeout when zero).
	Timeout time.Duration

	MetaPages int
	Snippet   types.SnippetConfig

	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// Process builds the rules draft and, when refinement is enabled, asks for
// a patch and merges it. Refinement problems never fail the document: the
// rules draft is kept and llm_status says why.
func (p *Processor) Process(ctx context.Context, doc document.Document) types.Result {
	d := BuildDraft(doc, p.MetaPages)
	res := types.Result{Record: d.Record}
	if p.Refiner == nil {
		return res
	}

	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("file", doc.Path))

	res.Record.Paper.LLMModel = p.Model

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	patch, raw, err := p.Refiner.Refine(callCtx, d.Record, refine.Snippets{
		TitlePage:   doc.TitlePage(),
		Abstract:    snippet.Abstract(d.MetaText),
		Keywords:    snippet.KeywordsHint(d.MetaText),
		Descriptors: snippet.Bundle(snippet.Build(d.CleanText, p.Snippet)),
		TableRows:   d.TableRows,
	})
	res.RawRefinement = raw

	status := p.finish(&res, patch, err, log)
	p.Metrics.Refinement(status, time.Since(started))
	return res
}

// finish applies the refinement outcome to res and returns the status.
func (p *Processor) finish(res *types.Result, patch types.Patch, err error, log *zap.Logger) string {
	rec := &res.Record
	switch {
	case err != nil:
		log.Warn("refinement failed, keeping rules draft", zap.Error(err))
		rec.Paper.LLMStatus = types.StatusOracleError
	case patch.IsEmpty():
		log.Debug("no usable patch, keeping rules draft")
		rec.Paper.LLMStatus = types.StatusNoPatch
	default:
		merged, err := merge.Apply(*rec, patch)
		if err != nil {
			log.Warn("merge failed, keeping rules draft", zap.Error(err))
			rec.Paper.LLMStatus = types.StatusMergeError
			break
		}
		if merged.Nanomaterial.NMCategory == "" {
			merged.Nanomaterial.NMCategory = extract.Category(merged.Nanomaterial.CoreCompositions)
		}
		merged.Paper.ExtractionMethod = types.MethodHybridLLM
		merged.Paper.LLMStatus = types.StatusPatchMerged
		*rec = merged
	}
	return rec.Paper.LLMStatus
}
