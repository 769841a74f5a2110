// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/nanoextract/internal/document"
	"github.com/pdiddy/nanoextract/internal/metrics"
	"github.com/pdiddy/nanoextract/internal/refine"
	"github.com/pdiddy/nanoextract/pkg/types"
)

const paperText = `Research Article
Zinc oxide nanoparticles and oxidative stress in A549 cells
A. Smith, B. Jones
https://doi.org/10.1016/j.nano.2020.01.002
Published 2020

Abstract
ZnO nanoparticles (CAS No. 1314-13-2) were purchased from Sigma-Aldrich.
The zeta potential in water was -18.3 mV. The zeta potential in medium was -9.1 mV.
In vitro cell viability was 85% after 24 h.
Keywords: Zinc oxide; Nanotoxicology

References
1. Someone. TiO2 nanoparticles revisited. 2011.
`

// fakeReader serves documents from memory; paths missing from docs fail.
type fakeReader struct {
	docs map[string]document.Document
}

func (f *fakeReader) Read(ctx context.Context, path string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}
	doc, ok := f.docs[path]
	if !ok {
		return document.Document{}, errors.New("not a PDF")
	}
	return doc, nil
}

type stubOracle struct {
	reply string
	err   error

	mu    sync.Mutex
	calls int
}

func (s *stubOracle) Complete(_ context.Context, _ []refine.Message) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.reply, s.err
}

type memorySink struct {
	mu      sync.Mutex
	results []types.Result
	seen    map[string]bool
	closed  bool
}

func (m *memorySink) Save(_ context.Context, res types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

// dedupSink also reports fingerprints it was seeded with.
type dedupSink struct {
	memorySink
}

func (d *dedupSink) Has(_ context.Context, hash string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[hash], nil
}

func sampleDoc(path, hash string) document.Document {
	return document.Document{Path: path, Hash: hash, Pages: []string{paperText}}
}

func TestBuildDraft(t *testing.T) {
	d := BuildDraft(sampleDoc("papers/zno.pdf", "abc"), 0)
	rec := d.Record

	assert.Equal(t, "papers/zno.pdf", rec.Paper.FilePath)
	assert.Equal(t, "abc", rec.Paper.FileHash)
	assert.Equal(t, types.MethodRules, rec.Paper.ExtractionMethod)
	assert.Equal(t, "10.1016/j.nano.2020.01.002", rec.Paper.DOI)
	assert.Equal(t, 2020, rec.Paper.Year)
	assert.Equal(t, "-18.3 mV", rec.Nanomaterial.ZetaWater)
	assert.Equal(t, "-9.1 mV", rec.Nanomaterial.ZetaMedium)
	assert.Equal(t, []string{"ZnO"}, rec.Nanomaterial.CoreCompositions)
	assert.NotContains(t, d.CleanText, "revisited")
	assert.Empty(t, rec.Paper.LLMStatus)
}

func TestProcessRulesOnly(t *testing.T) {
	p := &Processor{}
	res := p.Process(context.Background(), sampleDoc("zno.pdf", "abc"))
	assert.Equal(t, types.MethodRules, res.Record.Paper.ExtractionMethod)
	assert.Empty(t, res.Record.Paper.LLMModel)
	assert.Empty(t, res.Record.Paper.LLMStatus)
	assert.Empty(t, res.RawRefinement)
}

func TestProcessRefinement(t *testing.T) {
	tests := []struct {
		name       string
		oracle     *stubOracle
		wantStatus string
		wantMethod types.ExtractionMethod
		wantTitle  string
	}{
		{
			name:       "patch merged",
			oracle:     &stubOracle{reply: `{"paper": {"title": "Refined title"}, "nanomaterial": {"core_compositions": ["ZnO", "TiO2"], "nm_category": ""}}`},
			wantStatus: types.StatusPatchMerged,
			wantMethod: types.MethodHybridLLM,
			wantTitle:  "Refined title",
		},
		{
			name:       "unparseable reply",
			oracle:     &stubOracle{reply: "I could not find anything."},
			wantStatus: types.StatusNoPatch,
			wantMethod: types.MethodRules,
			wantTitle:  "Zinc oxide nanoparticles and oxidative stress in A549 cells",
		},
		{
			name:       "only disallowed fields",
			oracle:     &stubOracle{reply: `{"paper": {"evil_field": "x"}}`},
			wantStatus: types.StatusNoPatch,
			wantMethod: types.MethodRules,
			wantTitle:  "Zinc oxide nanoparticles and oxidative stress in A549 cells",
		},
		{
			name:       "oracle down",
			oracle:     &stubOracle{err: errors.New("connection refused")},
			wantStatus: types.StatusOracleError,
			wantMethod: types.MethodRules,
			wantTitle:  "Zinc oxide nanoparticles and oxidative stress in A549 cells",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			p := &Processor{
				Refiner: &refine.Refiner{Oracle: tt.oracle},
				Model:   "llama3.1",
				Metrics: m,
				Log:     zap.NewNop(),
			}
			res := p.Process(context.Background(), sampleDoc("zno.pdf", "abc"))

			assert.Equal(t, 1, tt.oracle.calls)
			assert.Equal(t, tt.wantStatus, res.Record.Paper.LLMStatus)
			assert.Equal(t, tt.wantMethod, res.Record.Paper.ExtractionMethod)
			assert.Equal(t, tt.wantTitle, res.Record.Paper.Title)
			assert.Equal(t, "llama3.1", res.Record.Paper.LLMModel)
			assert.Equal(t, tt.oracle.reply, res.RawRefinement)
			// Rules values survive whatever the oracle did.
			assert.Equal(t, "-18.3 mV", res.Record.Nanomaterial.ZetaWater)
			assert.Equal(t, "-9.1 mV", res.Record.Nanomaterial.ZetaMedium)
		})
	}
}

func TestProcessMergedCategoryFilled(t *testing.T) {
	p := &Processor{Refiner: &refine.Refiner{Oracle: &stubOracle{
		reply: `{"nanomaterial": {"core_compositions": ["TiO2"]}}`,
	}}}
	res := p.Process(context.Background(), sampleDoc("zno.pdf", "abc"))
	require.Equal(t, types.StatusPatchMerged, res.Record.Paper.LLMStatus)
	assert.Equal(t, []string{"TiO2"}, res.Record.Nanomaterial.CoreCompositions)
	assert.NotEmpty(t, res.Record.Nanomaterial.NMCategory)
}

func TestFinishMergeError(t *testing.T) {
	p := &Processor{}
	res := types.Result{Record: types.Record{Paper: types.Paper{Title: "kept", ExtractionMethod: types.MethodRules}}}
	patch := types.Patch{Paper: map[string]any{"year": "twenty twenty"}}

	status := p.finish(&res, patch, nil, zap.NewNop())
	assert.Equal(t, types.StatusMergeError, status)
	assert.Equal(t, "kept", res.Record.Paper.Title)
	assert.Equal(t, types.MethodRules, res.Record.Paper.ExtractionMethod)
}

func TestRun(t *testing.T) {
	reader := &fakeReader{docs: map[string]document.Document{
		"in/a.pdf": sampleDoc("in/a.pdf", "hash-a"),
		"in/b.pdf": sampleDoc("in/b.pdf", "hash-b"),
		"in/c.pdf": sampleDoc("in/c.pdf", "hash-c"),
	}}
	sink := &dedupSink{memorySink{seen: map[string]bool{"hash-b": true}}}
	results := &memorySink{}

	r := &Runner{
		Reader:    reader,
		Processor: &Processor{},
		Sinks:     []Sink{sink, results},
		Workers:   2,
		Metrics:   metrics.New(),
	}

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), []string{"in/a.pdf", "in/b.pdf", "in/c.pdf", "in/broken.pdf"}, &out)
	require.NoError(t, err)

	assert.Equal(t, BatchSummary{Extracted: 2, Skipped: 1, Failed: 1}, summary)
	assert.Equal(t, 4, summary.Total())
	assert.True(t, summary.HasFailures())

	text := out.String()
	assert.Contains(t, text, "extracted a.pdf (rules)")
	assert.Contains(t, text, "skipped b.pdf")
	assert.Contains(t, text, "failed  broken.pdf: not a PDF")
	assert.Contains(t, text, "Batch summary: 2 extracted, 1 skipped, 1 failed (total: 4)")

	require.Len(t, results.results, 2)
	var files []string
	for _, res := range results.results {
		files = append(files, filepath.Base(res.Record.Paper.FilePath))
		assert.NotEmpty(t, res.RunID)
		assert.Equal(t, results.results[0].RunID, res.RunID)
	}
	sort.Strings(files)
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, files)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Reader: &fakeReader{}, Processor: &Processor{}}
	var out bytes.Buffer
	summary, err := r.Run(ctx, []string{"in/a.pdf"}, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Total())
	assert.Contains(t, out.String(), "total: 0")
}

// cancelOracle cancels the run from inside the first refinement call.
type cancelOracle struct {
	cancel context.CancelFunc
}

func (c *cancelOracle) Complete(ctx context.Context, _ []refine.Message) (string, error) {
	c.cancel()
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRunCancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{docs: map[string]document.Document{
		"in/a.pdf": sampleDoc("in/a.pdf", "hash-a"),
		"in/b.pdf": sampleDoc("in/b.pdf", "hash-b"),
		"in/c.pdf": sampleDoc("in/c.pdf", "hash-c"),
	}}
	results := &memorySink{}
	r := &Runner{
		Reader:    reader,
		Processor: &Processor{Refiner: &refine.Refiner{Oracle: &cancelOracle{cancel: cancel}}},
		Sinks:     []Sink{results},
		Workers:   1,
	}

	var out bytes.Buffer
	summary, err := r.Run(ctx, []string{"in/a.pdf", "in/b.pdf", "in/c.pdf"}, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BatchSummary{Extracted: 1}, summary)
	assert.NotContains(t, out.String(), "failed  ")
	assert.Contains(t, out.String(), "Batch summary: 1 extracted, 0 skipped, 0 failed (total: 1)")
	require.Len(t, results.results, 1)
	assert.Equal(t, types.StatusOracleError, results.results[0].Record.Paper.LLMStatus)
}
