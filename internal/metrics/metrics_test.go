// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nanoextract/pkg/types"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Document(OutcomeExtracted, time.Second)
	m.Document(OutcomeExtracted, time.Second)
	m.Document(OutcomeFailed, time.Millisecond)
	m.Refinement(types.StatusPatchMerged, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues(OutcomeExtracted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refinements.WithLabelValues(types.StatusPatchMerged)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Document(OutcomeExtracted, time.Second)
	m.Refinement(types.StatusNoPatch, time.Second)
	m.RunFinished(true)
	assert.NoError(t, m.WriteFile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.Document(OutcomeSkipped, 0)
	m.RunFinished(true)

	path := filepath.Join(t.TempDir(), "nanoextract.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `nanoextract_documents_total{outcome="skipped"} 1`)
	assert.Contains(t, string(data), "nanoextract_last_run_success 1")
}
