// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nanoextract/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "out", "nano.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(hash string) types.Result {
	return types.Result{
		RunID: "run-1",
		Record: types.Record{
			Paper: types.Paper{
				FilePath:         "papers/" + hash + ".pdf",
				FileHash:         hash,
				Title:            "Zinc oxide nanoparticles in A549 cells",
				Year:             2020,
				DOI:              "10.1016/j.nano.2020.01.002",
				ExtractionMethod: types.MethodHybridLLM,
				LLMModel:         "llama3.1",
				LLMStatus:        types.StatusPatchMerged,
			},
			Nanomaterial: types.Nanomaterial{
				CoreCompositions: []string{"TiO2", "ZnO"},
				NMCategory:       "metal_oxide",
				ZetaWater:        "-18.3 mV",
				ZetaMedium:       "-9.1 mV",
			},
			BioEffects: types.BioEffects{CellViability: "85%", ROS: "mentioned"},
		},
	}
}

func count(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM `+table).Scan(&n))
	return n
}

func TestOpenCreatesSchema(t *testing.T) {
	s := testStore(t)
	for _, table := range []string{"papers", "nanomaterials"} {
		var name string
		err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleResult("abc")))
	require.NoError(t, s.Save(ctx, sampleResult("abc")))
	require.NoError(t, s.Save(ctx, sampleResult("def")))

	assert.Equal(t, 2, count(t, s, "papers"))
	assert.Equal(t, 2, count(t, s, "nanomaterials"))

	has, err := s.Has(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = s.Has(ctx, "zzz")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSaveRequiresHash(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.Save(context.Background(), types.Result{}))
}

func TestSaveStoresColumns(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save(context.Background(), sampleResult("abc")))

	var compositions, category, runID string
	var doi, sourceURL *string
	err := s.db.QueryRow(`SELECT n.core_compositions, n.nm_category, p.run_id, p.doi, p.source_url
		FROM nanomaterials n JOIN papers p ON p.id = n.paper_id`).Scan(&compositions, &category, &runID, &doi, &sourceURL)
	require.NoError(t, err)

	assert.Equal(t, "TiO2; ZnO", compositions)
	assert.Equal(t, "metal_oxide", category)
	assert.Equal(t, "run-1", runID)
	require.NotNil(t, doi)
	assert.Equal(t, "10.1016/j.nano.2020.01.002", *doi)
	assert.Nil(t, sourceURL, "unknown fields are stored as NULL")
}

func TestRecordsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	want := sampleResult("abc")
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Records(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.Record, got[0])
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleResult("abc")))

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf, FormatJSON))
	var fromJSON []types.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "-18.3 mV", fromJSON[0].Nanomaterial.ZetaWater)

	buf.Reset()
	require.NoError(t, s.Export(ctx, &buf, FormatYAML))
	assert.Contains(t, buf.String(), "zeta_potential_water_mV:")
	var fromYAML []types.Record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, fromJSON, fromYAML)

	assert.Error(t, s.Export(ctx, &buf, "csv"))
}

func TestExportEmpty(t *testing.T) {
	s := testStore(t)
	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())
}
