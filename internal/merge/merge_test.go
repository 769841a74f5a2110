// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nanoextract/pkg/types"
)

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"blank string", "  \t", true},
		{"string", "TiO2", false},
		{"empty list", []any{}, true},
		{"empty string list", []string{}, true},
		{"list", []any{"a"}, false},
		{"empty map", map[string]any{}, true},
		{"zero number", 0, false},
		{"false", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmpty(tt.v))
		})
	}
}

func TestMapsNonDestructive(t *testing.T) {
	draft := map[string]any{
		"paper":        map[string]any{"title": "Draft title", "doi": "10.1/x"},
		"nanomaterial": map[string]any{"cas_number": "1317-70-0"},
	}
	patch := map[string]any{
		"paper":        map[string]any{"title": "", "year": nil},
		"nanomaterial": map[string]any{"cas_number": "   ", "core_compositions": []any{}},
	}

	got := Maps(draft, patch)
	assert.Equal(t, draft, got, "empty patch values never replace draft values")
}

func TestMapsUntouchedKeys(t *testing.T) {
	draft := map[string]any{"paper": map[string]any{"title": "T", "doi": "10.1/x"}}
	patch := map[string]any{"paper": map[string]any{"title": "Better title"}}

	got := Maps(draft, patch)
	paper := got["paper"].(map[string]any)
	assert.Equal(t, "Better title", paper["title"])
	assert.Equal(t, "10.1/x", paper["doi"])
}

func TestMapsOverrideUnknown(t *testing.T) {
	draft := map[string]any{"nanomaterial": map[string]any{}}
	patch := map[string]any{"nanomaterial": map[string]any{"core_compositions": []any{"TiO2"}}}

	got := Maps(draft, patch)
	assert.Equal(t, []any{"TiO2"}, got["nanomaterial"].(map[string]any)["core_compositions"])
}

func TestMapsDoesNotMutateInputs(t *testing.T) {
	draft := map[string]any{"paper": map[string]any{"title": "T"}}
	patch := map[string]any{"paper": map[string]any{"doi": "10.1/x"}, "extra": []any{"a"}}

	got := Maps(draft, patch)
	got["paper"].(map[string]any)["title"] = "changed"
	got["extra"].([]any)[0] = "b"

	assert.Equal(t, map[string]any{"paper": map[string]any{"title": "T"}}, draft)
	assert.Equal(t, []any{"a"}, patch["extra"])
}

func TestMapsScalarReplacesMap(t *testing.T) {
	got := Maps(map[string]any{"k": map[string]any{"a": 1}}, map[string]any{"k": "v"})
	assert.Equal(t, "v", got["k"])
}

func TestApply(t *testing.T) {
	draft := types.Record{
		Paper: types.Paper{Title: "Rules title", Year: 2019, ExtractionMethod: types.MethodRules},
		Nanomaterial: types.Nanomaterial{
			CoreCompositions: []string{"ZnO"},
			ZetaWater:        "-18.3 mV",
		},
	}
	patch := types.Patch{
		Paper: map[string]any{"year": 2020, "doi": "10.1016/j.nano.2020.01.002"},
		Nanomaterial: map[string]any{
			"core_compositions": []string{"zno", "TiO2", "ZnO"},
			"zeta_potential_water_mV": "",
			"nm_category":             "metal_oxide",
		},
	}

	got, err := Apply(draft, patch)
	require.NoError(t, err)

	assert.Equal(t, "Rules title", got.Paper.Title)
	assert.Equal(t, 2020, got.Paper.Year)
	assert.Equal(t, "10.1016/j.nano.2020.01.002", got.Paper.DOI)
	assert.Equal(t, []string{"TiO2", "ZnO"}, got.Nanomaterial.CoreCompositions)
	assert.Equal(t, "-18.3 mV", got.Nanomaterial.ZetaWater)
	assert.Equal(t, "metal_oxide", got.Nanomaterial.NMCategory)

	assert.Equal(t, []string{"ZnO"}, draft.Nanomaterial.CoreCompositions, "draft is unchanged")
}

func TestApplyEmptyPatch(t *testing.T) {
	draft := types.Record{Paper: types.Paper{Title: "T"}}
	got, err := Apply(draft, types.Patch{})
	require.NoError(t, err)
	assert.Equal(t, draft, got)
}

func TestApplyRejectsUnrepresentableValue(t *testing.T) {
	draft := types.Record{Paper: types.Paper{Title: "T", Year: 2019}}
	_, err := Apply(draft, types.Patch{Paper: map[string]any{"year": "twenty twenty"}})
	assert.Error(t, err)
}
