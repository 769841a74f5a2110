// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCompositions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "sorts case-insensitively", in: []string{"ZnO", "Ag", "TiO2"}, want: []string{"Ag", "TiO2", "ZnO"}},
		{name: "dedups by lower case", in: []string{"tio2", "TiO2", "ZnO"}, want: []string{"TiO2", "ZnO"}},
		{name: "drops blanks", in: []string{" ", "", "Au "}, want: []string{"Au"}},
		{name: "empty is nil", in: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCompositions(tt.in))
		})
	}
}

func TestRecordMapRoundTrip(t *testing.T) {
	r := Record{
		Paper:        Paper{Title: "Zinc oxide toxicity", Year: 2020, ExtractionMethod: MethodRules},
		Nanomaterial: Nanomaterial{CoreCompositions: []string{"ZnO"}, ZetaWater: "-18.3 mV"},
	}

	m, err := r.ToMap()
	require.NoError(t, err)

	paper := m["paper"].(map[string]any)
	assert.Equal(t, "Zinc oxide toxicity", paper["title"])
	assert.NotContains(t, paper, "doi", "unknown fields are omitted")

	back, err := RecordFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestRecordFromMapRejectsWrongKind(t *testing.T) {
	_, err := RecordFromMap(map[string]any{
		"paper": map[string]any{"year": "not a year"},
	})
	assert.Error(t, err)
}

func TestPatchMap(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())

	p := Patch{Nanomaterial: map[string]any{"cas_number": "1317-70-0"}}
	assert.False(t, p.IsEmpty())
	assert.Equal(t, map[string]any{
		"nanomaterial": map[string]any{"cas_number": "1317-70-0"},
	}, p.Map())
}
