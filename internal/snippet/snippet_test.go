// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nanoextract/pkg/types"
)

func TestBuildLabelsAndOrders(t *testing.T) {
	text := "The zeta potential was -20 mV.\n\nA PDI of 0.2 was found. Endotoxin was below 0.1 EU/mg."

	got := Build(text, types.SnippetConfig{Window: 10})
	require.Len(t, got, 3)
	assert.Equal(t, "zeta_potential", got[0].Category)
	assert.Equal(t, "pdi", got[1].Category)
	assert.Equal(t, "endotoxin", got[2].Category)
	assert.NotContains(t, got[0].Text, "\n")
	assert.True(t, strings.HasPrefix(got[1].String(), "[pdi] "))
}

func TestBuildCapsPerCategoryAndTotal(t *testing.T) {
	text := strings.Repeat("diameter measured again and again; ", 5)

	got := Build(text, types.SnippetConfig{Window: 5})
	assert.Len(t, got, 2, "at most two matches per category")

	many := "diameter zeta potential PDI BET endotoxin TEM supplier CAS"
	got = Build(many, types.SnippetConfig{Window: 200, MaxSnippets: 3})
	assert.Len(t, got, 3)
}

func TestBuildDeduplicates(t *testing.T) {
	// Both PDI hits sit in the same window, so the excerpts are identical.
	text := "PDI PDI"
	got := Build(text, types.SnippetConfig{Window: 50})
	assert.Len(t, got, 1)
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, Build("", types.SnippetConfig{}))
	assert.Empty(t, Bundle(nil))
}

func TestBundle(t *testing.T) {
	b := Bundle([]Snippet{{Category: "bet", Text: "45 m2/g"}, {Category: "cas", Text: "CAS 7440-22-4"}})
	assert.Equal(t, "[bet] 45 m2/g\n[cas] CAS 7440-22-4", b)
}

func TestAbstract(t *testing.T) {
	text := "Title\nAbstract\nSilver particles\nwere studied.\nKeywords: silver; toxicity\nINTRODUCTION\n"
	assert.Equal(t, "Silver particles were studied.", Abstract(text))

	text = "ABSTRACT: ZnO dissolves quickly.\nINTRODUCTION\nBody"
	assert.Equal(t, ": ZnO dissolves quickly.", Abstract(text))

	assert.Empty(t, Abstract("no heading here"))
}

func TestKeywordsHint(t *testing.T) {
	text := "Abstract text\nKey words: nanosilver, ecotoxicity\nBody"
	assert.Equal(t, "nanosilver, ecotoxicity", KeywordsHint(text))
	assert.Empty(t, KeywordsHint("nothing"))
}

func TestRemoveReferences(t *testing.T) {
	text := "Body text about TiO2.\nReferences\n[1] Someone 2019"
	assert.Equal(t, "Body text about TiO2.", RemoveReferences(text))
	assert.Equal(t, "no refs", RemoveReferences("no refs"))
}
