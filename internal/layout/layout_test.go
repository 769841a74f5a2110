// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func line(text string, size, y float64) Line {
	return Line{Spans: []Span{{Text: text, Size: size, BBox: Rect{X0: 50, Y0: y, X1: 500, Y1: y + size}}}}
}

func textPage(lines ...Line) Page {
	return Page{Number: 1, Width: 595, Height: 842, Blocks: []Block{{Type: BlockText, Lines: lines}}}
}

func TestDetectTitleMergesWrappedLines(t *testing.T) {
	page := textPage(
		line("Synthesis and", 18, 100),
		line("Characterization of ZnO Nanoparticles", 18, 124),
		line("Department of Chemistry, University of Somewhere", 10, 112),
	)

	title, ok := DetectTitle(page)
	assert.True(t, ok)
	assert.Equal(t, "Synthesis and Characterization of ZnO Nanoparticles", title)
}

func TestDetectTitleThreeLines(t *testing.T) {
	page := textPage(
		line("Long-term pulmonary effects of", 16, 80),
		line("multi-walled carbon nanotubes", 16, 100),
		line("in a murine inhalation model", 15.6, 120),
	)

	title, ok := DetectTitle(page)
	assert.True(t, ok)
	assert.Equal(t, "Long-term pulmonary effects of multi-walled carbon nanotubes in a murine inhalation model", title)
}

func TestDetectTitleFilters(t *testing.T) {
	tests := []struct {
		name  string
		page  Page
		want  string
		found bool
	}{
		{
			name: "skips publisher banner even when largest",
			page: textPage(
				line("Journal of Nanomedicine, Elsevier", 24, 40),
				line("Silver nanoparticles induce oxidative stress", 16, 120),
			),
			want:  "Silver nanoparticles induce oxidative stress",
			found: true,
		},
		{
			name: "skips article type label",
			page: textPage(
				line("Research Article", 20, 40),
				line("Graphene oxide uptake in macrophages", 16, 120),
			),
			want:  "Graphene oxide uptake in macrophages",
			found: true,
		},
		{
			name: "skips author lines",
			page: textPage(
				line("A. Smith, B. Jones, C. Li, D. Park", 20, 150),
				line("Titanium dioxide photocatalysis revisited", 16, 100),
			),
			want:  "Titanium dioxide photocatalysis revisited",
			found: true,
		},
		{
			name:  "rejects short lines",
			page:  textPage(line("Abstract", 20, 100)),
			found: false,
		},
		{
			name: "ignores image blocks",
			page: Page{Blocks: []Block{{Type: BlockImage, Lines: []Line{line("Figure caption text here", 20, 10)}}}},
			found: false,
		},
		{
			name: "does not merge line far below",
			page: textPage(
				line("Quantum dots in drug delivery", 18, 100),
				line("Another same-size heading far away", 18, 300),
			),
			want:  "Quantum dots in drug delivery",
			found: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := DetectTitle(tt.page)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestDetectTitleTruncates(t *testing.T) {
	long := strings.Repeat("nanoparticle ", 19) // 247 chars
	page := textPage(
		line(long, 18, 100),
		line(long, 18, 120),
	)
	title, ok := DetectTitle(page)
	assert.True(t, ok)
	assert.Len(t, []rune(title), maxTitleLen)
}

func TestIsBoilerplate(t *testing.T) {
	assert.True(t, IsBoilerplate("  Editorial "))
	assert.True(t, IsBoilerplate("© 2021 Elsevier Inc. All rights reserved."))
	assert.True(t, IsBoilerplate("doi: 10.1016/j.nano.2020.01.002"))
	assert.False(t, IsBoilerplate("Editorial policies for nanosafety data"))
}

func TestLineTextJoinedSpans(t *testing.T) {
	l := Line{Spans: []Span{
		{Text: "Toxicity of TiO", Size: 18},
		{Text: "2", Size: 12, Joined: true},
		{Text: "Nanoparticles", Size: 18},
	}}
	assert.Equal(t, "Toxicity of TiO2 Nanoparticles", l.Text())
}
