// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/nanoextract/internal/layout"
)

// Glyph is one positioned text run as reported by a PDF content stream.
// X and Y locate the baseline origin in PDF space (Y grows upward).
type Glyph struct {
	S        string
	X, Y, W  float64
	FontSize float64
}

// Tolerances relative to font size.
const (
	baselineTolerance = 0.35
	wordGapFactor     = 0.18
	blockGapFactor    = 1.8
	sizeTolerance     = 0.1
)

type row struct {
	baseline float64
	glyphs   []Glyph
}

// BuildPage groups glyphs into spans, lines and blocks in a top-down
// coordinate space of the given height. Glyphs sharing a baseline form a
// line; a baseline distance above blockGapFactor times the larger font size
// of two consecutive lines starts a new block.
func BuildPage(number int, width, height float64, glyphs []Glyph) layout.Page {
	page := layout.Page{Number: number, Width: width, Height: height}

	sorted := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) != "" || g.S == " " {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows []row
	for _, g := range sorted {
		tol := math.Max(1, baselineTolerance*g.FontSize)
		if n := len(rows); n > 0 && math.Abs(rows[n-1].baseline-g.Y) <= tol {
			rows[n-1].glyphs = append(rows[n-1].glyphs, g)
			continue
		}
		rows = append(rows, row{baseline: g.Y, glyphs: []Glyph{g}})
	}

	var block layout.Block
	var prevBaseline, prevSize float64
	for _, r := range rows {
		line := buildLine(r.glyphs, height)
		if len(line.Spans) == 0 {
			continue
		}
		baseline := height - r.baseline
		size := math.Max(line.MaxSize(), prevSize)
		if len(block.Lines) > 0 && baseline-prevBaseline > blockGapFactor*size {
			page.Blocks = append(page.Blocks, block)
			block = layout.Block{}
		}
		block.Type = layout.BlockText
		block.Lines = append(block.Lines, line)
		prevBaseline = baseline
		prevSize = line.MaxSize()
	}
	if len(block.Lines) > 0 {
		page.Blocks = append(page.Blocks, block)
	}
	return page
}

// buildLine merges a row's glyphs into spans. A new span starts at a
// horizontal gap wider than a word space or at a font size change; only the
// former is a word break.
func buildLine(glyphs []Glyph, height float64) layout.Line {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var line layout.Line
	var cur *layout.Span
	var b strings.Builder
	// spaced is set when a space glyph or a word gap precedes the next span.
	var spaced bool
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			line.Spans = append(line.Spans, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			spaced = true
			continue
		}
		if cur != nil {
			switch {
			case g.X-cur.BBox.X1 > wordGapFactor*g.FontSize:
				flush()
				spaced = true
			case math.Abs(g.FontSize-cur.Size) > sizeTolerance:
				flush()
			}
		}
		top := height - g.Y - g.FontSize
		bottom := height - g.Y
		if cur == nil {
			cur = &layout.Span{
				Size:   g.FontSize,
				BBox:   layout.Rect{X0: g.X, Y0: top, X1: g.X + g.W, Y1: bottom},
				Joined: len(line.Spans) > 0 && !spaced,
			}
			spaced = false
		} else {
			cur.BBox.X1 = math.Max(cur.BBox.X1, g.X+g.W)
			cur.BBox.Y0 = math.Min(cur.BBox.Y0, top)
			cur.BBox.Y1 = math.Max(cur.BBox.Y1, bottom)
		}
		b.WriteString(g.S)
	}
	flush()
	return line
}
