// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout models positioned page text and detects article titles from
// visual cues (font size and vertical position) on the first page.
package layout

import (
	"sort"
	"strings"
)

// BlockType distinguishes text blocks from images and other drawings.
type BlockType int

const (
	BlockText BlockType = iota
	BlockImage
)

// Rect is a bounding box in layout units with Y growing downward.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Span is a run of text with a single font size.
type Span struct {
	Text string
	Size float64
	BBox Rect

	// Joined marks a span that continues the previous one without a word
	// break, such as a subscript in "TiO2".
	Joined bool
}

// Line is a sequence of spans on one baseline.
type Line struct {
	Spans []Span
}

// Block groups lines that belong together visually.
type Block struct {
	Type  BlockType
	Lines []Line
}

// Page is the positioned representation of one document page.
type Page struct {
	Number int
	Width  float64
	Height float64
	Blocks []Block
}

// Text returns the line's span texts with whitespace collapsed. Spans are
// separated by a space unless Joined.
func (l Line) Text() string {
	var b strings.Builder
	for i, s := range l.Spans {
		if i > 0 && !s.Joined {
			b.WriteByte(' ')
		}
		b.WriteString(s.Text)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MaxSize returns the largest font size among the line's spans.
func (l Line) MaxSize() float64 {
	var m float64
	for _, s := range l.Spans {
		if s.Size > m {
			m = s.Size
		}
	}
	return m
}

// Top returns the smallest Y0 among the line's spans.
func (l Line) Top() float64 {
	if len(l.Spans) == 0 {
		return 0
	}
	top := l.Spans[0].BBox.Y0
	for _, s := range l.Spans[1:] {
		if s.BBox.Y0 < top {
			top = s.BBox.Y0
		}
	}
	return top
}

// Text returns the block's lines joined by newlines.
func (b Block) Text() string {
	lines := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		if t := l.Text(); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

const (
	minTitleLen     = 12
	maxTitleLineLen = 250
	maxTitleLen     = 300
	sizeTolerance   = 1.0
	maxLineGap      = 60.0
	mergeLookahead  = 7
)

var boilerplateExact = map[string]bool{
	"review article":      true,
	"research article":    true,
	"original article":    true,
	"short communication": true,
	"editorial":           true,
	"erratum":             true,
}

var boilerplateContains = []string{
	"elsevier",
	"springer",
	"wiley",
	"nanomedicine",
	"nanomedjournal.com",
	"potential clinical significance",
	"crossmark",
	"copyright",
	"all rights reserved",
	"doi:",
	"available online",
	"received",
	"accepted",
}

// IsBoilerplate reports whether s is a publisher banner, article-type label
// or other front-matter line that is never a title.
func IsBoilerplate(s string) bool {
	low := strings.ToLower(strings.TrimSpace(s))
	if boilerplateExact[low] {
		return true
	}
	for _, b := range boilerplateContains {
		if strings.Contains(low, b) {
			return true
		}
	}
	return false
}

// isAuthorLine catches author lists and affiliation lines.
func isAuthorLine(s string) bool {
	return strings.Count(s, ",") >= 3 || strings.Contains(strings.ToLower(s), "phd")
}

type candidate struct {
	text  string
	size  float64
	y     float64
	score float64
}

// DetectTitle returns the most likely title on page and whether one was
// found. Lines are scored by font size with a small bias toward the top of
// the page; a title that wraps onto same-sized lines directly below the best
// line is merged back in reading order.
func DetectTitle(page Page) (string, bool) {
	var cands []candidate
	for _, b := range page.Blocks {
		if b.Type != BlockText {
			continue
		}
		for _, l := range b.Lines {
			text := l.Text()
			if text == "" || IsBoilerplate(text) || isAuthorLine(text) {
				continue
			}
			n := len([]rune(text))
			if n < minTitleLen || n > maxTitleLineLen {
				continue
			}
			size, y := l.MaxSize(), l.Top()
			cands = append(cands, candidate{
				text:  text,
				size:  size,
				y:     y,
				score: 10*size - 0.01*y,
			})
		}
	}
	if len(cands) == 0 {
		return "", false
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	anchor := cands[0]
	picked := []candidate{anchor}
	end := min(len(cands), 1+mergeLookahead)
	for _, c := range cands[1:end] {
		dy := c.y - anchor.y
		if abs(c.size-anchor.size) <= sizeTolerance && dy > 0 && dy < maxLineGap {
			picked = append(picked, c)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].y < picked[j].y })

	parts := make([]string, len(picked))
	for i, c := range picked {
		parts[i] = c.text
	}
	title := strings.Join(parts, " ")
	if r := []rune(title); len(r) > maxTitleLen {
		title = strings.TrimSpace(string(r[:maxTitleLen]))
	}
	return title, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
