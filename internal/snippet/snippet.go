// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snippet selects short, labeled windows of document text around
// characterization keywords. The bundle bounds how much of a document is
// ever shown to a refinement oracle.
package snippet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/nanoextract/internal/extract"
	"github.com/pdiddy/nanoextract/pkg/types"
)

// Defaults for SnippetConfig fields left at zero.
const (
	DefaultWindow      = 180
	DefaultMaxSnippets = 12
	perCategory        = 2
	dedupPrefix        = 120
)

// Snippet is one labeled excerpt.
type Snippet struct {
	Category string
	Text     string
}

// String renders the snippet as "[category] text".
func (s Snippet) String() string {
	return fmt.Sprintf("[%s] %s", s.Category, s.Text)
}

type category struct {
	name string
	re   *regexp.Regexp
}

// categories are scanned in this order; output preserves it.
var categories = []category{
	{"particle_size", regexp.MustCompile(`(?i)\bparticle\s+size|\bhydrodynamic\s+(?:size|diameter)|\bdiameter\b|\bDLS\b`)},
	{"zeta_potential", regexp.MustCompile(`(?i)\bzeta[- ]potential|ζ`)},
	{"pdi", regexp.MustCompile(`(?i)\bPDI\b|\bpolydispersity`)},
	{"bet", regexp.MustCompile(`(?i)\bBET\b|\bsurface\s+area`)},
	{"endotoxin", regexp.MustCompile(`(?i)\bendotoxins?\b`)},
	{"tem", regexp.MustCompile(`(?i)\bTEM\b|\btransmission\s+electron\s+microscop`)},
	{"supplier", regexp.MustCompile(`(?i)\b(?:purchased|obtained|supplied)\s+(?:from|by)\b|\bsupplier\b|\bmanufacturer\b`)},
	{"cas", regexp.MustCompile(`\bCAS\b|\b\d{2,7}-\d{2}-\d\b`)},
}

// Build returns up to cfg.MaxSnippets snippets in discovery order, at most
// two per category, deduplicated on category plus the first 120 characters.
func Build(text string, cfg types.SnippetConfig) []Snippet {
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}
	limit := cfg.MaxSnippets
	if limit <= 0 {
		limit = DefaultMaxSnippets
	}

	seen := make(map[string]bool)
	var out []Snippet
	for _, c := range categories {
		for _, loc := range c.re.FindAllStringIndex(text, perCategory) {
			s := Snippet{
				Category: c.name,
				Text:     extract.Collapse(extract.Window(text, loc[0], loc[1], window, window)),
			}
			key := c.name + "\x00" + extract.Truncate(s.Text, dedupPrefix)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// Bundle joins snippets one per line.
func Bundle(snippets []Snippet) string {
	lines := make([]string, len(snippets))
	for i, s := range snippets {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
