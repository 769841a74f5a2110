// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snippet

import (
	"regexp"

	"github.com/pdiddy/nanoextract/internal/extract"
)

var (
	abstractRe     = regexp.MustCompile(`(?s)(?i:\babstract\b)(.*?)(?:(?i:\bkey\s*words?\b)|\n[A-Z][A-Z ]{3,}\n)`)
	keywordsLineRe = regexp.MustCompile(`(?i)(?:^|\n)\s*key\s*words?\s*[:\-]\s*([^\n]{0,500})`)
	referencesRe   = regexp.MustCompile(`(?i)\n[ \t]*(?:references?|bibliography)[ \t]*\n`)
)

// Abstract returns the text between an "Abstract" heading and the keywords
// line or the next all-caps heading, whitespace collapsed.
func Abstract(text string) string {
	m := abstractRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return extract.Collapse(m[1])
}

// KeywordsHint returns up to 500 characters following a "Keywords:" label.
func KeywordsHint(text string) string {
	m := keywordsLineRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return extract.Collapse(m[1])
}

// RemoveReferences cuts text at the first reference-list heading.
func RemoveReferences(text string) string {
	if loc := referencesRe.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}
