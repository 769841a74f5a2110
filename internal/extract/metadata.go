// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/nanoextract/internal/layout"
	"github.com/pdiddy/nanoextract/pkg/types"
)

var (
	doiRe  = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:A-Z0-9]+\b`)
	yearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	urlRe  = regexp.MustCompile(`\bhttps?://[^\s<>"']+`)
	wwwRe  = regexp.MustCompile(`\bwww\.[^\s<>"']+`)

	keywordsHeaderRe = regexp.MustCompile(`(?i)\bkey\s?words?\s*[:\-–—]?\s*`)
	meshHeaderRe     = regexp.MustCompile(`(?i)\bMeSH(?:\s+(?:terms|headings|keywords))?\s*[:\-–—]\s*`)
	keywordsStopRe   = regexp.MustCompile(`(?i)\n\s*\n|\n\s*(?:abstract|introduction|background|highlights|abbreviations|graphical abstract|1\.?\s+introduction)\b|\b(?:in this (?:study|work|paper)|here(?:in)?,? we|we (?:report|present|investigated?|show))\b`)
	keywordsSplitRe  = regexp.MustCompile(`[;,•·]`)
)

const (
	keywordBlockLen = 600
	maxKeywords     = 12
	maxKeywordLen   = 80
	maxKeywordWords = 6
)

// Paper extracts bibliographic fields from the text of the leading pages.
// File identity and provenance fields are left to the caller.
func Paper(text string) types.Paper {
	return types.Paper{
		Title:          TextTitle(text),
		Year:           Year(text),
		DOI:            DOI(text),
		SourceURL:      SourceURL(text),
		ArticleType:    ArticleType(text),
		AuthorKeywords: types.JoinList(AuthorKeywords(text)),
		MeshKeywords:   types.JoinList(MeshKeywords(text)),
	}
}

// DOI returns the first DOI in text with trailing punctuation removed.
func DOI(text string) string {
	doi := doiRe.FindString(text)
	doi = strings.TrimRight(doi, ".,;:")
	for strings.HasSuffix(doi, ")") && strings.Count(doi, ")") > strings.Count(doi, "(") {
		doi = strings.TrimSuffix(doi, ")")
	}
	return doi
}

// Year returns the first plausible publication year, or 0.
func Year(text string) int {
	m := yearRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return y
}

// SourceURL returns the first http(s) or www URL in text.
func SourceURL(text string) string {
	u := urlRe.FindString(text)
	if u == "" {
		u = wwwRe.FindString(text)
	}
	return strings.TrimRight(u, ".,;:)]")
}

// AuthorKeywords returns the terms listed after a "Keywords" header.
func AuthorKeywords(text string) []string {
	return keywordBlock(text, keywordsHeaderRe)
}

// MeshKeywords returns the terms listed after a "MeSH terms" header.
func MeshKeywords(text string) []string {
	return keywordBlock(text, meshHeaderRe)
}

func keywordBlock(text string, header *regexp.Regexp) []string {
	loc := header.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	block := text[loc[1]:]
	if len(block) > keywordBlockLen {
		block = Window(block, 0, keywordBlockLen, 0, 0)
	}
	if stop := keywordsStopRe.FindStringIndex(block); stop != nil {
		block = block[:stop[0]]
	}

	seen := make(map[string]bool)
	var out []string
	for _, part := range keywordsSplitRe.Split(block, -1) {
		kw := strings.Trim(Collapse(part), " .:-–—")
		if kw == "" || len([]rune(kw)) > maxKeywordLen || len(strings.Fields(kw)) > maxKeywordWords {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// articleTypeRules are checked in order; terms match whole words.
var articleTypeRules = []struct {
	label string
	re    *regexp.Regexp
}{
	{"review", wordsRe(`reviews?`, `systematic review`, `meta-?analys[ie]s`)},
	{"modelling", wordsRe(`modell?ing`, `simulations?`, `in silico`, `qsar`, `qspr`, `computational`)},
	{"method", wordsRe(`method`, `protocols?`, `workflows?`)},
	{"in vitro", wordsRe(`in vitro`, `cell lines?`, `cytotoxic(?:ity)?`)},
	{"in vivo", wordsRe(`in vivo`, `mouse`, `mice`, `rats?`, `zebrafish`, `wistar`, `sprague-dawley`)},
	{"field", wordsRe(`field stud(?:y|ies)`, `field experiments?`, `in the field`, `mesocosms?`, `lakes?`, `river sampling`)},
}

func wordsRe(terms ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(terms, "|") + `)\b`)
}

// ArticleType classifies the article from front-matter text. Rules are
// checked in order and the first hit wins.
func ArticleType(text string) string {
	for _, rule := range articleTypeRules {
		if rule.re.MatchString(text) {
			return rule.label
		}
	}
	return ""
}

// TextTitle returns the first line of text that could be a title. It is a
// fallback for documents without usable layout information.
func TextTitle(text string) string {
	for _, raw := range strings.Split(text, "\n") {
		line := Collapse(raw)
		n := len([]rune(line))
		if n < 12 || n > 250 {
			continue
		}
		low := strings.ToLower(line)
		if layout.IsBoilerplate(line) || strings.Count(line, ",") >= 3 ||
			strings.Contains(low, "@") || strings.HasPrefix(low, "http") ||
			doiRe.MatchString(line) || keywordsHeaderRe.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}
