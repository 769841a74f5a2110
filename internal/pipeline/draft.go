// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline assembles draft records from documents, runs optional
// refinement, and drives batch runs over a directory of papers.
package pipeline

import (
	"github.com/pdiddy/nanoextract/internal/document"
	"github.com/pdiddy/nanoextract/internal/extract"
	"github.com/pdiddy/nanoextract/internal/layout"
	"github.com/pdiddy/nanoextract/internal/snippet"
	"github.com/pdiddy/nanoextract/pkg/types"
)

// Draft is the rules-only record for a document plus the intermediate text
// the refinement step needs.
type Draft struct {
	Record types.Record

	// MetaText is the leading-pages text used for bibliographic fields.
	MetaText string

	// CleanText is the full text with the reference list removed.
	CleanText string

	// TableRows are characterization lines found in the layout pages.
	TableRows []string
}

// BuildDraft runs every extractor over doc. metaPages bounds the
// bibliographic pass (document.DefaultMetaPages when <= 0). A title found
// from the first page's layout replaces the text-derived one.
func BuildDraft(doc document.Document, metaPages int) Draft {
	meta := doc.MetaText(metaPages)
	clean := snippet.RemoveReferences(doc.FullText())

	paper := extract.Paper(meta)
	paper.FilePath = doc.Path
	paper.FileHash = doc.Hash
	paper.ExtractionMethod = types.MethodRules
	if page, ok := doc.FirstPage(); ok {
		if title, ok := layout.DetectTitle(page); ok {
			paper.Title = title
		}
	}

	nm := extract.Nanomaterial(clean)
	rows := extract.TableRows(doc.Layout, extract.MaxTableRows)
	extract.FillUnset(&nm, extract.ParseTableRows(rows))

	return Draft{
		Record: types.Record{
			Paper:        paper,
			Nanomaterial: nm,
			BioEffects:   extract.BioEffects(clean),
		},
		MetaText:  meta,
		CleanText: clean,
		TableRows: rows,
	}
}
