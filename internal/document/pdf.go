// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/pdiddy/nanoextract/internal/layout"
)

// Default page size (US Letter, points) when a page has no MediaBox.
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// convertPath is the text-only fallback. Package-level var for test substitution.
var convertPath = func(path string) (string, error) {
	resp, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// PDFReader reads page text and positions with a pure-Go PDF parser and
// falls back to docconv when the parser yields no text.
type PDFReader struct {
	// LayoutPages bounds how many leading pages are read with positions.
	// Zero selects DefaultLayoutPages.
	LayoutPages int

	Log *zap.Logger
}

// Read implements Reader.
func (r *PDFReader) Read(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	hash, err := HashFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("fingerprinting: %w", err)
	}
	doc := Document{Path: path, Hash: hash}

	pages, positioned, err := r.readPDF(path)
	if err != nil {
		log.Debug("pdf parser failed", zap.String("file", path), zap.Error(err))
	}
	if hasText(pages) {
		doc.Pages = pages
		doc.Layout = positioned
		return doc, nil
	}

	body, convErr := convertPath(path)
	if convErr != nil {
		if err == nil {
			err = fmt.Errorf("no extractable text")
		}
		return Document{}, fmt.Errorf("reading %s: %v; fallback: %w", path, err, convErr)
	}
	log.Warn("using text-only fallback", zap.String("file", path))
	doc.Pages = []string{Normalize(body)}
	return doc, nil
}

func (r *PDFReader) readPDF(path string) (pages []string, positioned []layout.Page, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parsing pdf: %v", p)
		}
	}()

	f, rd, err := pdf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	limit := r.LayoutPages
	if limit <= 0 {
		limit = DefaultLayoutPages
	}

	for i := 1; i <= rd.NumPage(); i++ {
		page := rd.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, Normalize(pageText(page)))
		if i <= limit {
			positioned = append(positioned, pageLayout(i, page))
		}
	}
	return pages, positioned, nil
}

func pageText(page pdf.Page) string {
	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		fonts[name] = &f
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return text
}

// pageLayout converts the page's content stream text into a layout page.
// A page whose content cannot be decoded yields an empty layout page.
func pageLayout(number int, page pdf.Page) (out layout.Page) {
	width, height := mediaBox(page)
	defer func() {
		if recover() != nil {
			out = layout.Page{Number: number, Width: width, Height: height}
		}
	}()

	texts := page.Content().Text
	glyphs := make([]Glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, Glyph{
			S:        Normalize(t.S),
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
		})
	}
	return BuildPage(number, width, height, glyphs)
}

func mediaBox(page pdf.Page) (width, height float64) {
	box := page.V.Key("MediaBox")
	if box.IsNull() {
		box = page.V.Key("Parent").Key("MediaBox")
	}
	if box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	width = box.Index(2).Float64() - box.Index(0).Float64()
	height = box.Index(3).Float64() - box.Index(1).Float64()
	if width <= 0 || height <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return width, height
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
