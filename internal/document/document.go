// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document reads input papers into the plain-text and positioned
// forms the extractors consume, and fingerprints each file.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/nanoextract/internal/layout"
)

// ErrNoDocuments is returned by List when a directory holds no PDFs.
var ErrNoDocuments = errors.New("no PDF files found")

// DefaultMetaPages is the number of leading pages used for bibliographic
// extraction when no bound is configured.
const DefaultMetaPages = 3

// DefaultLayoutPages is the number of leading pages read with positions.
const DefaultLayoutPages = 26

// Document is the text of one input file.
type Document struct {
	Path string
	Hash string

	// Pages holds normalized plain text, one entry per page.
	Pages []string

	// Layout holds positioned text for the leading pages. It may be
	// empty when the file was read by a text-only backend.
	Layout []layout.Page
}

// JoinPages concatenates page texts separated by blank lines.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n\n")
}

// MetaText returns the first n pages joined. n <= 0 selects DefaultMetaPages.
func (d Document) MetaText(n int) string {
	if n <= 0 {
		n = DefaultMetaPages
	}
	return JoinPages(d.Pages[:min(n, len(d.Pages))])
}

// FullText returns every page joined.
func (d Document) FullText() string {
	return JoinPages(d.Pages)
}

// TitlePage returns the first page's text, or "" for an empty document.
func (d Document) TitlePage() string {
	if len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[0]
}

// FirstPage returns the positioned first page if one was read.
func (d Document) FirstPage() (layout.Page, bool) {
	if len(d.Layout) == 0 {
		return layout.Page{}, false
	}
	return d.Layout[0], true
}

// Reader loads a document from a path.
type Reader interface {
	Read(ctx context.Context, path string) (Document, error)
}

// List returns the PDF files directly inside dir in name order. It returns
// ErrNoDocuments when there are none.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoDocuments)
	}
	return paths, nil
}

// HashFile returns the hex SHA-256 of the file's bytes.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

var textCleaner = strings.NewReplacer(
	"\u00ad", "",
	"\x00", "",
	"\r\n", "\n",
	"\r", "\n",
)

// Normalize applies Unicode NFKC (folding ligatures and compatibility
// forms such as superscript digits) and removes soft hyphens and NULs.
func Normalize(s string) string {
	return textCleaner.Replace(norm.NFKC.String(s))
}
