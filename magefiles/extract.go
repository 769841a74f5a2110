//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract builds the CLI and runs it over papers/, writing papers.db.
// PDF_DIR and DATABASE override the defaults.
func Extract() error {
	mg.Deps(Build)
	pdfDir := envOr("PDF_DIR", "papers")
	db := envOr("DATABASE", "output/papers.db")
	return sh.RunV(binPath(), "run", "--pdf-dir", pdfDir, "--database", db, "--results-dir", "output/results")
}

// Refine is Extract with model refinement through a local Ollama server.
func Refine() error {
	mg.Deps(Build)
	pdfDir := envOr("PDF_DIR", "papers")
	db := envOr("DATABASE", "output/papers.db")
	return sh.RunV(binPath(), "run", "--pdf-dir", pdfDir, "--database", db, "--results-dir", "output/results", "--llm")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
