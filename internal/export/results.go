// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// ResultsDir writes one YAML file per document, including the raw oracle
// reply, for auditing refinement.
type ResultsDir struct {
	dir string
}

// NewResultsDir creates dir if needed.
func NewResultsDir(dir string) (*ResultsDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}
	return &ResultsDir{dir: dir}, nil
}

// FileName returns the result file name for a record: the input's base
// name plus a short fingerprint prefix, so same-named inputs from different
// directories do not collide.
func FileName(rec types.Record) string {
	base := strings.TrimSuffix(filepath.Base(rec.Paper.FilePath), filepath.Ext(rec.Paper.FilePath))
	if base == "" || base == "." {
		base = "document"
	}
	hash := rec.Paper.FileHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	if hash == "" {
		return base + ".yaml"
	}
	return base + "-" + hash + ".yaml"
}

// Save writes the result file, replacing any previous one.
func (d *ResultsDir) Save(_ context.Context, res types.Result) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	path := filepath.Join(d.dir, FileName(res.Record))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Close implements the sink interface; files are written by Save.
func (d *ResultsDir) Close() error { return nil }
