// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes extraction results to flat files: an Excel workbook
// with one row per document and a directory of per-document YAML files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// SheetName is the worksheet holding the records.
const SheetName = "records"

// Columns returns every schema field in export order: paper fields, then
// nanomaterial fields, then bio-effect fields.
func Columns() []string {
	cols := make([]string, 0, len(types.PaperFields)+len(types.NanomaterialFields)+len(types.BioEffectsFields))
	cols = append(cols, types.PaperFields...)
	cols = append(cols, types.NanomaterialFields...)
	return append(cols, types.BioEffectsFields...)
}

// Flatten returns the record's values aligned with Columns. Lists are
// joined with types.ListSeparator and unknown fields are nil.
func Flatten(rec types.Record) ([]any, error) {
	m, err := rec.ToMap()
	if err != nil {
		return nil, err
	}
	flat := make(map[string]any)
	for _, section := range m {
		fields, ok := section.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range fields {
			flat[k] = v
		}
	}

	row := make([]any, 0, len(flat))
	for _, col := range Columns() {
		switch v := flat[col].(type) {
		case []any:
			items := make([]string, 0, len(v))
			for _, e := range v {
				items = append(items, fmt.Sprint(e))
			}
			row = append(row, types.JoinList(items))
		default:
			row = append(row, v)
		}
	}
	return row, nil
}

// Workbook collects records and writes them to an .xlsx file on Close.
// Rows are sorted by file path. It is safe for concurrent use.
type Workbook struct {
	path string

	mu      sync.Mutex
	records []types.Record
}

// NewWorkbook returns a sink that will write to path. The parent directory
// must exist so that a bad output target fails before any work is done.
func NewWorkbook(path string) (*Workbook, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("checking output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output directory %s is not a directory", dir)
	}
	return &Workbook{path: path}, nil
}

// Save buffers one result.
func (w *Workbook) Save(_ context.Context, res types.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, res.Record)
	return nil
}

// Close writes the workbook.
func (w *Workbook) Close() error {
	w.mu.Lock()
	records := append([]types.Record(nil), w.records...)
	w.mu.Unlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Paper.FilePath < records[j].Paper.FilePath
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, 0, len(Columns()))
	for _, c := range Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, rec := range records {
		row, err := Flatten(rec)
		if err != nil {
			return fmt.Errorf("flattening %s: %w", rec.Paper.FilePath, err)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
