// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/nanoextract/internal/layout"
	"github.com/pdiddy/nanoextract/pkg/types"
)

// MaxTableRows caps the rows collected from layout pages.
const MaxTableRows = 100

var (
	tableKeywordRe = regexp.MustCompile(`(?i)\b(?:BET|surface\s+area|purity|supplier|manufacturer|batch|lot|TEM|DLS|PDI|zeta|endotoxins?|nm|mV)\b|m2/g|m²/g`)

	rowBETRe    = regexp.MustCompile(`(?i)(` + num + `\s*` + unitArea + `)`)
	rowPurityRe = regexp.MustCompile(`(\d+(?:\.\d+)?\s*%)`)
	rowDLSRe    = regexp.MustCompile(`(` + rng + `\s*nm)\b`)
	rowZetaRe   = regexp.MustCompile(`(?i)([-−]?\s?` + num + `\s*mV)\b`)
	rowPDIRe    = regexp.MustCompile(`(?i)\bPDI\b\s*[:=]?\s*(` + num + `)`)
)

// TableRows collects text lines from layout pages that mention a
// characterization keyword, up to limit rows (MaxTableRows when limit <= 0).
func TableRows(pages []layout.Page, limit int) []string {
	if limit <= 0 {
		limit = MaxTableRows
	}
	var rows []string
	for _, p := range pages {
		for _, b := range p.Blocks {
			if b.Type != layout.BlockText {
				continue
			}
			for _, l := range b.Lines {
				text := l.Text()
				if text == "" || !tableKeywordRe.MatchString(text) {
					continue
				}
				rows = append(rows, text)
				if len(rows) == limit {
					return rows
				}
			}
		}
	}
	return rows
}

// ParseTableRows reads characterization values from table rows. For every
// field the first row that yields a value wins.
func ParseTableRows(rows []string) types.Nanomaterial {
	var nm types.Nanomaterial
	set := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = Collapse(v)
		}
	}

	for _, row := range rows {
		low := strings.ToLower(row)

		if strings.Contains(low, "bet") || strings.Contains(low, "surface area") {
			set(&nm.BETSurfaceArea, firstGroup(row, rowBETRe))
		}
		if strings.Contains(low, "purity") {
			set(&nm.PurityPercent, firstGroup(row, rowPurityRe))
		}
		if strings.Contains(low, "supplier") || strings.Contains(low, "manufacturer") {
			set(&nm.SupplierManufacturer, Truncate(row, 120))
		}
		if strings.Contains(low, "batch") || strings.Contains(low, "lot") {
			set(&nm.BatchOrLotNo, Truncate(row, 120))
		}
		if strings.Contains(low, "dls") && strings.Contains(low, "nm") {
			set(&nm.DLSDiameterWater, firstGroup(row, rowDLSRe))
		}
		if strings.Contains(low, "zeta") && strings.Contains(low, "mv") {
			set(&nm.ZetaWater, firstGroup(row, rowZetaRe))
		}
		if strings.Contains(low, "pdi") {
			set(&nm.PDIWater, firstGroup(row, rowPDIRe))
		}
	}
	return nm
}
