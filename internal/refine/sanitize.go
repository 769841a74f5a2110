// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/nanoextract/pkg/types"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindList
)

// Fields an oracle may set, per section.
var (
	paperAllowed = map[string]fieldKind{
		"title":           kindString,
		"year":            kindInt,
		"doi":             kindString,
		"source_url":      kindString,
		"article_type":    kindString,
		"author_keywords": kindString,
		"mesh_keywords":   kindString,
	}

	nanomaterialAllowed = map[string]fieldKind{
		"core_compositions": kindList,
		"nm_category":       kindString,
		"physical_phase":    kindString,
		"crystallinity":     kindString,
		"cas_number":        kindString,
		"catalog_or_batch":  kindString,

		"bet_surface_area_m2_g":              kindString,
		"dls_mean_diameter_water_nm":         kindString,
		"dls_mean_diameter_medium_nm":        kindString,
		"pdi_water":                          kindString,
		"pdi_medium":                         kindString,
		"zeta_potential_water_mV":            kindString,
		"zeta_potential_medium_mV":           kindString,
		"tem_diameter_nm":                    kindString,
		"tem_width_nm_median":                kindString,
		"tem_length_nm_median":               kindString,
		"no_of_walls":                        kindString,
		"purity_percent":                     kindString,
		"impurities":                         kindString,
		"supplier_manufacturer":              kindString,
		"address":                            kindString,
		"supplier_code":                      kindString,
		"batch_or_lot_no":                    kindString,
		"nominal_diameter_nm":                kindString,
		"nominal_length_micron":              kindString,
		"nominal_specific_surface_area_m2_g": kindString,
		"dispersant":                         kindString,
		"description_of_dispersion":          kindString,
		"endotoxins_EU_mg":                   kindString,
	}
)

// PaperAllowed returns the sorted paper allow-list.
func PaperAllowed() []string { return sortedKeys(paperAllowed) }

// NanomaterialAllowed returns the sorted nanomaterial allow-list.
func NanomaterialAllowed() []string { return sortedKeys(nanomaterialAllowed) }

func sortedKeys(m map[string]fieldKind) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sanitize keeps the paper and nanomaterial sections of a decoded oracle
// reply, drops fields outside each section's allow-list, coerces values to
// the field's kind and drops values that cannot be coerced or are empty.
// Anything else in the reply is ignored.
func Sanitize(raw map[string]any) types.Patch {
	return types.Patch{
		Paper:        sanitizeSection(raw["paper"], paperAllowed),
		Nanomaterial: sanitizeSection(raw["nanomaterial"], nanomaterialAllowed),
	}
}

func sanitizeSection(v any, allowed map[string]fieldKind) map[string]any {
	section, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any)
	for k, val := range section {
		kind, ok := allowed[k]
		if !ok {
			continue
		}
		if c, ok := coerce(val, kind); ok {
			out[k] = c
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var listSplitRe = regexp.MustCompile(`\s*[;,]\s*`)

func coerce(v any, kind fieldKind) (any, bool) {
	switch kind {
	case kindInt:
		return coerceInt(v)
	case kindList:
		items := stringItems(v)
		return items, len(items) > 0
	}
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case json.Number:
		return x.String(), true
	case []any:
		items := stringItems(x)
		return types.JoinList(items), len(items) > 0
	}
	return nil, false
}

func coerceInt(v any) (any, bool) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return x, x > 0
	default:
		return nil, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) && f > 0 {
		return int(f), true
	}
	return nil, false
}

// stringItems flattens a list or a delimited string into trimmed,
// non-empty strings. Non-string list elements are skipped.
func stringItems(v any) []string {
	var raw []string
	switch x := v.(type) {
	case string:
		raw = listSplitRe.Split(x, -1)
	case []any:
		for _, e := range x {
			if s, ok := e.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = x
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
