// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines a rules-derived draft with a refinement patch.
//
// The merge is pure and non-destructive: patch values only add or replace
// fields when they are non-empty, nested maps merge recursively, and keys
// the patch does not mention keep their draft value. Inputs are never
// modified.
package merge

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// IsEmpty reports whether v counts as absent for merging: nil, a blank
// string, or an empty slice or map.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Maps returns base with patch merged in. When both sides hold a map for a
// key the maps merge recursively; otherwise a non-empty patch value wins.
func Maps(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = clone(v)
	}
	for k, pv := range patch {
		bm, baseIsMap := out[k].(map[string]any)
		pm, patchIsMap := pv.(map[string]any)
		if baseIsMap && patchIsMap {
			out[k] = Maps(bm, pm)
			continue
		}
		if !IsEmpty(pv) {
			out[k] = clone(pv)
		}
	}
	return out
}

// clone deep-copies the generic JSON-shaped values produced by decoding.
func clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = clone(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = clone(e)
		}
		return s
	case []string:
		return append([]string(nil), x...)
	}
	return v
}

// Apply merges patch into draft and returns the combined record. Composition
// tokens are re-normalized after the merge. A patch value that cannot be
// represented in the record schema makes Apply fail and leaves draft as is.
func Apply(draft types.Record, patch types.Patch) (types.Record, error) {
	base, err := draft.ToMap()
	if err != nil {
		return draft, fmt.Errorf("converting draft: %w", err)
	}

	merged, err := types.RecordFromMap(Maps(base, patch.Map()))
	if err != nil {
		return draft, fmt.Errorf("converting merged record: %w", err)
	}

	merged.Nanomaterial.CoreCompositions = types.NormalizeCompositions(merged.Nanomaterial.CoreCompositions)
	return merged, nil
}
