// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns raw paper text into draft record fields using
// independent, deterministic pattern extractors.
//
// Every extractor is a pure function of its input text: no match yields the
// zero value, and empty or garbage input is never an error. Field precedence
// for the nanomaterial section is fixed here:
//
//	regex on full text  >  table rows from layout  >  refinement patch
//
// The refinement patch is applied last by the merge engine and overrides
// both; table values only fill fields the regex pass left unset.
package extract

import (
	"reflect"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// Nanomaterial runs the identity and characterization extractors over the
// full document text.
func Nanomaterial(text string) types.Nanomaterial {
	nm := Identity(text)
	FillUnset(&nm, Characterization(text))
	return nm
}

// FillUnset copies each string or list field of src into dst when the dst
// field is still unknown. Known dst values are never replaced.
func FillUnset(dst *types.Nanomaterial, src types.Nanomaterial) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src)
	for i := 0; i < dv.NumField(); i++ {
		d, s := dv.Field(i), sv.Field(i)
		switch d.Kind() {
		case reflect.String:
			if d.String() == "" && s.String() != "" {
				d.SetString(s.String())
			}
		case reflect.Slice:
			if d.Len() == 0 && s.Len() > 0 {
				d.Set(s)
			}
		}
	}
}
