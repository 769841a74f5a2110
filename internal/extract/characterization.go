// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// Pattern fragments shared by the descriptor regexes.
const (
	num      = `\d+(?:\.\d+)?`
	rng      = num + `(?:\s*(?:[-–—]|to)\s*` + num + `)?(?:\s*±\s*` + num + `)?`
	unitLen  = `(?:nm|µm|μm|um|microns?)`
	unitArea = `m\s?(?:2|²)\s?(?:/\s?g|g\s?-1|g⁻¹)`
	gap      = `[^.;]{0,80}?`
	shortGap = `[^.;]{0,40}?`
)

var (
	betRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:BET|specific\s+surface\s+areas?|surface\s+areas?)\b` + gap + `(` + rng + `\s*` + unitArea + `)`),
	}
	temDiameterRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bTEM\b` + gap + `\b(?:diameters?|sizes?)\b` + shortGap + `(` + rng + `\s*nm)\b`),
		regexp.MustCompile(`(?i)\b(?:diameters?|sizes?)\b` + shortGap + `(` + rng + `\s*nm)\b` + shortGap + `\b(?:by|from|using|via|in)\s+TEM\b`),
	}
	temWidthRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bTEM\b` + gap + `\bwidths?\b` + shortGap + `(` + rng + `\s*nm)\b`),
		regexp.MustCompile(`(?i)\bwidths?\b` + shortGap + `(` + rng + `\s*nm)\b` + shortGap + `\bTEM\b`),
	}
	temLengthRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bTEM\b` + gap + `\blengths?\b` + shortGap + `(` + rng + `\s*` + unitLen + `)`),
		regexp.MustCompile(`(?i)\blengths?\b` + shortGap + `(` + rng + `\s*` + unitLen + `)` + shortGap + `\bTEM\b`),
	}
	endotoxinRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bendotoxins?\b` + gap + `([<>≤≥]?\s*` + num + `\s*EU\s*/\s*mg)`),
	}
	particleSizeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:(?:mean|average|primary)\s+)?(?:particle\s+(?:sizes?|diameters?)|hydrodynamic\s+(?:sizes?|diameters?)|diameters?)\b` + shortGap + `(` + rng + `\s*` + unitLen + `)`),
	}
	purityRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpurity\b[^.;]{0,30}?([<>≥]?\s*\d{2,3}(?:\.\d+)?\s*%)`),
		regexp.MustCompile(`(?i)\b(\d{2,3}(?:\.\d+)?\s*%)\s*(?:pure|purity)\b`),
	}
	nominalDiameterRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnominal\s+(?:diameter|size)s?\b[^.;]{0,30}?(` + rng + `\s*nm)\b`),
	}
	nominalLengthRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnominal\s+lengths?\b[^.;]{0,30}?(` + rng + `\s*(?:µm|μm|um|microns?))`),
	}
	nominalAreaRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnominal\s+(?:specific\s+)?surface\s+areas?\b[^.;]{0,30}?(` + rng + `\s*` + unitArea + `)`),
	}
	impuritiesRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bimpurit(?:y|ies)\b[^.;]{0,20}?(?:such\s+as|including|included|were|was|of|:)\s*([^.;]{3,120})`),
	}
	dispersantRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:dispersant|dispersing\s+agent)\s*(?:[:=]|was|were)\s*([^.;,()]{2,60})`),
		regexp.MustCompile(`(?i)\b(?:dispersed|suspended|resuspended)\s+in\s+([^,;.()]{3,60}?)(?:\s+(?:using|by|at|for|to|prior|before|with|and)\b|[,;.(]|$)`),
	}

	wallsWordRe    = regexp.MustCompile(`(?i)\b(single|double|multi)[- ]?walled\b`)
	wallsAcronymRe = regexp.MustCompile(`\b(SW|DW|MW)CNTs?\b`)
	supplierRe     = regexp.MustCompile(`(?i:purchased|obtained|supplied|acquired|bought|provided)\s+(?i:by|from)\s+([A-Z][\w&.\- ]{1,60}?)(?:\s*\(([^()]{2,120})\))?(?:[,;.]|\s+(?:and|with|as|in|at)\b|$)`)
	dispersionRe   = regexp.MustCompile(`(?i)([^.]{0,160}\bdispers(?:ed|ion|ant)?\b[^.]{0,160}\.)`)
	morphologyRe   = regexp.MustCompile(`(?i)\b(quasi-spherical|spherical|sphere-like|rod[- ]?shaped|rod-like|nanorods?|nanowires?|nanosheets?|nanoplatelets?|cubic|irregular|fibrous|needle[- ]?like|plate[- ]?like|sheet[- ]?like|flake[- ]?like)\b`)
)

var wallsAcronym = map[string]string{"SW": "single-walled", "DW": "double-walled", "MW": "multi-walled"}

// morphologyCanon folds spelling variants to one label.
var morphologyCanon = map[string]string{
	"sphere-like": "spherical",
	"rod shaped":  "rod-like",
	"rod-shaped":  "rod-like",
	"rodshaped":   "rod-like",
	"nanorod":     "rod-like",
	"nanorods":    "rod-like",
	"nanowire":    "wire",
	"nanowires":   "wire",
	"nanosheet":   "sheet-like",
	"nanosheets":  "sheet-like",
	"sheet like":  "sheet-like",
	"needle like": "needle-like",
	"needlelike":  "needle-like",
	"plate like":  "plate-like",
	"platelike":   "plate-like",
	"flake like":  "flake-like",
	"flakelike":   "flake-like",
}

// Characterization extracts the physicochemical descriptors from text.
func Characterization(text string) types.Nanomaterial {
	flat := Collapse(text)

	nm := types.Nanomaterial{
		Morphology:                 Morphology(flat),
		ParticleSize:               firstGroup(flat, particleSizeRes...),
		BETSurfaceArea:             firstGroup(flat, betRes...),
		TEMDiameter:                firstGroup(flat, temDiameterRes...),
		TEMWidthMedian:             firstGroup(flat, temWidthRes...),
		TEMLengthMedian:            firstGroup(flat, temLengthRes...),
		Endotoxins:                 firstGroup(flat, endotoxinRes...),
		NoOfWalls:                  Walls(flat),
		PurityPercent:              firstGroup(flat, purityRes...),
		Impurities:                 Truncate(firstGroup(flat, impuritiesRes...), 120),
		NominalDiameter:            firstGroup(flat, nominalDiameterRes...),
		NominalLength:              firstGroup(flat, nominalLengthRes...),
		NominalSpecificSurfaceArea: firstGroup(flat, nominalAreaRes...),
		Dispersant:                 strings.TrimSpace(firstGroup(flat, dispersantRes...)),
		DescriptionOfDispersion:    Truncate(firstGroup(flat, dispersionRe), 250),
	}
	nm.SupplierManufacturer, nm.Address = Supplier(flat)

	zeta := zetaDescriptor.scan(flat)
	nm.ZetaPotential = zeta.first
	nm.ZetaWater, nm.ZetaMedium = zeta.split()

	dls := dlsDescriptor.scan(flat)
	nm.DLSDiameterWater, nm.DLSDiameterMedium = dls.split()

	pdi := pdiDescriptor.scan(flat)
	nm.PDI = pdi.first
	nm.PDIWater, nm.PDIMedium = pdi.split()

	return nm
}

// Morphology lists the distinct shape descriptors in text, sorted.
func Morphology(text string) string {
	seen := make(map[string]bool)
	var shapes []string
	for _, m := range morphologyRe.FindAllString(text, -1) {
		s := strings.ToLower(m)
		if c, ok := morphologyCanon[s]; ok {
			s = c
		}
		if !seen[s] {
			seen[s] = true
			shapes = append(shapes, s)
		}
	}
	sort.Strings(shapes)
	return types.JoinList(shapes)
}

// Walls returns the nanotube wall count descriptor, e.g. "multi-walled".
func Walls(text string) string {
	if m := wallsWordRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]) + "-walled"
	}
	if m := wallsAcronymRe.FindStringSubmatch(text); m != nil {
		return wallsAcronym[m[1]]
	}
	return ""
}

// Supplier returns the supplier named after "purchased from" and similar
// phrases, plus the parenthesized address if present.
func Supplier(text string) (name, address string) {
	m := supplierRe.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), Collapse(m[2])
}

// Medium labels for descriptor values.
const (
	mediumNone = iota
	mediumWater
	mediumCulture
)

const mediumTerms = `water|H2O|deionized|distilled|ultrapure|Milli-?Q|DI|medium|media|DMEM|RPMI(?:[- ]?1640)?|PBS|serum|FBS|culture|saline|buffer`

var (
	mediumTermRe  = regexp.MustCompile(`(?i)\b(` + mediumTerms + `)\b`)
	mediumAfterRe = regexp.MustCompile(`(?i)^\s*[)\]]?\s*[,(\[]?\s*(?:(?:in|for|using|with|dispersed\s+in|measured\s+in)\s+)?(?:the\s+|a\s+|complete\s+)?(` + mediumTerms + `)\b`)
	sentenceEndRe = regexp.MustCompile(`[.;!?](?:\s|$)`)
	waterTerms    = map[string]bool{"water": true, "h2o": true, "deionized": true, "distilled": true, "ultrapure": true, "milli-q": true, "milliq": true, "di": true}
)

// segmentLimit bounds how far after a keyword values are attributed to it.
const segmentLimit = 240

// mediumDescriptor finds values of one measurement and attributes each to
// water or culture medium from the nearest medium term.
type mediumDescriptor struct {
	keyword *regexp.Regexp
	value   *regexp.Regexp
	// reject drops value matches followed by text that shows they belong to
	// another quantity.
	reject *regexp.Regexp
}

type mediumValues struct {
	first  string
	water  string
	medium string
}

// split applies the water convention: when the source never names a medium,
// the single value found is reported as the water value.
func (v mediumValues) split() (water, medium string) {
	if v.water == "" && v.medium == "" {
		return v.first, ""
	}
	return v.water, v.medium
}

var (
	zetaDescriptor = mediumDescriptor{
		keyword: regexp.MustCompile(`(?i)\bzeta[- ]potentials?\b|ζ(?:[- ]potentials?)?`),
		value:   regexp.MustCompile(`[-−–+]?\s?` + num + `(?:\s*±\s*` + num + `)?\s*mV\b`),
	}
	dlsDescriptor = mediumDescriptor{
		keyword: regexp.MustCompile(`(?i)\bDLS\b|\bhydrodynamic\s+(?:diameters?|sizes?)\b|\bdynamic\s+light\s+scattering\b`),
		value:   regexp.MustCompile(rng + `\s*nm\b`),
	}
	pdiDescriptor = mediumDescriptor{
		keyword: regexp.MustCompile(`(?i)\bPDI\b|\bpolydispersity(?:\s+index)?\b`),
		value:   regexp.MustCompile(`\b[01]?\.\d+(?:\s*±\s*[01]?\.\d+)?`),
		reject:  regexp.MustCompile(`^\s*(?:mV|nm|µm|μm|%|m2|m²|mg|EU)`),
	}
)

func (d mediumDescriptor) scan(text string) mediumValues {
	var out mediumValues
	kws := d.keyword.FindAllStringIndex(text, -1)
	for i, kw := range kws {
		end := min(len(text), kw[1]+segmentLimit)
		if i+1 < len(kws) && kws[i+1][0] < end {
			end = kws[i+1][0]
		}
		seg := text[kw[1]:end]
		if loc := sentenceEndRe.FindStringIndex(seg); loc != nil {
			seg = seg[:loc[0]]
		}

		prev := 0
		for _, v := range d.value.FindAllStringIndex(seg, -1) {
			rest := seg[v[1]:]
			if d.reject != nil && d.reject.MatchString(rest) {
				prev = v[1]
				continue
			}
			val := Collapse(seg[v[0]:v[1]])
			if out.first == "" {
				out.first = val
			}
			switch mediumOf(seg[prev:v[0]], rest) {
			case mediumWater:
				if out.water == "" {
					out.water = val
				}
			case mediumCulture:
				if out.medium == "" {
					out.medium = val
				}
			}
			prev = v[1]
		}
	}
	return out
}

// mediumOf prefers a medium named right after the value ("120 nm in DMEM"),
// then the last medium named before it ("in water was -18.3 mV").
func mediumOf(before, after string) int {
	if m := mediumAfterRe.FindStringSubmatch(after); m != nil {
		return classifyMedium(m[1])
	}
	ms := mediumTermRe.FindAllStringSubmatch(before, -1)
	if len(ms) == 0 {
		return mediumNone
	}
	return classifyMedium(ms[len(ms)-1][1])
}

func classifyMedium(term string) int {
	if waterTerms[strings.ToLower(term)] {
		return mediumWater
	}
	return mediumCulture
}
