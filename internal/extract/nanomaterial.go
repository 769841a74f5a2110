// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// Category values for Nanomaterial.NMCategory.
const (
	CategoryLiposome      = "liposome"
	CategoryQuantumDot    = "quantum_dot"
	CategoryMOF           = "mof"
	CategoryNanocellulose = "nanocellulose"
	CategoryPolymer       = "polymer_plastic"
	CategoryCarbon        = "carbon"
	CategorySilica        = "silica"
	CategoryMetalOxide    = "metal_oxide"
	CategoryMetal         = "metal"
	CategoryOther         = "other"
)

// categoryLadder is the inference priority; the first family present wins.
var categoryLadder = []string{
	CategoryLiposome,
	CategoryQuantumDot,
	CategoryMOF,
	CategoryNanocellulose,
	CategoryPolymer,
	CategoryCarbon,
	CategorySilica,
	CategoryMetalOxide,
	CategoryMetal,
}

// ContextWindow is the distance in bytes either side of an ambiguous token
// that is searched for a nanomaterial context word.
const ContextWindow = 90

// term is one vocabulary entry. Gated terms are short, ambiguous acronyms or
// element symbols and only count when nanomaterial context is nearby.
type term struct {
	token    string
	category string
	re       *regexp.Regexp
	gated    bool
}

func plain(token, category, pattern string) term {
	return term{token: token, category: category, re: regexp.MustCompile(pattern)}
}

func gated(token, category, pattern string) term {
	return term{token: token, category: category, re: regexp.MustCompile(pattern), gated: true}
}

// find returns the first occurrence of v in text that counts: any match for
// plain terms, and for gated terms a match with context nearby that is not
// the "et Al." of a citation.
func (v term) find(text string) []int {
	if !v.gated {
		return v.re.FindStringIndex(text)
	}
	for _, loc := range v.re.FindAllStringIndex(text, -1) {
		if citationRe.MatchString(text[max(0, loc[0]-4):loc[0]]) {
			continue
		}
		if contextRe.MatchString(Window(text, loc[0], loc[1], ContextWindow, ContextWindow)) {
			return loc
		}
	}
	return nil
}

var vocabulary = []term{
	plain("TiO2", CategoryMetalOxide, `\bTiO2(?:NPs?)?\b|(?i:\btitani(?:um\s+dioxide|a)\b)`),
	plain("ZnO", CategoryMetalOxide, `\bZnO(?:NPs?)?\b|(?i:\bzinc\s+oxide\b)`),
	plain("CeO2", CategoryMetalOxide, `\bCeO2(?:NPs?)?\b|(?i:\bceri(?:um\s+(?:di)?oxide|a)\b)`),
	plain("Fe3O4", CategoryMetalOxide, `\bFe3O4(?:NPs?)?\b|(?i:\bmagnetite\b)`),
	plain("Fe2O3", CategoryMetalOxide, `\bFe2O3(?:NPs?)?\b|(?i:\b(?:hematite|maghemite)\b)`),
	plain("Al2O3", CategoryMetalOxide, `\bAl2O3(?:NPs?)?\b|(?i:\balumina\b)`),
	plain("CuO", CategoryMetalOxide, `\bCuO(?:NPs?)?\b|(?i:\bcopper\s+oxide\b)`),
	plain("SiO2", CategorySilica, `\bSiO2(?:NPs?)?\b|(?i:\b(?:silica|silicon\s+dioxide)\b)`),

	plain("Ag", CategoryMetal, `\bAgNPs?\b|(?i:\bsilver\s+nano)`),
	plain("Au", CategoryMetal, `\bAuNPs?\b|(?i:\bgold\s+nano)`),
	plain("Cu", CategoryMetal, `\bCuNPs?\b|(?i:\bcopper\s+nano)`),
	plain("Zn", CategoryMetal, `\bZnNPs?\b|(?i:\bzinc\s+nano)`),
	plain("Fe", CategoryMetal, `\bFeNPs?\b|\bnZVI\b|(?i:\b(?:iron\s+nano|zero[- ]valent\s+iron))`),
	plain("Pt", CategoryMetal, `\bPtNPs?\b|(?i:\bplatinum\s+nano)`),
	gated("Ag", CategoryMetal, `\bAg\b`),
	gated("Au", CategoryMetal, `\bAu\b`),
	gated("Cu", CategoryMetal, `\bCu\b`),
	gated("Zn", CategoryMetal, `\bZn\b`),
	gated("Fe", CategoryMetal, `\bFe\b`),
	gated("Al", CategoryMetal, `\bAl\b`),
	gated("Pt", CategoryMetal, `\bPt\b`),

	plain("CNT", CategoryCarbon, `(?i:\bcarbon\s+nanotubes?\b)`),
	plain("MWCNT", CategoryCarbon, `\bMWCNTs?\b|(?i:\bmulti-?walled\s+carbon\s+nanotubes?\b)`),
	plain("SWCNT", CategoryCarbon, `\bSWCNTs?\b|(?i:\bsingle-?walled\s+carbon\s+nanotubes?\b)`),
	plain("GO", CategoryCarbon, `(?i:\bgraphene\s+oxide\b)|\brGO\b`),
	plain("graphene", CategoryCarbon, `(?i:\bgraphene\b)`),
	plain("fullerene", CategoryCarbon, `(?i:\bfullerenes?\b)|\bC60\b`),
	plain("carbon black", CategoryCarbon, `(?i:\bcarbon\s+black\b)`),
	plain("carbon dots", CategoryCarbon, `(?i:\bcarbon\s+dots\b)`),
	gated("CNT", CategoryCarbon, `\bCNTs?\b`),
	gated("GO", CategoryCarbon, `\bGO\b`),

	plain("PS", CategoryPolymer, `(?i:\bpolystyrene\b)`),
	plain("PET", CategoryPolymer, `(?i:\bpolyethylene\s+terephthalate\b)`),
	plain("PVC", CategoryPolymer, `(?i:\bpolyvinyl\s+chloride\b)`),
	plain("PMMA", CategoryPolymer, `(?i:\bpoly\s*\(?\s*methyl\s+methacrylate\b)`),
	plain("PLGA", CategoryPolymer, `\bPLGA\b`),
	plain("nanoplastics", CategoryPolymer, `(?i:\bnanoplastics?\b)`),
	plain("microplastics", CategoryPolymer, `(?i:\bmicroplastics?\b)`),
	gated("PS", CategoryPolymer, `\bPS\b`),
	gated("PET", CategoryPolymer, `\bPET\b`),
	gated("PVC", CategoryPolymer, `\bPVC\b`),
	gated("PMMA", CategoryPolymer, `\bPMMA\b`),

	plain("QD", CategoryQuantumDot, `(?i:\bquantum\s+dots?\b)`),
	plain("CdSe", CategoryQuantumDot, `\bCdSe\b`),
	plain("CdTe", CategoryQuantumDot, `\bCdTe\b`),
	gated("QD", CategoryQuantumDot, `\bQDs?\b`),

	plain("MOF", CategoryMOF, `(?i:\bmetal[- ]organic\s+frameworks?\b)`),
	plain("ZIF-8", CategoryMOF, `\bZIF-8\b`),
	gated("MOF", CategoryMOF, `\bMOFs?\b`),

	plain("nanocellulose", CategoryNanocellulose, `(?i:\bnanocellulose\b)`),
	plain("CNC", CategoryNanocellulose, `(?i:\bcellulose\s+nanocrystals?\b)`),
	plain("CNF", CategoryNanocellulose, `(?i:\bcellulose\s+nanofib(?:rils?|ers?|res?)\b)`),
	gated("CNC", CategoryNanocellulose, `\bCNCs?\b`),
	gated("CNF", CategoryNanocellulose, `\bCNFs?\b`),

	plain("liposome", CategoryLiposome, `(?i:\bliposom(?:e|es|al)\b)`),
	plain("LNP", CategoryLiposome, `(?i:\blipid\s+nanoparticles?\b)`),
	gated("LNP", CategoryLiposome, `\bLNPs?\b`),
}

var citationRe = regexp.MustCompile(`(?i)(?:^|\W)et\s+$`)

var contextRe = regexp.MustCompile(`(?i)\b(?:nano\w*|particles?|particulates?|NPs?|ENMs?|colloid\w*|suspensions?|dispersions?|dots?|liposom\w*)\b`)

// tokenCategory maps lower-cased vocabulary tokens to their family.
var tokenCategory = func() map[string]string {
	m := make(map[string]string, len(vocabulary))
	for _, v := range vocabulary {
		m[strings.ToLower(v.token)] = v.category
	}
	return m
}()

// Compositions returns the sorted, de-duplicated composition tokens found
// in text. Gated tokens need a context word within ContextWindow of at
// least one occurrence.
func Compositions(text string) []string {
	var found []string
	for _, v := range vocabulary {
		if v.find(text) != nil {
			found = append(found, v.token)
		}
	}
	return types.NormalizeCompositions(found)
}

// Category infers the dominant family from composition tokens using
// categoryLadder. An empty token list yields "".
func Category(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	present := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		present[classify(tok)] = true
	}
	for _, c := range categoryLadder {
		if present[c] {
			return c
		}
	}
	return CategoryOther
}

// classify resolves a token that may come from the vocabulary or from a
// refinement patch.
func classify(token string) string {
	low := strings.ToLower(strings.TrimSpace(token))
	if c, ok := tokenCategory[low]; ok {
		return c
	}
	switch {
	case strings.Contains(low, "liposom"), strings.Contains(low, "lipid"):
		return CategoryLiposome
	case strings.Contains(low, "quantum"):
		return CategoryQuantumDot
	case strings.Contains(low, "organic framework"):
		return CategoryMOF
	case strings.Contains(low, "cellulose"):
		return CategoryNanocellulose
	case strings.HasPrefix(low, "poly"), strings.Contains(low, "plastic"):
		return CategoryPolymer
	case strings.Contains(low, "carbon"), strings.Contains(low, "graphene"), strings.Contains(low, "nanotube"):
		return CategoryCarbon
	case strings.Contains(low, "silica"), low == "sio2":
		return CategorySilica
	case strings.HasSuffix(low, "o2"), strings.HasSuffix(low, "o3"), strings.HasSuffix(low, "o4"),
		strings.HasSuffix(low, "o"), strings.Contains(low, "oxide"):
		return CategoryMetalOxide
	}
	return CategoryOther
}

var (
	casRe          = regexp.MustCompile(`(?i)\bCAS\s*(?:No\.?|Number|RN|#)?\s*[:\-]?\s*(\d{2,7}-\d{2}-\d)\b`)
	batchRe        = regexp.MustCompile(`(?i)\b(?:lot|batch)\s*(?:no\.?|number|#)?\s*[:#]?\s*([A-Z0-9][A-Z0-9\-]{2,24})\b`)
	catalogRe      = regexp.MustCompile(`(?i)\bcat(?:alog(?:ue)?)?\.?\s*(?:no\.?|number|#)\s*[:#]?\s*([A-Z0-9][A-Z0-9\-]{2,24})\b`)
	phaseRe        = regexp.MustCompile(`(?i)\b(anatase|rutile|brookite)\b`)
	crystallPctRe  = regexp.MustCompile(`(?i)\bcrystallinity\s*(?:of|=|:|was|is)?\s*(\d{1,3}(?:\.\d+)?)\s*%`)
	crystallWordRe = regexp.MustCompile(`(?i)\b(amorphous|polycrystalline|single[- ]crystalline|crystalline)\b`)
	abstractRe     = regexp.MustCompile(`(?i)\babstract\b`)
	digitRe        = regexp.MustCompile(`\d`)
)

// CASNumber returns the first CAS registry number whose check digit is valid.
func CASNumber(text string) string {
	for _, m := range casRe.FindAllStringSubmatch(text, -1) {
		if ValidCAS(m[1]) {
			return m[1]
		}
	}
	return ""
}

// ValidCAS verifies the check digit of a CAS number like "1317-70-0": the
// weighted sum of the other digits, weights 1.. from the right, mod 10.
func ValidCAS(cas string) bool {
	parts := strings.Split(cas, "-")
	if len(parts) != 3 || len(parts[2]) != 1 {
		return false
	}
	body := parts[0] + parts[1]
	sum := 0
	for i := 0; i < len(body); i++ {
		c := body[len(body)-1-i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * (i + 1)
	}
	check := parts[2][0]
	return check >= '0' && check <= '9' && sum%10 == int(check-'0')
}

// CatalogOrBatch returns "lot=<id>" for the first lot/batch identifier. The
// identifier must contain a digit.
func CatalogOrBatch(text string) string {
	for _, m := range batchRe.FindAllStringSubmatch(text, -1) {
		if digitRe.MatchString(m[1]) {
			return fmt.Sprintf("lot=%s", m[1])
		}
	}
	return ""
}

// SupplierCode returns the first catalog number.
func SupplierCode(text string) string {
	for _, m := range catalogRe.FindAllStringSubmatch(text, -1) {
		if digitRe.MatchString(m[1]) {
			return m[1]
		}
	}
	return ""
}

// PhysicalPhase lists the TiO2 crystal phases mentioned, sorted.
func PhysicalPhase(text string) string {
	seen := make(map[string]bool)
	var phases []string
	for _, m := range phaseRe.FindAllString(text, -1) {
		p := strings.ToLower(m)
		if !seen[p] {
			seen[p] = true
			phases = append(phases, p)
		}
	}
	sort.Strings(phases)
	return types.JoinList(phases)
}

// Crystallinity returns "crystallinity=N%" when a percentage is reported,
// else the first crystallinity descriptor word.
func Crystallinity(text string) string {
	if m := crystallPctRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("crystallinity=%s%%", m[1])
	}
	if m := crystallWordRe.FindString(text); m != "" {
		return strings.ToLower(m)
	}
	return ""
}

// Evidence returns a short excerpt around the first counted mention of any
// of the composition tokens, preferring text after the abstract heading.
func Evidence(text string, tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	want := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		want[tok] = true
	}
	offset := 0
	if loc := abstractRe.FindStringIndex(text); loc != nil {
		offset = loc[1]
	}
	for _, scope := range []int{offset, 0} {
		var best []int
		for _, v := range vocabulary {
			if !want[v.token] {
				continue
			}
			loc := v.find(text[scope:])
			if loc != nil && (best == nil || scope+loc[0] < best[0]) {
				best = []int{scope + loc[0], scope + loc[1]}
			}
		}
		if best != nil {
			return Truncate(Collapse(Window(text, best[0], best[1], 90, 180)), 250)
		}
	}
	return ""
}

// Identity extracts the nanomaterial identity fields.
func Identity(text string) types.Nanomaterial {
	comps := Compositions(text)
	return types.Nanomaterial{
		CoreCompositions: comps,
		NMCategory:       Category(comps),
		PhysicalPhase:    PhysicalPhase(text),
		Crystallinity:    Crystallinity(text),
		CASNumber:        CASNumber(text),
		CatalogOrBatch:   CatalogOrBatch(text),
		SupplierCode:     SupplierCode(text),
		Evidence:         Evidence(text, comps),
	}
}
