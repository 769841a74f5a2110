// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ExtractionMethod records how a Record was produced.
type ExtractionMethod string

const (
	MethodRules     ExtractionMethod = "rules"
	MethodHybridLLM ExtractionMethod = "hybrid_llm"
)

// Refinement status values stored in Paper.LLMStatus.
const (
	StatusPatchMerged = "ok_patch_merged"
	StatusNoPatch     = "no_patch_fallback_to_rules"
	StatusOracleError = "oracle_error_fallback_to_rules"
	StatusMergeError  = "merge_error_fallback_to_rules"
)

// ListSeparator joins keyword lists and multi-valued fields in flat outputs.
const ListSeparator = "; "

const (
	sectionPaper        = "paper"
	sectionNanomaterial = "nanomaterial"
)

// Record is the structured output for one document. The zero value of every
// field means "unknown"; unknown fields are omitted when serialized.
type Record struct {
	Paper        Paper        `json:"paper" yaml:"paper"`
	Nanomaterial Nanomaterial `json:"nanomaterial" yaml:"nanomaterial"`
	BioEffects   BioEffects   `json:"bio_effects" yaml:"bio_effects"`
}

// Paper holds file identity, bibliographic fields and refinement provenance.
type Paper struct {
	FilePath         string           `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	FileHash         string           `json:"file_hash,omitempty" yaml:"file_hash,omitempty"`
	Title            string           `json:"title,omitempty" yaml:"title,omitempty"`
	Year             int              `json:"year,omitempty" yaml:"year,omitempty"`
	DOI              string           `json:"doi,omitempty" yaml:"doi,omitempty"`
	SourceURL        string           `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	ArticleType      string           `json:"article_type,omitempty" yaml:"article_type,omitempty"`
	AuthorKeywords   string           `json:"author_keywords,omitempty" yaml:"author_keywords,omitempty"`
	MeshKeywords     string           `json:"mesh_keywords,omitempty" yaml:"mesh_keywords,omitempty"`
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty" yaml:"extraction_method,omitempty"`
	LLMModel         string           `json:"llm_model,omitempty" yaml:"llm_model,omitempty"`
	LLMStatus        string           `json:"llm_status,omitempty" yaml:"llm_status,omitempty"`
}

// Nanomaterial holds identity and physicochemical characterization fields.
// Characterization values are short strings copied from the source text with
// their unit, e.g. "-18.3 mV" or "12-18 nm".
type Nanomaterial struct {
	CoreCompositions []string `json:"core_compositions,omitempty" yaml:"core_compositions,omitempty"`
	NMCategory       string   `json:"nm_category,omitempty" yaml:"nm_category,omitempty"`
	PhysicalPhase    string   `json:"physical_phase,omitempty" yaml:"physical_phase,omitempty"`
	Crystallinity    string   `json:"crystallinity,omitempty" yaml:"crystallinity,omitempty"`
	CASNumber        string   `json:"cas_number,omitempty" yaml:"cas_number,omitempty"`
	CatalogOrBatch   string   `json:"catalog_or_batch,omitempty" yaml:"catalog_or_batch,omitempty"`
	Evidence         string   `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	Morphology                 string `json:"morphology,omitempty" yaml:"morphology,omitempty"`
	ParticleSize               string `json:"particle_size,omitempty" yaml:"particle_size,omitempty"`
	ZetaPotential              string `json:"zeta_potential,omitempty" yaml:"zeta_potential,omitempty"`
	PDI                        string `json:"pdi,omitempty" yaml:"pdi,omitempty"`
	BETSurfaceArea             string `json:"bet_surface_area_m2_g,omitempty" yaml:"bet_surface_area_m2_g,omitempty"`
	TEMDiameter                string `json:"tem_diameter_nm,omitempty" yaml:"tem_diameter_nm,omitempty"`
	TEMWidthMedian             string `json:"tem_width_nm_median,omitempty" yaml:"tem_width_nm_median,omitempty"`
	TEMLengthMedian            string `json:"tem_length_nm_median,omitempty" yaml:"tem_length_nm_median,omitempty"`
	DLSDiameterWater           string `json:"dls_mean_diameter_water_nm,omitempty" yaml:"dls_mean_diameter_water_nm,omitempty"`
	DLSDiameterMedium          string `json:"dls_mean_diameter_medium_nm,omitempty" yaml:"dls_mean_diameter_medium_nm,omitempty"`
	PDIWater                   string `json:"pdi_water,omitempty" yaml:"pdi_water,omitempty"`
	PDIMedium                  string `json:"pdi_medium,omitempty" yaml:"pdi_medium,omitempty"`
	ZetaWater                  string `json:"zeta_potential_water_mV,omitempty" yaml:"zeta_potential_water_mV,omitempty"`
	ZetaMedium                 string `json:"zeta_potential_medium_mV,omitempty" yaml:"zeta_potential_medium_mV,omitempty"`
	Endotoxins                 string `json:"endotoxins_EU_mg,omitempty" yaml:"endotoxins_EU_mg,omitempty"`
	NoOfWalls                  string `json:"no_of_walls,omitempty" yaml:"no_of_walls,omitempty"`
	PurityPercent              string `json:"purity_percent,omitempty" yaml:"purity_percent,omitempty"`
	Impurities                 string `json:"impurities,omitempty" yaml:"impurities,omitempty"`
	SupplierManufacturer       string `json:"supplier_manufacturer,omitempty" yaml:"supplier_manufacturer,omitempty"`
	Address                    string `json:"address,omitempty" yaml:"address,omitempty"`
	SupplierCode               string `json:"supplier_code,omitempty" yaml:"supplier_code,omitempty"`
	BatchOrLotNo               string `json:"batch_or_lot_no,omitempty" yaml:"batch_or_lot_no,omitempty"`
	NominalDiameter            string `json:"nominal_diameter_nm,omitempty" yaml:"nominal_diameter_nm,omitempty"`
	NominalLength              string `json:"nominal_length_micron,omitempty" yaml:"nominal_length_micron,omitempty"`
	NominalSpecificSurfaceArea string `json:"nominal_specific_surface_area_m2_g,omitempty" yaml:"nominal_specific_surface_area_m2_g,omitempty"`
	Dispersant                 string `json:"dispersant,omitempty" yaml:"dispersant,omitempty"`
	DescriptionOfDispersion    string `json:"description_of_dispersion,omitempty" yaml:"description_of_dispersion,omitempty"`
}

// BioEffects holds biological-effect mentions.
type BioEffects struct {
	CellViability string `json:"cell_viability,omitempty" yaml:"cell_viability,omitempty"`
	ROS           string `json:"ros,omitempty" yaml:"ros,omitempty"`
	Evidence      string `json:"bio_evidence,omitempty" yaml:"bio_evidence,omitempty"`
}

// Ordered field names per section. The order drives tabular export columns.
var (
	PaperFields = []string{
		"file_path", "file_hash", "title", "year", "doi", "source_url",
		"article_type", "author_keywords", "mesh_keywords",
		"extraction_method", "llm_model", "llm_status",
	}
	NanomaterialFields = []string{
		"core_compositions", "nm_category", "physical_phase", "crystallinity",
		"cas_number", "catalog_or_batch", "evidence",
		"morphology", "particle_size", "zeta_potential", "pdi",
		"bet_surface_area_m2_g", "tem_diameter_nm", "tem_width_nm_median",
		"tem_length_nm_median", "dls_mean_diameter_water_nm",
		"dls_mean_diameter_medium_nm", "pdi_water", "pdi_medium",
		"zeta_potential_water_mV", "zeta_potential_medium_mV",
		"endotoxins_EU_mg", "no_of_walls", "purity_percent", "impurities",
		"supplier_manufacturer", "address", "supplier_code", "batch_or_lot_no",
		"nominal_diameter_nm", "nominal_length_micron",
		"nominal_specific_surface_area_m2_g", "dispersant",
		"description_of_dispersion",
	}
	BioEffectsFields = []string{"cell_viability", "ros", "bio_evidence"}
)

// ToMap converts the record into nested generic maps keyed by the JSON
// field names. Unknown fields are absent from the result.
func (r Record) ToMap() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding record map: %w", err)
	}
	return m, nil
}

// RecordFromMap is the inverse of ToMap. Values of the wrong kind for a
// field cause an error.
func RecordFromMap(m map[string]any) (Record, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return Record{}, fmt.Errorf("encoding record map: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	return r, nil
}

// NormalizeCompositions returns tokens sorted case-insensitively with
// duplicates (compared in lower case) and blank entries removed.
func NormalizeCompositions(tokens []string) []string {
	cleaned := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		li, lj := strings.ToLower(cleaned[i]), strings.ToLower(cleaned[j])
		if li != lj {
			return li < lj
		}
		return cleaned[i] < cleaned[j]
	})

	seen := make(map[string]bool, len(cleaned))
	out := make([]string, 0, len(cleaned))
	for _, t := range cleaned {
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinList serializes a keyword list with ListSeparator.
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// Patch is a sanitized partial record proposed by a refinement oracle.
// Each section only contains allow-listed fields with coerced values.
type Patch struct {
	Paper        map[string]any `json:"paper,omitempty" yaml:"paper,omitempty"`
	Nanomaterial map[string]any `json:"nanomaterial,omitempty" yaml:"nanomaterial,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return len(p.Paper) == 0 && len(p.Nanomaterial) == 0
}

// Map returns the patch in the same nested shape as Record.ToMap.
func (p Patch) Map() map[string]any {
	m := make(map[string]any, 2)
	if len(p.Paper) > 0 {
		m[sectionPaper] = p.Paper
	}
	if len(p.Nanomaterial) > 0 {
		m[sectionNanomaterial] = p.Nanomaterial
	}
	return m
}

// Result is a finished record plus the raw oracle response, kept for
// diagnostics when refinement ran.
type Result struct {
	RunID         string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Record        Record `json:"record" yaml:"record"`
	RawRefinement string `json:"raw_refinement,omitempty" yaml:"raw_refinement,omitempty"`
}
