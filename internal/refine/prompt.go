// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/nanoextract/internal/extract"
	"github.com/pdiddy/nanoextract/pkg/types"
)

// Character budgets for each excerpt in the request payload.
const (
	MaxTitlePageChars   = 2500
	MaxAbstractChars    = 2500
	MaxKeywordsChars    = 800
	MaxDescriptorsChars = 3500
)

// Snippets are the document excerpts shown to the oracle. Each is truncated
// to its budget before sending.
type Snippets struct {
	TitlePage   string
	Abstract    string
	Keywords    string
	Descriptors string
	TableRows   []string
}

// fieldHints override the generic kind description in the schema hint.
var fieldHints = map[string]string{
	"article_type":      "in vitro|in vivo|field|review|modelling|method",
	"author_keywords":   "string (semicolon-separated)",
	"mesh_keywords":     "string (semicolon-separated)",
	"core_compositions": "list of strings (e.g. TiO2, ZnO, Ag, CNT, graphene)",
	"nm_category":       "metal|metal_oxide|carbon|silica|polymer_plastic|quantum_dot|mof|nanocellulose|liposome|other",
	"physical_phase":    "string (e.g. anatase; rutile)",
	"cas_number":        "string (format: 1234-56-7)",
	"catalog_or_batch":  "string (e.g. lot=ABC123)",
}

var kindHints = map[fieldKind]string{
	kindString: "string",
	kindInt:    "int",
	kindList:   "list of strings",
}

type schemaLine struct {
	Name string
	Hint string
}

func schemaLines(allowed map[string]fieldKind) []schemaLine {
	var lines []schemaLine
	for _, name := range sortedKeys(allowed) {
		hint, ok := fieldHints[name]
		if !ok {
			hint = kindHints[allowed[name]]
		}
		lines = append(lines, schemaLine{Name: name, Hint: hint})
	}
	return lines
}

var systemPromptTmpl = template.Must(template.New("system").Parse(`You are a scientific PDF information extraction engine.
Return ONLY valid JSON. No markdown. No extra text.
Your output MUST be a PATCH object with top-level keys "paper" and/or "nanomaterial".
Within each, include only fields explicitly supported by the provided snippets.
If a field is unknown, OMIT it. Do not output null and do not guess.
Prefer descriptor_snippets for numeric and material characterization fields.
If table_rows contain characterization data you may assign those values, but copy the exact numbers from table_rows or descriptor_snippets. Do not invent measurements.
Do not rewrite the full object; output only the fields you are confident about.

Schema (omit unknown fields):
paper:
{{- range .Paper}}
  {{.Name}}: {{.Hint}}
{{- end}}
nanomaterial:
{{- range .Nanomaterial}}
  {{.Name}}: {{.Hint}}
{{- end}}
`))

// SystemPrompt renders the fixed instruction message.
func SystemPrompt() (string, error) {
	var buf bytes.Buffer
	err := systemPromptTmpl.Execute(&buf, struct{ Paper, Nanomaterial []schemaLine }{
		Paper:        schemaLines(paperAllowed),
		Nanomaterial: schemaLines(nanomaterialAllowed),
	})
	if err != nil {
		return "", fmt.Errorf("rendering system prompt: %w", err)
	}
	return buf.String(), nil
}

type payload struct {
	Draft        types.Record    `json:"draft_rules_result"`
	Snippets     snippetsPayload `json:"snippets"`
	Instructions instructions    `json:"output_instructions"`
}

type snippetsPayload struct {
	TitlePage   string   `json:"title_page_text"`
	Abstract    string   `json:"abstract_text"`
	Keywords    string   `json:"keywords_hint"`
	Descriptors string   `json:"descriptor_snippets"`
	TableRows   []string `json:"table_rows"`
}

type instructions struct {
	Format             string   `json:"format"`
	TopLevelKeys       []string `json:"top_level_keys"`
	PaperFields        []string `json:"paper_fields_allowed"`
	NanomaterialFields []string `json:"nanomaterial_fields_allowed"`
	UnknownRule        string   `json:"unknown_rule"`
}

// UserPayload renders the single user message: the draft, the truncated
// snippets and the output instructions as one JSON document.
func UserPayload(draft types.Record, s Snippets) (string, error) {
	rows := s.TableRows
	if len(rows) > extract.MaxTableRows {
		rows = rows[:extract.MaxTableRows]
	}
	if rows == nil {
		rows = []string{}
	}

	p := payload{
		Draft: draft,
		Snippets: snippetsPayload{
			TitlePage:   extract.Truncate(s.TitlePage, MaxTitlePageChars),
			Abstract:    extract.Truncate(s.Abstract, MaxAbstractChars),
			Keywords:    extract.Truncate(s.Keywords, MaxKeywordsChars),
			Descriptors: extract.Truncate(s.Descriptors, MaxDescriptorsChars),
			TableRows:   rows,
		},
		Instructions: instructions{
			Format:             "PATCH JSON only",
			TopLevelKeys:       []string{"paper", "nanomaterial"},
			PaperFields:        PaperAllowed(),
			NanomaterialFields: NanomaterialAllowed(),
			UnknownRule:        "OMIT field if unknown (do NOT output null)",
		},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
