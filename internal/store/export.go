// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Records returns every stored record in insertion order. A paper with
// several nanomaterial rows yields one record per row.
func (s *Store) Records(ctx context.Context) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.file_hash, p.file_path, p.title, p.year, p.doi, p.source_url,
			p.article_type, p.author_keywords, p.mesh_keywords, p.extraction_method,
			p.llm_model, p.llm_status, n.characterization, n.bio_effects
		 FROM papers p
		 LEFT JOIN nanomaterials n ON n.paper_id = p.id
		 ORDER BY p.id, n.id`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var (
			rec                                   types.Record
			filePath, title, doi, sourceURL       sql.NullString
			articleType, authorKW, meshKW, method sql.NullString
			llmModel, llmStatus, characterization sql.NullString
			bio                                   sql.NullString
			year                                  sql.NullInt64
		)
		err := rows.Scan(&rec.Paper.FileHash, &filePath, &title, &year, &doi, &sourceURL,
			&articleType, &authorKW, &meshKW, &method, &llmModel, &llmStatus,
			&characterization, &bio)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		rec.Paper.FilePath = filePath.String
		rec.Paper.Title = title.String
		rec.Paper.Year = int(year.Int64)
		rec.Paper.DOI = doi.String
		rec.Paper.SourceURL = sourceURL.String
		rec.Paper.ArticleType = articleType.String
		rec.Paper.AuthorKeywords = authorKW.String
		rec.Paper.MeshKeywords = meshKW.String
		rec.Paper.ExtractionMethod = types.ExtractionMethod(method.String)
		rec.Paper.LLMModel = llmModel.String
		rec.Paper.LLMStatus = llmStatus.String

		if characterization.Valid {
			if err := json.Unmarshal([]byte(characterization.String), &rec.Nanomaterial); err != nil {
				return nil, fmt.Errorf("decoding nanomaterial for %s: %w", rec.Paper.FileHash, err)
			}
		}
		if bio.Valid {
			if err := json.Unmarshal([]byte(bio.String), &rec.BioEffects); err != nil {
				return nil, fmt.Errorf("decoding bio effects for %s: %w", rec.Paper.FileHash, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Export writes every stored record to w as YAML or indented JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	records, err := s.Records(ctx)
	if err != nil {
		return err
	}
	if records == nil {
		records = []types.Record{}
	}

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
