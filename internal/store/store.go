// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extraction results in SQLite: one papers row per
// content fingerprint and child nanomaterials rows referencing it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// Store is a SQLite-backed result sink. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating the parent directory
// and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_hash TEXT NOT NULL UNIQUE,
			file_path TEXT,
			title TEXT,
			year INTEGER,
			doi TEXT,
			source_url TEXT,
			article_type TEXT,
			author_keywords TEXT,
			mesh_keywords TEXT,
			extraction_method TEXT,
			llm_model TEXT,
			llm_status TEXT,
			run_id TEXT,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS nanomaterials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			core_compositions TEXT,
			nm_category TEXT,
			physical_phase TEXT,
			crystallinity TEXT,
			cas_number TEXT,
			catalog_or_batch TEXT,
			evidence TEXT,
			characterization TEXT,
			bio_effects TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nanomaterials_paper_id ON nanomaterials(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_nanomaterials_category ON nanomaterials(nm_category)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Has reports whether a paper with the given fingerprint is stored.
func (s *Store) Has(ctx context.Context, fileHash string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers WHERE file_hash = ?`, fileHash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", fileHash, err)
	}
	return n > 0, nil
}

// Save inserts the result's paper and nanomaterial rows in one transaction.
// Saving a fingerprint that is already stored is a no-op.
func (s *Store) Save(ctx context.Context, res types.Result) error {
	rec := res.Record
	if rec.Paper.FileHash == "" {
		return fmt.Errorf("saving %s: missing file hash", rec.Paper.FilePath)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	p := rec.Paper
	out, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO papers (
			file_hash, file_path, title, year, doi, source_url, article_type,
			author_keywords, mesh_keywords, extraction_method, llm_model, llm_status,
			run_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.FileHash, nullString(p.FilePath), nullString(p.Title), nullInt(p.Year),
		nullString(p.DOI), nullString(p.SourceURL), nullString(p.ArticleType),
		nullString(p.AuthorKeywords), nullString(p.MeshKeywords),
		nullString(string(p.ExtractionMethod)), nullString(p.LLMModel), nullString(p.LLMStatus),
		nullString(res.RunID), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting paper: %w", err)
	}
	if n, err := out.RowsAffected(); err != nil {
		return fmt.Errorf("inserting paper: %w", err)
	} else if n == 0 {
		return tx.Commit()
	}
	paperID, err := out.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading paper id: %w", err)
	}

	nm := rec.Nanomaterial
	characterization, err := json.Marshal(nm)
	if err != nil {
		return fmt.Errorf("encoding nanomaterial: %w", err)
	}
	bio, err := json.Marshal(rec.BioEffects)
	if err != nil {
		return fmt.Errorf("encoding bio effects: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO nanomaterials (
			paper_id, core_compositions, nm_category, physical_phase, crystallinity,
			cas_number, catalog_or_batch, evidence, characterization, bio_effects
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		paperID, nullString(types.JoinList(nm.CoreCompositions)), nullString(nm.NMCategory),
		nullString(nm.PhysicalPhase), nullString(nm.Crystallinity), nullString(nm.CASNumber),
		nullString(nm.CatalogOrBatch), nullString(nm.Evidence),
		string(characterization), string(bio),
	)
	if err != nil {
		return fmt.Errorf("inserting nanomaterial: %w", err)
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
