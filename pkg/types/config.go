// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OracleBackend identifies the refinement oracle transport.
type OracleBackend string

const (
	BackendOllama OracleBackend = "ollama"
	BackendOpenAI OracleBackend = "openai"
)

// RefineConfig holds settings for the optional refinement pass.
type RefineConfig struct {
	// Enabled turns the refinement pass on. When false every record is
	// produced by the rules alone.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Backend selects the oracle transport (default "ollama").
	Backend OracleBackend `json:"backend" yaml:"backend"`

	// Model is the model identifier sent to the oracle.
	Model string `json:"model" yaml:"model"`

	// Host is the oracle base URL (default http://localhost:11434 for Ollama).
	Host string `json:"host" yaml:"host"`

	// APIKey authenticates OpenAI-compatible endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single oracle call (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// RateLimitRetries is the number of HTTP 429 retries (default 0, no retry).
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries"`
}

// SnippetConfig bounds the descriptor context handed to the oracle.
type SnippetConfig struct {
	// Window is the radius in characters around each keyword hit (default 180).
	Window int `json:"window" yaml:"window"`

	// MaxSnippets caps the number of snippets (default 12).
	MaxSnippets int `json:"max_snippets" yaml:"max_snippets"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json" (default console).
	Format string `json:"format" yaml:"format"`
}

// RunConfig holds settings for a batch extraction run.
type RunConfig struct {
	// PDFDir is the directory scanned for input documents.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// MaxPages is the number of leading pages used for bibliographic
	// extraction (default 3).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// TablePages is the number of pages scanned for table rows (default 26).
	TablePages int `json:"table_pages" yaml:"table_pages"`

	// Workers is the number of documents processed concurrently (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// Database is the SQLite output path. Mutually exclusive with Excel.
	Database string `json:"database,omitempty" yaml:"database,omitempty"`

	// Excel is the workbook output path.
	Excel string `json:"excel,omitempty" yaml:"excel,omitempty"`

	// ResultsDir, when set, receives one YAML file per document including
	// the raw oracle response.
	ResultsDir string `json:"results_dir,omitempty" yaml:"results_dir,omitempty"`

	// MetricsFile, when set, receives Prometheus metrics in text format at
	// the end of the run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`

	Refine  RefineConfig  `json:"refine" yaml:"refine"`
	Snippet SnippetConfig `json:"snippet" yaml:"snippet"`
}
