// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/nanoextract/internal/document"
	"github.com/pdiddy/nanoextract/internal/export"
	"github.com/pdiddy/nanoextract/internal/metrics"
	"github.com/pdiddy/nanoextract/internal/pipeline"
	"github.com/pdiddy/nanoextract/internal/refine"
	"github.com/pdiddy/nanoextract/internal/store"
	"github.com/pdiddy/nanoextract/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract records from every PDF in a directory",
	Long: `Run reads each PDF in --pdf-dir, builds a rules draft, optionally refines
it with a language model, and stores the result. With --database, records go
to SQLite and papers already stored are skipped; otherwise one workbook row
is written per paper. --results-dir additionally keeps one YAML file per
paper with the raw model reply.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.String("pdf-dir", "", "directory containing PDF files (required)")
	f.Bool("llm", false, "enable hybrid extraction (rules, then model refinement)")
	f.String("llm-backend", string(types.BackendOllama), "refinement backend: ollama or openai")
	f.String("llm-model", "", "model name (default llama3.1 for ollama, gpt-4o-mini for openai)")
	f.String("llm-host", "", "oracle base URL (default http://localhost:11434 for ollama)")
	f.Duration("llm-timeout", pipeline.DefaultOracleTimeout, "timeout for one refinement call")
	f.Int("llm-retries", 0, "retries on HTTP 429 from the oracle")
	f.String("database", "", "SQLite database path; when set, records are saved there")
	f.String("excel", "", "Excel output path when no database is used (default results.xlsx)")
	f.String("results-dir", "", "directory for per-paper YAML results")
	f.Int("max-pages", document.DefaultMetaPages, "leading pages read for bibliographic fields")
	f.Int("table-pages", document.DefaultLayoutPages, "leading pages scanned for table rows")
	f.Int("workers", 1, "documents processed concurrently")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this path")

	for key, flag := range map[string]string{
		"pdf_dir":                   "pdf-dir",
		"refine.enabled":            "llm",
		"refine.backend":            "llm-backend",
		"refine.model":              "llm-model",
		"refine.host":               "llm-host",
		"refine.timeout":            "llm-timeout",
		"refine.rate_limit_retries": "llm-retries",
		"database":                  "database",
		"excel":                     "excel",
		"results_dir":               "results-dir",
		"max_pages":                 "max-pages",
		"table_pages":               "table-pages",
		"workers":                   "workers",
		"metrics_file":              "metrics-file",
	} {
		mustBind(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := runConfig()
	if cfg.PDFDir == "" {
		return fmt.Errorf("--pdf-dir is required")
	}

	paths, err := document.List(cfg.PDFDir)
	if err != nil {
		return err
	}

	processor, err := newProcessor(cfg)
	if err != nil {
		return err
	}

	sinks, err := openSinks(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	runner := &pipeline.Runner{
		Reader:    &document.PDFReader{LayoutPages: cfg.TablePages, Log: logger},
		Processor: processor,
		Sinks:     sinks,
		Workers:   cfg.Workers,
		Metrics:   m,
		Log:       logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := runner.Run(ctx, paths, os.Stdout)

	var closeErr error
	for _, s := range sinks {
		closeErr = errors.Join(closeErr, s.Close())
	}
	if cfg.MetricsFile != "" {
		if err := m.WriteFile(cfg.MetricsFile); err != nil {
			logger.Warn("writing metrics failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}

	switch {
	case runErr != nil:
		return fmt.Errorf("run interrupted: %w", runErr)
	case closeErr != nil:
		return fmt.Errorf("closing outputs: %w", closeErr)
	case summary.HasFailures():
		return fmt.Errorf("%d paper(s) failed extraction", summary.Failed)
	}
	return nil
}

// newProcessor builds the per-document processor; the refiner is only set
// when refinement is enabled.
func newProcessor(cfg types.RunConfig) (*pipeline.Processor, error) {
	p := &pipeline.Processor{
		Timeout:   cfg.Refine.Timeout,
		MetaPages: cfg.MaxPages,
		Snippet:   cfg.Snippet,
		Log:       logger,
	}
	if !cfg.Refine.Enabled {
		return p, nil
	}
	oracle, err := refine.NewOracle(cfg.Refine, &http.Client{})
	if err != nil {
		return nil, err
	}
	p.Refiner = &refine.Refiner{Oracle: oracle, Log: logger}
	p.Model = cfg.Refine.Model
	if p.Model == "" {
		p.Model = refine.DefaultOpenAIModel
	}
	logger.Info("refinement enabled",
		zap.String("backend", string(cfg.Refine.Backend)),
		zap.String("model", p.Model),
	)
	return p, nil
}

// openSinks opens the record store (SQLite or workbook) and the optional
// results directory. Any failure here is fatal before processing starts.
func openSinks(cfg types.RunConfig) ([]pipeline.Sink, error) {
	var sinks []pipeline.Sink
	if cfg.Database != "" {
		st, err := store.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, st)
	} else {
		wb, err := export.NewWorkbook(cfg.Excel)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, wb)
	}

	if cfg.ResultsDir != "" {
		rd, err := export.NewResultsDir(cfg.ResultsDir)
		if err != nil {
			for _, s := range sinks {
				s.Close()
			}
			return nil, err
		}
		sinks = append(sinks, rd)
	}
	return sinks, nil
}

