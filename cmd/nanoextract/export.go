// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nanoextract/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records as YAML or JSON",
	Long: `Export reads every record from a SQLite database written by "run" and
writes them as a YAML or JSON list, to --out or standard output.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("database", "", "SQLite database path (required)")
	exportCmd.Flags().String("format", store.FormatYAML, "output format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default: standard output)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("database")
	if dbPath == "" {
		return fmt.Errorf("--database is required")
	}
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	return st.Export(cmd.Context(), w, format)
}
