// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/nanoextract/internal/secrets"
	"github.com/pdiddy/nanoextract/pkg/types"
)

// Defaults applied when neither a flag, the environment nor the config file
// sets a value.
const (
	defaultExcel       = "results.xlsx"
	defaultOllamaModel = "llama3.1"
)

// mustBind binds a flag to a config key. Binding only fails for a nil flag,
// which is a programming error.
func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// runConfig assembles the run settings from flags, environment and config
// file, with secrets filling the API key.
func runConfig() types.RunConfig {
	cfg := types.RunConfig{
		PDFDir:      viper.GetString("pdf_dir"),
		MaxPages:    viper.GetInt("max_pages"),
		TablePages:  viper.GetInt("table_pages"),
		Workers:     viper.GetInt("workers"),
		Database:    viper.GetString("database"),
		Excel:       viper.GetString("excel"),
		ResultsDir:  viper.GetString("results_dir"),
		MetricsFile: viper.GetString("metrics_file"),
		Refine: types.RefineConfig{
			Enabled:          viper.GetBool("refine.enabled"),
			Backend:          types.OracleBackend(viper.GetString("refine.backend")),
			Model:            viper.GetString("refine.model"),
			Host:             viper.GetString("refine.host"),
			APIKey:           secrets.Lookup(loadedSecrets, secrets.OpenAIAPIKey, viper.GetString("refine.api_key")),
			Timeout:          viper.GetDuration("refine.timeout"),
			RateLimitRetries: viper.GetInt("refine.rate_limit_retries"),
		},
		Snippet: types.SnippetConfig{
			Window:      viper.GetInt("snippet.window"),
			MaxSnippets: viper.GetInt("snippet.max_snippets"),
		},
	}
	if cfg.Database == "" && cfg.Excel == "" {
		cfg.Excel = defaultExcel
	}
	if cfg.Refine.Model == "" && cfg.Refine.Backend != types.BackendOpenAI {
		cfg.Refine.Model = defaultOllamaModel
	}
	return cfg
}
