// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine asks an external oracle (a chat-style language model) for a
// bounded patch to a rules-derived draft record, and accepts only the parts
// of its answer that conform to the record schema.
//
// The oracle sees the draft plus a few truncated text excerpts, never the
// full document. Its reply is parsed leniently (code fences and surrounding
// prose are tolerated) and then sanitized against per-section allow-lists.
package refine

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// Chat roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message sent to an oracle.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Oracle completes a chat request and returns the raw reply text.
type Oracle interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// NewOracle returns the transport selected by cfg.Backend. An empty backend
// selects Ollama.
func NewOracle(cfg types.RefineConfig, client *http.Client) (Oracle, error) {
	switch cfg.Backend {
	case types.BackendOllama, "":
		return &OllamaOracle{
			Host:             cfg.Host,
			Model:            cfg.Model,
			Client:           client,
			RateLimitRetries: cfg.RateLimitRetries,
		}, nil
	case types.BackendOpenAI:
		if cfg.APIKey == "" && cfg.Host == "" {
			return nil, fmt.Errorf("openai backend requires an API key or a compatible host")
		}
		return NewOpenAIOracle(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown oracle backend %q", cfg.Backend)
	}
}
