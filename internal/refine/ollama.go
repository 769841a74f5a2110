// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/nanoextract/internal/httputil"
)

// DefaultOllamaHost is used when OllamaOracle.Host is empty.
const DefaultOllamaHost = "http://localhost:11434"

const ollamaChatPath = "/api/chat"

// OllamaOracle calls a local Ollama server's chat endpoint with streaming
// off and temperature 0.
type OllamaOracle struct {
	Host   string
	Model  string
	Client *http.Client

	// RateLimitRetries is passed to httputil.DoWithRetry. Zero sends each
	// request once.
	RateLimitRetries int
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// Complete posts messages to /api/chat and returns message.content.
func (o *OllamaOracle) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:    o.Model,
		Messages: messages,
		Options:  ollamaOptions{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	host := strings.TrimRight(o.Host, "/")
	if host == "" {
		host = DefaultOllamaHost
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host+ollamaChatPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, o.Client, req, o.RateLimitRetries)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Message.Content, nil
}
