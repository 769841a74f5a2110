// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pdiddy/nanoextract/pkg/types"
)

// DefaultOpenAIModel is used when RefineConfig.Model is empty.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIOracle calls an OpenAI-compatible chat completions endpoint.
type OpenAIOracle struct {
	client openai.Client
	model  string
}

// NewOpenAIOracle builds a client from cfg. A non-empty cfg.Host replaces
// the default base URL, which lets local OpenAI-compatible servers be used.
// The SDK's own retries are limited to cfg.RateLimitRetries.
func NewOpenAIOracle(cfg types.RefineConfig, client *http.Client) *OpenAIOracle {
	opts := []option.RequestOption{option.WithMaxRetries(cfg.RateLimitRetries)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Host != "" {
		opts = append(opts, option.WithBaseURL(cfg.Host))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIOracle{client: openai.NewClient(opts...), model: model}
}

// Complete sends messages as one chat completion at temperature 0 and
// returns the first choice's content.
func (o *OpenAIOracle) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Temperature: openai.Float(0),
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("calling openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
