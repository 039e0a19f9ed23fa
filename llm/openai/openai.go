// Package openai adapts the OpenAI chat completions API to the
// core.Generator contract, for deployments that route generation through an
// OpenAI-compatible endpoint.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/mementohq/memento-go-sdk/core"
)

// DefaultModel is used when the request does not name one.
const DefaultModel = "gpt-4o-mini"

// Generator calls the OpenAI chat completions API.
type Generator struct {
	client *openai.Client
}

// New creates a generator from an API key. An empty baseURL uses the
// default OpenAI endpoint.
func New(apiKey, baseURL string) *Generator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &Generator{client: &client}
}

// NewWithClient wraps an existing client.
func NewWithClient(client *openai.Client) *Generator {
	return &Generator{client: client}
}

// Generate performs a single completion and returns the first choice's
// content.
func (g *Generator) Generate(ctx context.Context, req core.GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       model,
		Temperature: param.Opt[float64]{Value: req.Temperature},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.Opt[int64]{Value: req.MaxTokens}
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai: no completion choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}
