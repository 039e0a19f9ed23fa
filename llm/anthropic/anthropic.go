// Package anthropic adapts the Anthropic Messages API to the core.Generator
// contract.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mementohq/memento-go-sdk/core"
)

// DefaultModel is used when the request does not name one.
const DefaultModel = "claude-sonnet-4-20250514"

// Generator calls the Anthropic Messages API.
type Generator struct {
	client *anthropic.Client
}

// New wraps an Anthropic client.
func New(client *anthropic.Client) *Generator {
	return &Generator{client: client}
}

// Generate performs a single non-streaming completion and returns the
// concatenated text blocks of the response.
func (g *Generator) Generate(ctx context.Context, req core.GenerateRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: req.MaxTokens,
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
