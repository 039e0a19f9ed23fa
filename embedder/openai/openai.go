// Package openai implements the core.Embedder contract on top of the
// OpenAI embeddings API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mementohq/memento-go-sdk/core"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-3-small"

const defaultDimensions = 1536

var _ core.Embedder = (*Embedder)(nil)

// Embedder calls the OpenAI embeddings endpoint.
type Embedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// Option configures the embedder.
type Option func(*Embedder)

// WithModel overrides the embedding model. The caller must pass the model's
// output size, since dimensionality varies per model.
func WithModel(model string, dimensions int) Option {
	return func(e *Embedder) {
		e.model = model
		e.dimensions = dimensions
	}
}

// New creates an embedder from an API key.
func New(apiKey string, opts ...Option) *Embedder {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return NewWithClient(&client, opts...)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *openai.Client, opts ...Option) *Embedder {
	e := &Embedder{
		client:     client,
		model:      DefaultModel,
		dimensions: defaultDimensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns one embedding per input text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
