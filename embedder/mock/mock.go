// Package mock provides a deterministic embedder for tests and offline
// development. Identical texts always embed to the identical unit vector,
// so exact-repeat cache lookups hit at distance zero without any model.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder generates hash-seeded pseudo-random unit vectors.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with the given dimensionality. Zero or
// negative picks 384 to match all-MiniLM-L6-v2.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &Embedder{dimensions: dimensions}
}

// Embed returns one deterministic embedding per input text.
func (m *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.embedOne(text)
	}
	return out, nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dimensions
}

func (m *Embedder) embedOne(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))

	embedding := make([]float32, m.dimensions)

	// LCG seeded by the text hash keeps the output stable across runs.
	seed := h.Sum64()
	for i := 0; i < m.dimensions; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding)
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
