// Package core defines the collaborator contracts shared across the SDK.
//
// The decision subsystem (memory, cache, assembler, engine) never talks to a
// concrete backend directly: embeddings, text generation, vector search,
// profile and short-term storage are all consumed through the interfaces in
// this package. Adapters live in their own subpackages (cache/index/chromem,
// llm/anthropic, llm/openai, embedder/..., store/...), so production swaps
// never touch the decision logic.
package core

import (
	"context"
	"time"
)

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), openai (API), onnx (local model).
type Embedder interface {
	// Embed converts texts to embedding vectors, order-preserving,
	// one vector per input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns embedding vector size.
	Dimensions() int
}

// Message is one chat message handed to a Generator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest carries everything a completion call needs.
type GenerateRequest struct {
	System      string
	Messages    []Message
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Generator runs a text completion. It is the only collaborator whose
// failure is allowed to fail a turn: the engine does not retry it.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Row is the single normalized shape for vector-index results. Backends
// return heterogeneous result types; adapters flatten them here so callers
// only ever see one row type.
type Row struct {
	ID        string
	Distance  float64 // cosine distance, lower is closer
	Fields    map[string]string
	Embedding []float32
}

// Record is a row to insert into a vector index.
type Record struct {
	ID        string
	Embedding []float32
	Fields    map[string]string
}

// VectorIndex is the nearest-neighbor query primitive. Search must return
// fewer than k rows without erroring when the index holds fewer.
type VectorIndex interface {
	Upsert(ctx context.Context, index string, rec Record) error
	Search(ctx context.Context, index string, vector []float32, k int) ([]Row, error)
}

// ProfileStore holds the coarse per-user profile hash. Long-term memory
// singletons are overlaid on top of it at assembly time; the raw record is
// never authoritative for identity fields the memory has newer values for.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (map[string]string, error)
	Upsert(ctx context.Context, userID string, fields map[string]string) error
}

// Turn is one message of recent conversation history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ShortTermStore keeps the rolling recent-turn window for a session.
// Retention (time-based expiry) is owned by the implementation.
type ShortTermStore interface {
	Append(ctx context.Context, sessionID string, turn Turn) error
	Recent(ctx context.Context, sessionID string, n int) ([]Turn, error)
}

// RouteMatch is a topic classification for a query.
type RouteMatch struct {
	Name     string
	Distance float64
	Metadata map[string]string
}

// Router labels a query with a semantic topic route. A nil match means no
// route cleared its threshold; that is not an error.
type Router interface {
	Classify(ctx context.Context, text string) (*RouteMatch, error)
}

// Snippet is one retrieval result from the knowledge base.
type Snippet struct {
	Text     string
	Source   string
	DocID    string
	ChunkID  string
	FileName string
	Distance float64
}

// Retriever finds knowledge-base snippets relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Snippet, error)
}
