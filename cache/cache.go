// Package cache implements the semantic answer cache.
//
// Entries map a normalized-prompt embedding to a "generic" answer — one
// stripped of user-specific context so it can be reused across users asking
// the same underlying question. Reuse is gated twice: the nearest neighbor
// must sit within a cosine-distance threshold AND, when the caller supplies
// a context signature, the stored signature must match it exactly. Both
// gates are required because similarity alone says the questions match,
// not that the askers' identity contexts do.
//
// Entries are immutable: a store always writes a fresh id, a hit never
// mutates anything, and there is no built-in expiry. Unbounded growth is a
// known capacity gap; see DESIGN.md.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"github.com/mementohq/memento-go-sdk/core"
)

// DefaultIndex is the vector index name for cache entries.
const DefaultIndex = "cache_qa"

const (
	// DefaultK is how many neighbors a lookup inspects.
	DefaultK = 3

	// DefaultThreshold is the loose-reuse cosine-distance gate. Deployments
	// wanting near-duplicate-only reuse tune this down (~0.12).
	DefaultThreshold = 0.22
)

// Meta is the per-entry annotation block. PromptHash is debug-only and
// never participates in matching.
type Meta struct {
	CreatedAt        time.Time
	PromptHash       string
	ContextSignature string
	Route            string
	Persona          string
}

// Entry is a stored generic answer. Immutable once written.
type Entry struct {
	ID            string
	Prompt        string // normalized form
	GenericAnswer string
	Embedding     []float32
	Meta          Meta
}

// Semantic is the vector-indexed answer cache.
type Semantic struct {
	index    core.VectorIndex
	embedder core.Embedder
	name     string
	logger   *log.Logger
	embCache *ristretto.Cache
	now      func() time.Time
}

// Option configures the cache.
type Option func(*Semantic)

// WithIndexName overrides the vector index name.
func WithIndexName(name string) Option {
	return func(c *Semantic) { c.name = name }
}

// WithLogger sets the cache's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Semantic) { c.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Semantic) { c.now = now }
}

// New creates a semantic cache over the given vector index and embedder.
func New(index core.VectorIndex, embedder core.Embedder, opts ...Option) *Semantic {
	// Memoizes embeddings of normalized prompts; a store right after a
	// missed lookup embeds the same text twice otherwise.
	embCache, _ := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})

	c := &Semantic{
		index:    index,
		embedder: embedder,
		name:     DefaultIndex,
		logger:   log.Default().With("component", "cache"),
		embCache: embCache,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// embed returns the embedding of already-normalized text, memoized.
func (c *Semantic) embed(ctx context.Context, normalized string) ([]float32, error) {
	if c.embCache != nil {
		if v, ok := c.embCache.Get(normalized); ok {
			if vec, ok := v.([]float32); ok {
				return vec, nil
			}
		}
	}
	vecs, err := c.embedder.Embed(ctx, []string{normalized})
	if err != nil {
		return nil, fmt.Errorf("embed prompt: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 input", len(vecs))
	}
	if c.embCache != nil {
		c.embCache.Set(normalized, vecs[0], int64(len(vecs[0])*4))
	}
	return vecs[0], nil
}

// Store writes a new cache entry for (prompt, genericAnswer). The prompt is
// normalized before embedding; meta is augmented with the creation time and
// a short hash of the normalized prompt.
func (c *Semantic) Store(ctx context.Context, prompt, genericAnswer string, meta Meta) error {
	normalized := Normalize(prompt)
	vec, err := c.embed(ctx, normalized)
	if err != nil {
		return err
	}

	meta.CreatedAt = c.now()
	meta.PromptHash = promptHash(normalized)

	rec := core.Record{
		ID:        uuid.New().String(),
		Embedding: vec,
		Fields: map[string]string{
			"prompt":            normalized,
			"generic_answer":    genericAnswer,
			"created_at":        strconv.FormatInt(meta.CreatedAt.Unix(), 10),
			"prompt_hash":       meta.PromptHash,
			"context_signature": meta.ContextSignature,
			"route":             meta.Route,
			"persona":           meta.Persona,
		},
	}
	if err := c.index.Upsert(ctx, c.name, rec); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	c.logger.Debug("stored generic answer", "id", rec.ID, "hash", meta.PromptHash, "route", meta.Route)
	return nil
}

// LookupOptions tune a cache lookup. Zero values take the defaults; an
// empty ContextSignature disables the identity gate. Threshold nil means
// DefaultThreshold; a pointer to 0 demands an exact duplicate.
type LookupOptions struct {
	K                int
	Threshold        *float64
	ContextSignature string
}

// Lookup finds the closest cached generic answer for the prompt. It
// returns nil on miss: no neighbor, best distance over the threshold, or a
// signature mismatch. Distance exactly at the threshold is a hit.
func (c *Semantic) Lookup(ctx context.Context, prompt string, opts LookupOptions) (*Entry, error) {
	if opts.K <= 0 {
		opts.K = DefaultK
	}
	threshold := DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	normalized := Normalize(prompt)
	vec, err := c.embed(ctx, normalized)
	if err != nil {
		return nil, err
	}

	rows, err := c.index.Search(ctx, c.name, vec, opts.K)
	if err != nil {
		return nil, fmt.Errorf("cache search: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	best := rows[0]
	for _, row := range rows[1:] {
		if row.Distance < best.Distance {
			best = row
		}
	}
	if best.Distance > threshold {
		return nil, nil
	}
	if opts.ContextSignature != "" && best.Fields["context_signature"] != opts.ContextSignature {
		c.logger.Debug("signature gate rejected near neighbor", "id", best.ID, "distance", best.Distance)
		return nil, nil
	}

	return entryFromRow(best), nil
}

func entryFromRow(row core.Row) *Entry {
	createdAt := time.Time{}
	if sec, err := strconv.ParseInt(row.Fields["created_at"], 10, 64); err == nil {
		createdAt = time.Unix(sec, 0)
	}
	return &Entry{
		ID:            row.ID,
		Prompt:        row.Fields["prompt"],
		GenericAnswer: row.Fields["generic_answer"],
		Embedding:     row.Embedding,
		Meta: Meta{
			CreatedAt:        createdAt,
			PromptHash:       row.Fields["prompt_hash"],
			ContextSignature: row.Fields["context_signature"],
			Route:            row.Fields["route"],
			Persona:          row.Fields["persona"],
		},
	}
}

func promptHash(normalized string) string {
	sum := sha1.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])[:10]
}
