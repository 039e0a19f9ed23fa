// Package rag retrieves knowledge-base snippets for context assembly.
//
// Document extraction and chunking happen upstream; this package only
// queries an already-populated vector index. Results are deduplicated to
// at most one chunk per source document, keeping the closest one, then
// capped to the requested count.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/mementohq/memento-go-sdk/core"
)

// DefaultIndex is the vector index name for knowledge-base chunks.
const DefaultIndex = "kb_chunks"

// DefaultTopK is the snippet count returned when callers don't specify one.
const DefaultTopK = 3

// Searcher implements core.Retriever over a vector index.
type Searcher struct {
	index    core.VectorIndex
	embedder core.Embedder
	name     string
}

// NewSearcher creates a KB searcher.
func NewSearcher(index core.VectorIndex, embedder core.Embedder) *Searcher {
	return &Searcher{index: index, embedder: embedder, name: DefaultIndex}
}

// Search embeds the query and returns the topK closest snippets, at most
// one per source document.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]core.Snippet, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Overfetch so per-document dedupe still fills topK.
	rows, err := s.index.Search(ctx, s.name, vecs[0], topK*3)
	if err != nil {
		return nil, fmt.Errorf("kb search: %w", err)
	}

	bestByDoc := make(map[string]core.Snippet)
	for _, row := range rows {
		docID := row.Fields["doc_id"]
		snippet := core.Snippet{
			Text:     row.Fields["text"],
			Source:   row.Fields["source"],
			DocID:    docID,
			ChunkID:  row.Fields["chunk_id"],
			FileName: row.Fields["file_name"],
			Distance: row.Distance,
		}
		if prev, ok := bestByDoc[docID]; !ok || snippet.Distance < prev.Distance {
			bestByDoc[docID] = snippet
		}
	}

	out := make([]core.Snippet, 0, len(bestByDoc))
	for _, sn := range bestByDoc {
		out = append(out, sn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// Ingest stores one pre-chunked snippet. It exists for wiring demos and
// tests; production ingestion pipelines write to the index directly.
func (s *Searcher) Ingest(ctx context.Context, text, source, docID, fileName string, chunkIndex int) error {
	vecs, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("embed chunk: %w", err)
	}
	rec := core.Record{
		ID:        uuid.New().String(),
		Embedding: vecs[0],
		Fields: map[string]string{
			"text":        text,
			"source":      source,
			"doc_id":      docID,
			"chunk_id":    fmt.Sprintf("%s:%d", docID, chunkIndex),
			"chunk_index": strconv.Itoa(chunkIndex),
			"file_name":   fileName,
		},
	}
	if err := s.index.Upsert(ctx, s.name, rec); err != nil {
		return fmt.Errorf("ingest chunk: %w", err)
	}
	return nil
}
