// Package chromem adapts chromem-go to the core.VectorIndex contract.
// chromem-go is a pure Go, embedded vector database, which keeps the SDK
// runnable with zero external services; production deployments swap in a
// server-backed index behind the same interface.
package chromem

import (
	"context"
	"fmt"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/mementohq/memento-go-sdk/core"
)

// Index is a chromem-backed core.VectorIndex. Each logical index name maps
// to one chromem collection.
type Index struct {
	db          *chromemgo.DB
	collections map[string]*chromemgo.Collection
	mu          sync.RWMutex
}

// New creates an in-memory chromem index.
func New() *Index {
	return &Index{
		db:          chromemgo.NewDB(),
		collections: make(map[string]*chromemgo.Collection),
	}
}

func (x *Index) collection(name string) (*chromemgo.Collection, error) {
	x.mu.RLock()
	col, ok := x.collections[name]
	x.mu.RUnlock()
	if ok {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if col, ok := x.collections[name]; ok {
		return col, nil
	}

	// No embedding func: callers always provide vectors. Default cosine
	// distance.
	col, err := x.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	x.collections[name] = col
	return col, nil
}

// Upsert adds a record to the named index.
func (x *Index) Upsert(ctx context.Context, index string, rec core.Record) error {
	col, err := x.collection(index)
	if err != nil {
		return err
	}

	metadata := make(map[string]string, len(rec.Fields))
	for k, v := range rec.Fields {
		metadata[k] = v
	}

	content := rec.Fields["prompt"]
	if content == "" {
		content = rec.Fields["text"]
	}
	doc := chromemgo.Document{
		ID:        rec.ID,
		Content:   content,
		Embedding: rec.Embedding,
		Metadata:  metadata,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Search returns the k nearest rows by cosine distance. chromem reports
// similarity (higher is closer); the adapter flips it to distance so every
// consumer sees one convention. Fewer than k rows is not an error.
func (x *Index) Search(ctx context.Context, index string, vector []float32, k int) ([]core.Row, error) {
	col, err := x.collection(index)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection.
	if n := col.Count(); n < k {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	rows := make([]core.Row, 0, len(results))
	for _, res := range results {
		rows = append(rows, core.Row{
			ID:        res.ID,
			Distance:  1 - float64(res.Similarity),
			Fields:    res.Metadata,
			Embedding: res.Embedding,
		})
	}
	return rows, nil
}
