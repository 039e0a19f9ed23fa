// Package inmem provides an in-process DocStore for local use and tests.
package inmem

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mementohq/memento-go-sdk/memory"
)

// DocStore keeps per-user fact documents in a map. Documents are stored as
// serialized JSON so Load hands back an independent copy, matching the
// read-modify-write contract of the real backends.
type DocStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New creates an empty in-memory document store.
func New() *DocStore {
	return &DocStore{docs: make(map[string][]byte)}
}

// Load returns the user's document, or nil when none exists.
func (s *DocStore) Load(ctx context.Context, userID string) (*memory.Document, error) {
	s.mu.RLock()
	raw, ok := s.docs[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var doc memory.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Treat a corrupt blob as absent; the store self-heals on write.
		return nil, nil
	}
	return &doc, nil
}

// Save replaces the user's document.
func (s *DocStore) Save(ctx context.Context, userID string, doc *memory.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[userID] = raw
	s.mu.Unlock()
	return nil
}
