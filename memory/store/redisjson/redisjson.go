// Package redisjson provides a Redis-backed DocStore.
//
// Each user's fact document lives as one JSON blob under user:<id>:ltm.
// Mutations are whole-document read-modify-write cycles by design: the
// store accepts best-effort consistency for concurrent writers rather
// than locking, as long as no torn document is ever persisted — SET of
// the full blob guarantees that.
package redisjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/mementohq/memento-go-sdk/memory"
)

// DocStore stores fact documents in Redis.
type DocStore struct {
	client *redis.Client
}

// New creates a Redis document store over an existing client.
func New(client *redis.Client) *DocStore {
	return &DocStore{client: client}
}

func key(userID string) string {
	return fmt.Sprintf("user:%s:ltm", userID)
}

// Load fetches and decodes the user's document. A missing key or an
// undecodable blob both come back as nil: malformed state self-heals on
// the next write instead of erroring.
func (s *DocStore) Load(ctx context.Context, userID string) (*memory.Document, error) {
	raw, err := s.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var doc memory.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, nil
	}
	return &doc, nil
}

// Save writes the full document blob.
func (s *DocStore) Save(ctx context.Context, userID string, doc *memory.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal fact document: %w", err)
	}
	if err := s.client.Set(ctx, key(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
