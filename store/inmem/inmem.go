// Package inmem provides in-memory profile and short-term stores for tests
// and single-process demos.
package inmem

import (
	"context"
	"sync"

	"github.com/mementohq/memento-go-sdk/core"
)

var _ core.ProfileStore = (*ProfileStore)(nil)

// ProfileStore keeps profiles in a map.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]map[string]string
}

// NewProfileStore creates an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]map[string]string)}
}

// Get returns a copy of the user's profile. Unknown users get an empty map.
func (s *ProfileStore) Get(ctx context.Context, userID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.profiles[userID]))
	for k, v := range s.profiles[userID] {
		out[k] = v
	}
	return out, nil
}

// Upsert merges fields into the user's profile.
func (s *ProfileStore) Upsert(ctx context.Context, userID string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		profile = make(map[string]string, len(fields))
		s.profiles[userID] = profile
	}
	for k, v := range fields {
		profile[k] = v
	}
	return nil
}

var _ core.ShortTermStore = (*ShortTermStore)(nil)

// ShortTermStore keeps per-session turn slices.
type ShortTermStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.Turn
}

// NewShortTermStore creates an empty store.
func NewShortTermStore() *ShortTermStore {
	return &ShortTermStore{sessions: make(map[string][]core.Turn)}
}

// Append adds a turn to the session.
func (s *ShortTermStore) Append(ctx context.Context, sessionID string, turn core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return nil
}

// Recent returns the last n turns in chronological order.
func (s *ShortTermStore) Recent(ctx context.Context, sessionID string, n int) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	if n <= 0 || len(turns) == 0 {
		return nil, nil
	}
	if n > len(turns) {
		n = len(turns)
	}
	out := make([]core.Turn, n)
	copy(out, turns[len(turns)-n:])
	return out, nil
}
