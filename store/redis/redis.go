// Package redis provides Redis-backed profile and short-term conversation
// stores.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mementohq/memento-go-sdk/core"
)

// DefaultHistoryTTL is how long an idle session's history survives. Each
// append refreshes it.
const DefaultHistoryTTL = 30 * time.Minute

func profileKey(userID string) string {
	return "user:" + userID + ":profile"
}

func historyKey(sessionID string) string {
	return "chat:" + sessionID + ":history"
}

var _ core.ProfileStore = (*ProfileStore)(nil)

// ProfileStore keeps one hash per user.
type ProfileStore struct {
	client *redis.Client
}

// NewProfileStore wraps a Redis client.
func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// Get returns the user's profile fields, or an empty map for an unknown
// user.
func (s *ProfileStore) Get(ctx context.Context, userID string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, profileKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis profile get: %w", err)
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return fields, nil
}

// Upsert merges the given fields into the user's profile hash.
func (s *ProfileStore) Upsert(ctx context.Context, userID string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	if err := s.client.HSet(ctx, profileKey(userID), values).Err(); err != nil {
		return fmt.Errorf("redis profile upsert: %w", err)
	}
	return nil
}

var _ core.ShortTermStore = (*ShortTermStore)(nil)

// ShortTermStore keeps a rolling per-session message list with a sliding
// TTL.
type ShortTermStore struct {
	client *redis.Client
	ttl    time.Duration
}

// ShortTermOption configures the store.
type ShortTermOption func(*ShortTermStore)

// WithHistoryTTL overrides the sliding session TTL.
func WithHistoryTTL(ttl time.Duration) ShortTermOption {
	return func(s *ShortTermStore) { s.ttl = ttl }
}

// NewShortTermStore wraps a Redis client.
func NewShortTermStore(client *redis.Client, opts ...ShortTermOption) *ShortTermStore {
	s := &ShortTermStore{client: client, ttl: DefaultHistoryTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append pushes a turn onto the session list and refreshes the TTL.
func (s *ShortTermStore) Append(ctx context.Context, sessionID string, turn core.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("redis history append: %w", err)
	}
	key := historyKey(sessionID)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("redis history append: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis history expire: %w", err)
		}
	}
	return nil
}

// Recent returns the last n turns in chronological order. Undecodable
// entries are skipped.
func (s *ShortTermStore) Recent(ctx context.Context, sessionID string, n int) ([]core.Turn, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := s.client.LRange(ctx, historyKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis history recent: %w", err)
	}

	turns := make([]core.Turn, 0, len(raw))
	for _, item := range raw {
		var turn core.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
