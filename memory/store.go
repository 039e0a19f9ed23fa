// Package memory implements the per-user long-term fact store.
//
// Facts are structured observations with dedupe, singleton conflict
// resolution, decay-based ranking and FIFO capacity pruning. The package
// owns the fact model and the merge/rank/prune policy; the raw document
// storage is behind the DocStore interface with adapters under
// memory/store (in-memory for local use, Redis for production).
//
// Failure policy: fact promotion happens inside ordinary conversation
// turns, so writes never fail the caller — on storage malfunction the
// store logs and returns best-effort state. Reads degrade to empty and
// report the storage error separately so callers can tell "no data" from
// "storage down" and still choose to continue.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DocStore is the raw per-user document primitive. Load returns a nil
// document when none exists. Every mutation the Store performs is a full
// load-modify-save cycle; implementations do not need to be linearizable,
// only to never persist a torn write.
type DocStore interface {
	Load(ctx context.Context, userID string) (*Document, error)
	Save(ctx context.Context, userID string, doc *Document) error
}

const (
	// DefaultCap is the per-user fact capacity. Inserts beyond it evict
	// from the front of the insertion order regardless of score.
	DefaultCap = 128

	// rankTau is the recency decay constant (~2 weeks).
	rankTau = 14 * 24 * time.Hour
)

// Store provides the long-term memory operations for all users.
type Store struct {
	docs   DocStore
	cap    int
	logger *log.Logger
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCap overrides the per-user fact capacity.
func WithCap(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.cap = n
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a fact store over the given document backend.
func NewStore(docs DocStore, opts ...StoreOption) *Store {
	s := &Store{
		docs:   docs,
		cap:    DefaultCap,
		logger: log.Default().With("component", "memory"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load fetches the user's document, healing missing or malformed state to
// an empty document. The error is reported alongside the usable zero state.
func (s *Store) load(ctx context.Context, userID string) (*Document, error) {
	doc, err := s.docs.Load(ctx, userID)
	if err != nil {
		return NewDocument(), fmt.Errorf("load fact document: %w", err)
	}
	if doc == nil {
		return NewDocument(), nil
	}
	doc.Heal()
	return doc, nil
}

// Upsert inserts or merges a fact. A repeated observation of the same
// (type, value) bumps count and recency and keeps the highest confidence
// seen; the value itself is never overwritten. After every upsert the
// capacity cap is enforced by evicting the oldest-inserted facts.
//
// Upsert never fails the caller: on storage error it logs and returns the
// best-effort fact state.
func (s *Store) Upsert(ctx context.Context, userID, factType, value, source string, confidence float64, ttl time.Duration) Fact {
	now := s.now()
	id := FactID(factType, value)

	doc, loadErr := s.load(ctx, userID)
	if loadErr != nil {
		s.logger.Warn("upsert proceeding on healed document", "user", userID, "err", loadErr)
	}

	fact, exists := doc.Facts[id]
	if exists {
		fact.LastSeen = now
		fact.Count++
		fact.Confidence = math.Max(fact.Confidence, confidence)
		if source != "" {
			fact.Source = source
		}
		if ttl > 0 {
			exp := now.Add(ttl)
			fact.ExpiresAt = &exp
		}
	} else {
		fact = Fact{
			ID:         id,
			Type:       factType,
			Value:      strings.TrimSpace(value),
			Source:     source,
			Confidence: confidence,
			FirstSeen:  now,
			LastSeen:   now,
			Count:      1,
		}
		if ttl > 0 {
			exp := now.Add(ttl)
			fact.ExpiresAt = &exp
		}
		doc.Order = append(doc.Order, id)
	}
	doc.Facts[id] = fact

	s.prune(doc)

	if err := s.docs.Save(ctx, userID, doc); err != nil {
		s.logger.Warn("fact upsert not persisted", "user", userID, "type", factType, "err", err)
	}
	return fact
}

// UpsertUnique enforces singleton exclusivity: every existing fact of the
// same type whose value differs case-insensitively is deleted before the
// upsert. Two concurrent calls for the same type can both pass the delete
// scan before either commits, leaving two live values; that race is an
// accepted best-effort outcome, not a crash condition.
func (s *Store) UpsertUnique(ctx context.Context, userID, factType, value, source string, confidence float64) Fact {
	facts, err := s.GetAll(ctx, userID)
	if err != nil {
		s.logger.Warn("singleton scan degraded to empty", "user", userID, "type", factType, "err", err)
	}
	for _, f := range facts {
		if f.Type == factType && !strings.EqualFold(f.Value, value) {
			s.Delete(ctx, userID, f.ID)
		}
	}
	return s.Upsert(ctx, userID, factType, value, source, confidence, 0)
}

// GetAll returns the user's live facts, lazily filtering out expired ones.
// There is no background reaper; expiry is evaluated per call. On storage
// error the fact slice is empty and the error is returned for callers that
// care; most ignore it by policy.
func (s *Store) GetAll(ctx context.Context, userID string) ([]Fact, error) {
	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Fact, 0, len(doc.Order))
	for _, id := range doc.Order {
		f, ok := doc.Facts[id]
		if !ok || f.Expired(now) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Rank returns the user's top facts by
//
//	score = 0.6*ln(1+count) + 0.3*exp(-(now-lastSeen)/tau) + 0.1*confidence
//
// with tau = 14 days. Sort is descending with a stable tie-break on
// insertion order. A zero now means the current time.
func (s *Store) Rank(ctx context.Context, userID string, limit int, now time.Time) []Fact {
	facts, err := s.GetAll(ctx, userID)
	if err != nil {
		s.logger.Warn("rank degraded to empty", "user", userID, "err", err)
		return nil
	}
	if len(facts) == 0 || limit <= 0 {
		return nil
	}
	if now.IsZero() {
		now = s.now()
	}

	sort.SliceStable(facts, func(i, j int) bool {
		return factScore(facts[i], now) > factScore(facts[j], now)
	})
	if limit < len(facts) {
		facts = facts[:limit]
	}
	return facts
}

func factScore(f Fact, now time.Time) float64 {
	count := f.Count
	if count < 0 {
		count = 0
	}
	recency := math.Exp(-now.Sub(f.LastSeen).Seconds() / rankTau.Seconds())
	return 0.6*math.Log1p(float64(count)) + 0.3*recency + 0.1*f.Confidence
}

// Delete removes one fact. Returns whether it existed.
func (s *Store) Delete(ctx context.Context, userID, factID string) bool {
	doc, err := s.load(ctx, userID)
	if err != nil {
		s.logger.Warn("delete degraded to no-op", "user", userID, "fact", factID, "err", err)
		return false
	}
	if !doc.remove(factID) {
		return false
	}
	if err := s.docs.Save(ctx, userID, doc); err != nil {
		s.logger.Warn("fact delete not persisted", "user", userID, "fact", factID, "err", err)
	}
	return true
}

// Clear resets the user's memory to an empty document.
func (s *Store) Clear(ctx context.Context, userID string) {
	if err := s.docs.Save(ctx, userID, NewDocument()); err != nil {
		s.logger.Warn("clear not persisted", "user", userID, "err", err)
	}
}

// prune evicts from the front of the insertion order until the
// document fits the cap. Score is deliberately ignored: oldest insertion
// goes first.
func (s *Store) prune(doc *Document) {
	for len(doc.Order) > s.cap {
		oldest := doc.Order[0]
		doc.Order = doc.Order[1:]
		delete(doc.Facts, oldest)
	}
}
