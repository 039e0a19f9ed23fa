package memory

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Fact is one structured long-term observation about a user.
type Fact struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Value      string     `json:"value"`
	Source     string     `json:"source"`
	Confidence float64    `json:"confidence"`
	FirstSeen  time.Time  `json:"first_seen"`
	LastSeen   time.Time  `json:"last_seen"`
	Count      int        `json:"count"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the fact's TTL has passed as of now.
func (f Fact) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && now.After(*f.ExpiresAt)
}

// FactID derives the deterministic fact id from (type, value). The value is
// trimmed and lower-cased first, so casing and whitespace variants of the
// same observation collide to one fact.
func FactID(factType, value string) string {
	base := factType + "::" + strings.ToLower(strings.TrimSpace(value))
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])[:16]
}

// SingletonTypes are identity-like fact types allowed at most one live value
// per user. UpsertUnique enforces the exclusivity.
var SingletonTypes = map[string]bool{
	"name":               true,
	"company":            true,
	"location":           true,
	"location_city":      true,
	"location_country":   true,
	"timezone":           true,
	"language":           true,
	"locale":             true,
	"role":               true,
	"org":                true,
	"team":               true,
	"persona":            true,
	"tone":               true,
	"contact_preference": true,
	"currency":           true,
	"risk_profile":       true,
	"investment_horizon": true,
}

// IsSingleton reports whether the fact type allows only one live value.
func IsSingleton(factType string) bool {
	return SingletonTypes[factType]
}

// Document is the per-user fact collection. Order records insertion order
// with the most recent insert at the tail; it is the sole basis for FIFO
// pruning. Invariant: every id in Order exists in Facts and vice versa.
type Document struct {
	Facts map[string]Fact `json:"facts"`
	Order []string        `json:"order"`
}

// NewDocument returns an empty, well-formed document.
func NewDocument() *Document {
	return &Document{Facts: map[string]Fact{}, Order: []string{}}
}

// Heal re-establishes the document invariants in place: a nil map or order
// becomes empty, order entries without a fact are dropped, facts missing
// from order are appended. A corrupted document becomes usable, never an
// error surface.
func (d *Document) Heal() {
	if d.Facts == nil {
		d.Facts = map[string]Fact{}
	}
	if d.Order == nil {
		d.Order = []string{}
	}
	kept := d.Order[:0]
	seen := make(map[string]bool, len(d.Order))
	for _, id := range d.Order {
		if _, ok := d.Facts[id]; ok && !seen[id] {
			kept = append(kept, id)
			seen[id] = true
		}
	}
	d.Order = kept
	for id := range d.Facts {
		if !seen[id] {
			d.Order = append(d.Order, id)
		}
	}
}

// remove drops a fact and its order entry. Returns whether it existed.
func (d *Document) remove(id string) bool {
	if _, ok := d.Facts[id]; !ok {
		return false
	}
	delete(d.Facts, id)
	for i, oid := range d.Order {
		if oid == id {
			d.Order = append(d.Order[:i], d.Order[i+1:]...)
			break
		}
	}
	return true
}
