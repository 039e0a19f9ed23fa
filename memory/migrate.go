package memory

import (
	"context"
	"strings"
)

// MigrateLegacyList converts a legacy flat-list memory ("k=v" strings or
// bare notes) into structured facts. This is a one-time external migration
// step, not a steady-state path: the store itself only ever operates on the
// structured document model. Returns the number of migrated entries; bad
// entries are skipped, never fatal.
func (s *Store) MigrateLegacyList(ctx context.Context, userID string, entries []string) int {
	migrated := 0
	for _, item := range entries {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		factType, value := "note", item
		if k, v, ok := strings.Cut(item, "="); ok {
			factType, value = strings.TrimSpace(k), strings.TrimSpace(v)
			if factType == "" || value == "" {
				continue
			}
		}

		s.Upsert(ctx, userID, factType, value, "legacy", 0.6, 0)
		migrated++
	}
	return migrated
}
