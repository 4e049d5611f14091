// Package projection builds local timelines from observed entries.
// Handles ordering and deduplication for one session.
// Does not emit events or interact with UI directly.
package projection

import (
	"sync"

	"github.com/google/uuid"

	"parlor/domain"
)

// Timeline is the locally materialized, append-only log of one session.
// Order is insertion order, not timestamp order: delivery order is what
// the participant perceived, and that is the source of truth for a live
// chat. Appends with an id already present are silently dropped, which
// covers transport double-delivery and self-echo on transports that
// deliver a sender's own broadcast back.
type Timeline struct {
	mu      sync.RWMutex
	entries []domain.Entry
	seen    map[uuid.UUID]struct{}
}

func NewTimeline() *Timeline {
	return &Timeline{seen: make(map[uuid.UUID]struct{})}
}

// LoadHistory replaces the timeline wholesale with the server-declared
// sequence, preserving its order. Meant to run before live appends; a
// live entry racing the load is not preserved, it converges through the
// usual id dedup on redelivery.
func (t *Timeline) LoadHistory(entries []domain.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make([]domain.Entry, len(entries))
	copy(t.entries, entries)
	t.seen = make(map[uuid.UUID]struct{}, len(entries))
	for _, e := range entries {
		t.seen[e.ID] = struct{}{}
	}
}

// Append adds an entry to the end and reports whether it was kept.
// Appending an id that already exists is a no-op.
func (t *Timeline) Append(e domain.Entry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.seen[e.ID]; dup {
		return false
	}
	t.seen[e.ID] = struct{}{}
	t.entries = append(t.entries, e)
	return true
}

// Snapshot returns a copy of the timeline in insertion order.
func (t *Timeline) Snapshot() []domain.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
