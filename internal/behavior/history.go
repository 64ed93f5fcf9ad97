package behavior

import (
	"sync"
	"time"
)

// windowTTL is the rolling history horizon (§4.4): events older than this,
// strictly, are evicted relative to the event being scored.
const windowTTL = 24 * time.Hour

// actorWindow holds one actor's entries under its own lock, so concurrent
// scoring of two different actors never contends.
type actorWindow struct {
	mu      sync.Mutex
	entries []Entry
}

// History is the process-wide per-actor rolling window store. Exclusive
// writer at a time per actor-id; readers during feature extraction see a
// consistent snapshot (§5).
type History struct {
	mu      sync.Mutex
	windows map[string]*actorWindow
}

// NewHistory constructs an empty History. Per spec.md's Open Question, the
// window starts empty on boot rather than rehydrating from persistence —
// see DESIGN.md for the trade-off, and Seed below (fed from
// store.EventStore.RecentByActor) for the optional rehydration path an
// operator may wire in.
func NewHistory() *History {
	return &History{windows: make(map[string]*actorWindow)}
}

func (h *History) windowFor(actorID string) *actorWindow {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.windows[actorID]
	if !ok {
		w = &actorWindow{}
		h.windows[actorID] = w
	}
	return w
}

// SnapshotAndAppend returns the actor's current window (entries strictly
// within 24h of asOf, evicting anything older) and then appends entry. The
// returned slice is a copy safe for the caller to read without holding any
// lock, satisfying §5's "exclusive writer, consistent-snapshot readers"
// requirement for a single linearized operation.
func (h *History) SnapshotAndAppend(actorID string, entry Entry, asOf time.Time) []Entry {
	w := h.windowFor(actorID)
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := asOf.Add(-windowTTL)
	kept := w.entries[:0:0]
	for _, e := range w.entries {
		if e.Event.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}

	snapshot := make([]Entry, len(kept))
	copy(snapshot, kept)

	w.entries = append(kept, entry)
	return snapshot
}

// Seed pre-populates actorID's window from persisted events, for operators
// who opt into cold-start rehydration (not called automatically — see
// spec.md's Open Question and DESIGN.md).
func (h *History) Seed(actorID string, entries []Entry) {
	w := h.windowFor(actorID)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, entries...)
}

// Len reports the number of entries currently retained for actorID
// (observability/testing only).
func (h *History) Len(actorID string) int {
	w := h.windowFor(actorID)
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
