// File: internal/listing/store.go
package listing

import (
	"sync"
	"time"
)

// SourceState says where the current snapshot in the store came from.
type SourceState string

const (
	// SourceUnloaded means no data has arrived yet.
	SourceUnloaded SourceState = "unloaded"
	// SourceLive means the snapshot comes from the live subscription.
	SourceLive SourceState = "live"
	// SourcePolling means the live stream failed and the snapshot comes
	// from periodic per-owner polling.
	SourcePolling SourceState = "polling"
	// SourceLocal means every remote path failed and the snapshot is the
	// last locally persisted one.
	SourceLocal SourceState = "local"
	// SourceEmpty means the remote answered and there are genuinely no
	// listings. Distinct from Unloaded so the API can say so explicitly.
	SourceEmpty SourceState = "empty"
)

// Store holds the in-memory listing snapshot the engine reads from.
// The mirror is the single writer; reads take a copy so callers can
// sort and slice freely.
type Store struct {
	mu        sync.RWMutex
	items     []Listing
	state     SourceState
	updatedAt time.Time
}

func NewStore() *Store {
	return &Store{state: SourceUnloaded}
}

// Replace swaps in a full snapshot. An empty slice from a remote source
// records the explicit empty state.
func (s *Store) Replace(items []Listing, state SourceState) {
	if len(items) == 0 && (state == SourceLive || state == SourcePolling) {
		state = SourceEmpty
	}
	copied := make([]Listing, len(items))
	copy(copied, items)

	s.mu.Lock()
	s.items = copied
	s.state = state
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Snapshot returns a copy of the current listings.
func (s *Store) Snapshot() []Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Listing, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the listing with the given ID from the current snapshot.
func (s *Store) Get(id string) (Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].ID == id {
			return s.items[i], true
		}
	}
	return Listing{}, false
}

// Mutate applies fn to the stored listing with the given ID, if present.
// Used to reflect confirmed remote writes without waiting for the next
// snapshot (polling and local modes get no push updates).
func (s *Store) Mutate(id string, fn func(*Listing)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			fn(&s.items[i])
			return true
		}
	}
	return false
}

// State reports the provenance of the current snapshot and when it was
// last replaced.
func (s *Store) State() (SourceState, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.updatedAt
}

// Len returns the snapshot size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
