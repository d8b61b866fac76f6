// Package session provides the local session storage and the explicit
// request-scoped cookie carrier used by the identity layer.
//
// A session record is exclusively owned by one browser-session/cookie
// pairing: it is mutated only through the identity manager and destroyed on
// logout or token expiry. All cookie I/O goes through [RequestContext] so
// the identity flows can be exercised in tests without a simulated web
// server.
package session

import (
	"sync"
	"time"

	"github.com/palmora/reading-gate/models"
)

// Record is the per-browser-session state cached between requests.
type Record struct {
	// Token is the raw externally issued identity token. Opaque to this
	// service apart from the locally extracted expiry.
	Token string

	// Identity is the cached identity snapshot materialized on successful
	// verification. Nil while the session is anonymous.
	Identity *models.Identity

	// RedirectTarget is the post-login destination stashed before the user
	// is sent to the identity service. Consumed and cleared on use.
	RedirectTarget string

	// ExpiresAt invalidates the record on passive reads once passed.
	// Zero means the record does not expire on its own.
	ExpiresAt time.Time
}

// Store is the session persistence contract. Implementations must be safe
// for concurrent use; correct cookie isolation means no two requests contend
// on the same session id, but nothing enforces that at this layer.
type Store interface {
	// Get returns the record for sessionID, or false if the session is
	// unknown or has expired.
	Get(sessionID string) (Record, bool)

	// Put stores rec under sessionID, replacing any previous record.
	Put(sessionID string, rec Record)

	// Delete removes the record for sessionID. Deleting an unknown session
	// is a no-op.
	Delete(sessionID string)
}

// MemoryStore is an in-process [Store] backed by a mutex-guarded map.
// Expired records are dropped lazily on read and swept periodically by the
// janitor worker.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Get implements [Store]. An expired record counts as a miss and is removed.
func (s *MemoryStore) Get(sessionID string) (Record, bool) {
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()

	if !ok {
		return Record{}, false
	}
	if !rec.ExpiresAt.IsZero() && time.Now().After(rec.ExpiresAt) {
		s.Delete(sessionID)
		return Record{}, false
	}
	return rec, true
}

// Put implements [Store].
func (s *MemoryStore) Put(sessionID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = rec
}

// Delete implements [Store].
func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
}

// Sweep removes every record whose expiry has passed at now and returns the
// number of records removed. Housekeeping only: Get already treats expired
// records as misses.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.records {
		if !rec.ExpiresAt.IsZero() && now.After(rec.ExpiresAt) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}
