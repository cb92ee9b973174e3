package session

import (
	"time"
)

// Store is the in-memory session map. It is owned by the engine goroutine
// and is intentionally unsynchronized — every access, including the
// expiration sweep, happens on that single timeline. Sessions do not
// survive a process restart.
type Store struct {
	ttl      time.Duration
	sessions map[string]*Session
}

// NewStore creates an empty store. ttl is the fixed lifetime assigned to
// newly created sessions.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Get retrieves a session by ID. Absence is a normal result, not an error.
func (st *Store) Get(id string) (*Session, bool) {
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session with the given ID, creating it with
// empty defaults and a fresh expiry if it does not exist yet.
func (st *Store) GetOrCreate(id string) *Session {
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := New(id, st.ttl)
	st.sessions[id] = s
	return s
}

// Put stores the session under the given ID, overwriting any previous
// entry. Idempotent.
func (st *Store) Put(id string, s *Session) {
	st.sessions[id] = s
}

// SweepExpired removes every session whose expiry has passed and returns
// the removed IDs. Members of removed sessions are not notified; clients
// find out through their next failed operation.
func (st *Store) SweepExpired(now time.Time) []string {
	var removed []string
	for id, s := range st.sessions {
		if s.IsExpired(now) {
			delete(st.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Count returns the number of stored sessions.
func (st *Store) Count() int {
	return len(st.sessions)
}
