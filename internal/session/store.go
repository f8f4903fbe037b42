// Package session keeps the server-side association between opaque cookie
// tokens and signed-in user ids.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store maps opaque session tokens to user ids with a sliding TTL.
// The zero value is not usable; construct with NewStore.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry
	now      func() time.Time
}

type entry struct {
	userID   int64
	deadline time.Time
}

// NewStore creates a store whose sessions expire ttl after their last use.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

// Create issues a fresh token for the user. Callers that are re-authenticating
// an existing session must Destroy the previous token first so the token
// changes identity at every login (session-fixation defense).
func (s *Store) Create(userID int64) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = entry{userID: userID, deadline: s.now().Add(s.ttl)}
	return token
}

// Get resolves a token to its user id and extends the session deadline.
// An unknown or expired token reports ok=false; expired entries are removed.
func (s *Store) Get(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	now := s.now()
	if now.After(e.deadline) {
		delete(s.sessions, token)
		return 0, false
	}
	e.deadline = now.Add(s.ttl)
	s.sessions[token] = e
	return e.userID, true
}

// Destroy invalidates a token. Destroying an unknown token is a no-op.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Len reports the number of live (possibly expired but not yet reaped) sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
