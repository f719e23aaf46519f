package auth

import (
	"sync"
	"time"
)

// MemorySessionStore keeps session state in-memory. It is safe for
// concurrent use and intended for single-instance deployments.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionRecord
}

// NewMemorySessionStore constructs an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]SessionRecord)}
}

// Save records the session for its token.
func (s *MemorySessionStore) Save(record SessionRecord) error {
	s.mu.Lock()
	s.sessions[record.Token] = record
	s.mu.Unlock()
	return nil
}

// Get retrieves the session record for the provided token.
func (s *MemorySessionStore) Get(token string) (SessionRecord, bool, error) {
	s.mu.RLock()
	record, ok := s.sessions[token]
	s.mu.RUnlock()
	return record, ok, nil
}

// Touch refreshes last activity for a live session. Records that are absent
// or already past the cutoff are left untouched, so a concurrent Delete is
// never undone.
func (s *MemorySessionStore) Touch(token string, lastActivity, cutoff time.Time) error {
	s.mu.Lock()
	if record, ok := s.sessions[token]; ok && !record.LastActivity.Before(cutoff) {
		record.LastActivity = lastActivity
		s.sessions[token] = record
	}
	s.mu.Unlock()
	return nil
}

// Delete removes the session token from the store.
func (s *MemorySessionStore) Delete(token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// PurgeIdle removes sessions whose last activity is at or before the cutoff.
func (s *MemorySessionStore) PurgeIdle(cutoff time.Time) error {
	s.mu.Lock()
	for token, record := range s.sessions {
		if record.LastActivity.Before(cutoff) {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
	return nil
}
