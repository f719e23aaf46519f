// Package auth implements session lifecycle and capability evaluation for
// the control gateway: opaque session tokens, idle expiry, and per-call
// rights checks against externally-owned role data.
package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UnknownUser is returned by ResolveUser when a token does not map to a
// live session.
const UnknownUser = -1

// DefaultIdleWindow bounds how long a session survives without activity.
const DefaultIdleWindow = time.Hour

// Authenticator verifies login credentials. A failed check is a normal
// result, not an error.
type Authenticator interface {
	Authenticate(username, credential string) (userID int, ok bool)
}

// SessionRecord is one session row as held by a SessionStore.
type SessionRecord struct {
	Token        string
	UserID       int
	LastActivity time.Time
}

// SessionStore is the persistence contract for sessions. Touch must never
// recreate a deleted record; a delete concurrent with a touch always wins
// for subsequent lookups.
type SessionStore interface {
	Save(record SessionRecord) error
	Get(token string) (SessionRecord, bool, error)
	Touch(token string, lastActivity, cutoff time.Time) error
	Delete(token string) error
	PurgeIdle(cutoff time.Time) error
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStore injects a custom SessionStore implementation.
func WithStore(store SessionStore) RegistryOption {
	return func(r *Registry) {
		r.store = store
	}
}

// WithIdleWindow sets how long a session stays live without activity.
func WithIdleWindow(window time.Duration) RegistryOption {
	return func(r *Registry) {
		if window > 0 {
			r.idleWindow = window
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTokenFactory overrides session token generation.
func WithTokenFactory(factory func() (string, error)) RegistryOption {
	return func(r *Registry) {
		if factory != nil {
			r.tokenFactory = factory
		}
	}
}

// Registry owns the live session table. All methods are safe for concurrent
// use by independent requests.
type Registry struct {
	store         SessionStore
	authenticator Authenticator
	rights        RightsPolicy
	idleWindow    time.Duration
	now           func() time.Time
	tokenFactory  func() (string, error)
}

// NewRegistry constructs a Registry with an empty in-memory table unless a
// store is supplied.
func NewRegistry(authenticator Authenticator, rights RightsPolicy, opts ...RegistryOption) *Registry {
	registry := &Registry{
		authenticator: authenticator,
		rights:        rights,
		idleWindow:    DefaultIdleWindow,
		now:           time.Now,
		tokenFactory:  generateToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(registry)
		}
	}
	if registry.store == nil {
		registry.store = NewMemorySessionStore()
	}
	return registry
}

// ErrNoAuthenticator is returned by OpenSession when credential
// verification has not been wired.
var ErrNoAuthenticator = errors.New("authenticator is not configured")

// OpenSession verifies the credentials and, on success, creates a session
// with a fresh unguessable token. Invalid credentials yield an empty token
// and a nil error.
func (r *Registry) OpenSession(username, credential string) (string, error) {
	if r.authenticator == nil {
		return "", ErrNoAuthenticator
	}
	userID, ok := r.authenticator.Authenticate(username, credential)
	if !ok {
		return "", nil
	}
	token, err := r.tokenFactory()
	if err != nil {
		return "", err
	}
	record := SessionRecord{Token: token, UserID: userID, LastActivity: r.now()}
	if err := r.store.Save(record); err != nil {
		return "", err
	}
	return token, nil
}

// Touch refreshes the session's last activity. It is a no-op for the empty
// token, unknown tokens, and sessions already past the idle window.
func (r *Registry) Touch(token string) {
	if token == "" {
		return
	}
	now := r.now()
	_ = r.store.Touch(token, now, now.Add(-r.idleWindow))
}

// ResolveUser maps a token to its user id, or UnknownUser for the empty
// token, unknown tokens, and idle-expired sessions. Expired entries are
// evicted lazily.
func (r *Registry) ResolveUser(token string) int {
	if token == "" {
		return UnknownUser
	}
	record, ok, err := r.store.Get(token)
	if err != nil || !ok {
		return UnknownUser
	}
	if record.LastActivity.Before(r.now().Add(-r.idleWindow)) {
		_ = r.store.Delete(token)
		return UnknownUser
	}
	return record.UserID
}

// Invalidate removes the session if present. Invalidating an unknown or
// already-removed token is not an error.
func (r *Registry) Invalidate(token string) {
	if token == "" {
		return
	}
	_ = r.store.Delete(token)
}

// RequestRight resolves the session's user and asks the rights policy.
// Any unresolved session yields false.
func (r *Registry) RequestRight(token string, right Right) bool {
	userID := r.ResolveUser(token)
	if userID == UnknownUser || r.rights == nil {
		return false
	}
	return r.rights.HasRight(userID, right)
}

// PurgeIdle removes sessions past the idle window from the backing store.
func (r *Registry) PurgeIdle() error {
	return r.store.PurgeIdle(r.now().Add(-r.idleWindow))
}

func generateToken() (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return token.String(), nil
}
