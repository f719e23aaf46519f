// Package directory stores the gateway's user accounts: login credentials
// and the role each account holds. It backs both credential verification at
// login and role lookups for rights evaluation.
package directory

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"stagelink/internal/auth"
)

// ErrInvalidCredentials is returned when a password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUsernameTaken is returned when creating an account whose normalized
// username already exists.
var ErrUsernameTaken = errors.New("username already taken")

// ErrUserNotFound is returned for operations on unknown user ids.
var ErrUserNotFound = errors.New("user not found")

// User is one directory account.
type User struct {
	ID           int
	Username     string
	PasswordHash string
	Role         auth.Role
}

// Directory is the account storage contract. Implementations must be safe
// for concurrent use.
type Directory interface {
	// Authenticate verifies credentials; a mismatch is a normal false result.
	Authenticate(username, credential string) (int, bool)
	// Role resolves the user's current role.
	Role(userID int) (auth.Role, bool)
	// SetRole replaces the user's role.
	SetRole(userID int, role auth.Role) error
	// Create registers a new account with a hashed password.
	Create(username, password string, role auth.Role) (User, error)
	// Empty reports whether the directory holds no accounts.
	Empty() bool
}

var usernameFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeUsername lowercases, trims, and strips combining marks so that
// visually equivalent usernames collide instead of coexisting.
func normalizeUsername(username string) string {
	trimmed := strings.ToLower(strings.TrimSpace(username))
	folded, _, err := transform.String(usernameFolder, trimmed)
	if err != nil {
		return trimmed
	}
	return folded
}

// Memory is an in-memory Directory for development and tests.
type Memory struct {
	mu     sync.RWMutex
	byID   map[int]User
	byName map[string]int
	nextID int
}

// NewMemory constructs an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{byID: make(map[int]User), byName: make(map[string]int), nextID: 1}
}

// Create registers a new account.
func (m *Memory) Create(username, password string, role auth.Role) (User, error) {
	normalized := normalizeUsername(username)
	if normalized == "" {
		return User{}, errors.New("username is required")
	}
	if password == "" {
		return User{}, errors.New("password is required")
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byName[normalized]; exists {
		return User{}, ErrUsernameTaken
	}
	user := User{ID: m.nextID, Username: normalized, PasswordHash: hashed, Role: role}
	m.nextID++
	m.byID[user.ID] = user
	m.byName[normalized] = user.ID
	return user, nil
}

// Authenticate verifies the credentials against the stored hash.
func (m *Memory) Authenticate(username, credential string) (int, bool) {
	if credential == "" {
		return auth.UnknownUser, false
	}
	m.mu.RLock()
	id, ok := m.byName[normalizeUsername(username)]
	var user User
	if ok {
		user = m.byID[id]
	}
	m.mu.RUnlock()
	if !ok {
		return auth.UnknownUser, false
	}
	if err := verifyPassword(user.PasswordHash, credential); err != nil {
		return auth.UnknownUser, false
	}
	return user.ID, true
}

// Role resolves the user's current role.
func (m *Memory) Role(userID int) (auth.Role, bool) {
	m.mu.RLock()
	user, ok := m.byID[userID]
	m.mu.RUnlock()
	return user.Role, ok
}

// SetRole replaces the user's role.
func (m *Memory) SetRole(userID int, role auth.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Role = role
	m.byID[userID] = user
	return nil
}

// Empty reports whether the directory holds no accounts.
func (m *Memory) Empty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID) == 0
}
