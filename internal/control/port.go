// Package control defines the port between the gateway and the controlled
// application. The application wires concrete handlers at runtime; every
// handler is optional, and an unset handler is a normal state the gateway
// reports deterministically rather than an error.
package control

import (
	"sync"

	"stagelink/internal/models"
)

// ValidationError signals that the backend rejected the specific request,
// for example an unknown playlist id. Its message is surfaced verbatim to
// the caller as the forbidden reason.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation constructs a ValidationError with the provided message.
func Validation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Handlers is the capability-indexed set of backend operations. A nil
// field means the capability is not wired.
type Handlers struct {
	SendKeyEvent       func(key string)
	SendKeyStringEvent func(keyString string, shift, alt, ctrl bool)

	SendProfile func(profile models.Profile)
	GetProfile  func(profileID int, readOnly bool) models.Profile
	ProfileList func() []models.Profile
	SendPhoto   func(photo models.Photo)

	SiteFile     func(relPath string) []byte
	DelayedImage func(imageID string) models.Base64Image

	Song          func(songID int) models.Song
	CurrentSongID func() int
	AllSongs      func() []models.Song
	AudioPath     func(songID int) string

	Playlists              func() ([]models.Playlist, error)
	Playlist               func(playlistID int) (models.Playlist, error)
	PlaylistSongs          func(playlistID int) ([]models.PlaylistSong, error)
	PlaylistContainsSong   func(songID, playlistID int) (bool, error)
	AddSongToPlaylist      func(songID, playlistID int, allowDuplicates bool) error
	RemoveSongFromPlaylist func(position, playlistID, songID int) error
	MoveSongInPlaylist     func(newPosition, playlistID, songID int) error
	RemovePlaylist         func(playlistID int) error
	AddPlaylist            func(name string) (int, error)

	UserRole    func(profileID int) int
	SetUserRole func(profileID, role int)
}

// Port holds the currently wired handlers. Wiring may change at any time;
// the gateway takes a fresh Snapshot on every dispatch so unwiring applies
// to the very next request.
type Port struct {
	mu       sync.RWMutex
	handlers Handlers
}

// NewPort constructs a Port with nothing wired.
func NewPort() *Port {
	return &Port{}
}

// Wire lets the owning application mutate the handler set atomically.
func (p *Port) Wire(configure func(*Handlers)) {
	if configure == nil {
		return
	}
	p.mu.Lock()
	configure(&p.handlers)
	p.mu.Unlock()
}

// Snapshot returns a copy of the current handler set.
func (p *Port) Snapshot() Handlers {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.handlers
}
