// Package models defines the wire-level data structures exchanged between
// the companion UI, the gateway, and the controlled application.
package models

// NewProfileID is the sentinel profile id for a profile that has not been
// created yet.
const NewProfileID = -1

// Base64Image carries an image payload encoded as base64 alongside an
// optional identifier used for delayed retrieval.
type Base64Image struct {
	ImageID string `json:"imageId,omitempty"`
	Data    string `json:"base64Data,omitempty"`
}

// Profile describes a player profile as exposed to the companion UI.
// IsEditable is cleared when the caller's access was granted through a
// viewing right rather than full edit authority.
type Profile struct {
	ID         int         `json:"profileId"`
	PlayerName string      `json:"playerName"`
	Type       int         `json:"type"`
	Difficulty int         `json:"difficulty"`
	Avatar     Base64Image `json:"avatar"`
	IsEditable bool        `json:"isEditable"`
}

// Photo is an uploaded photo payload.
type Photo struct {
	Photo Base64Image `json:"photo"`
}

// Song describes song metadata for listings and the current-song display.
type Song struct {
	ID       int         `json:"songId"`
	Title    string      `json:"title"`
	Artist   string      `json:"artist"`
	Language string      `json:"language"`
	Year     int         `json:"year"`
	IsDuet   bool        `json:"isDuet"`
	Cover    Base64Image `json:"cover"`
}

// Playlist describes a playlist summary.
type Playlist struct {
	ID          int    `json:"playlistId"`
	Name        string `json:"playlistName"`
	LastChanged string `json:"lastChanged"`
	SongCount   int    `json:"songCount"`
}

// PlaylistSong describes one entry of a playlist.
type PlaylistSong struct {
	SongID     int    `json:"songId"`
	PlaylistID int    `json:"playlistId"`
	Position   int    `json:"playlistPosition"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
}
