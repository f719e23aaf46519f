package gateway

import (
	"stagelink/internal/auth"
	"stagelink/internal/models"
)

// GetPlaylists lists playlist summaries. No session is required.
func (g *Gateway) GetPlaylists() Outcome {
	handler := g.port.Snapshot().Playlists
	if handler == nil {
		return notFound()
	}
	playlists, err := handler()
	if err != nil {
		return g.backendOutcome(err, Outcome{})
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return ok(playlists)
}

// GetPlaylist returns one playlist. A backend validation failure (for
// example an unknown id) surfaces as forbidden with the backend's message.
func (g *Gateway) GetPlaylist(playlistID int) Outcome {
	handler := g.port.Snapshot().Playlist
	if handler == nil {
		return notFound()
	}
	playlist, err := handler(playlistID)
	return g.backendOutcome(err, ok(playlist))
}

// GetPlaylistSongs lists the entries of one playlist.
func (g *Gateway) GetPlaylistSongs(playlistID int) Outcome {
	handler := g.port.Snapshot().PlaylistSongs
	if handler == nil {
		return notFound()
	}
	songs, err := handler(playlistID)
	if err != nil {
		return g.backendOutcome(err, Outcome{})
	}
	if songs == nil {
		songs = []models.PlaylistSong{}
	}
	return ok(songs)
}

// PlaylistContainsSong reports whether the playlist holds the song.
func (g *Gateway) PlaylistContainsSong(songID, playlistID int) Outcome {
	handler := g.port.Snapshot().PlaylistContainsSong
	if handler == nil {
		return notFound()
	}
	contains, err := handler(songID, playlistID)
	return g.backendOutcome(err, ok(contains))
}

// AddSongToPlaylist appends a song. Lacking the right is a silent no-op;
// a backend validation failure is forbidden with the backend's message.
func (g *Gateway) AddSongToPlaylist(token string, songID, playlistID int, allowDuplicates bool) Outcome {
	g.touch(token)
	if !g.holdsRight(token, auth.RightAddSongToPlaylist) {
		return ok(nil)
	}
	handler := g.port.Snapshot().AddSongToPlaylist
	if handler == nil {
		return notFound()
	}
	return g.backendOutcome(handler(songID, playlistID, allowDuplicates), ok(nil))
}

// RemoveSongFromPlaylist removes the song at a position. Lacking the
// right is a silent no-op.
func (g *Gateway) RemoveSongFromPlaylist(token string, position, playlistID, songID int) Outcome {
	g.touch(token)
	if !g.holdsRight(token, auth.RightRemoveSongsFromPlaylists) {
		return ok(nil)
	}
	handler := g.port.Snapshot().RemoveSongFromPlaylist
	if handler == nil {
		return notFound()
	}
	return g.backendOutcome(handler(position, playlistID, songID), ok(nil))
}

// MoveSongInPlaylist reorders a song. Lacking the right is a silent no-op.
func (g *Gateway) MoveSongInPlaylist(token string, newPosition, playlistID, songID int) Outcome {
	g.touch(token)
	if !g.holdsRight(token, auth.RightReorderPlaylists) {
		return ok(nil)
	}
	handler := g.port.Snapshot().MoveSongInPlaylist
	if handler == nil {
		return notFound()
	}
	return g.backendOutcome(handler(newPosition, playlistID, songID), ok(nil))
}

// RemovePlaylist deletes a playlist. Lacking the right is a silent no-op.
func (g *Gateway) RemovePlaylist(token string, playlistID int) Outcome {
	g.touch(token)
	if !g.holdsRight(token, auth.RightDeletePlaylists) {
		return ok(nil)
	}
	handler := g.port.Snapshot().RemovePlaylist
	if handler == nil {
		return notFound()
	}
	return g.backendOutcome(handler(playlistID), ok(nil))
}

// AddPlaylist creates a playlist and returns its id. Lacking the right
// returns -1 with a success status.
func (g *Gateway) AddPlaylist(token, name string) Outcome {
	g.touch(token)
	if !g.holdsRight(token, auth.RightCreatePlaylists) {
		return ok(-1)
	}
	handler := g.port.Snapshot().AddPlaylist
	if handler == nil {
		return notFound()
	}
	playlistID, err := handler(name)
	return g.backendOutcome(err, ok(playlistID))
}
