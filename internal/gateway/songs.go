package gateway

import (
	"os"
	"path/filepath"

	"stagelink/internal/models"
)

// audioContentTypes is the extension whitelist for audio files. Anything
// outside it is reported as not-found, indistinguishable from a missing
// file.
var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// GetSong returns metadata for one song, or a default value when the
// backend is not wired.
func (g *Gateway) GetSong(songID int) Outcome {
	handler := g.port.Snapshot().Song
	if handler == nil {
		return ok(models.Song{})
	}
	return ok(handler(songID))
}

// GetCurrentSongID returns the id of the song currently playing, or -1
// when the backend is not wired.
func (g *Gateway) GetCurrentSongID() Outcome {
	handler := g.port.Snapshot().CurrentSongID
	if handler == nil {
		return ok(-1)
	}
	return ok(handler())
}

// GetAllSongs lists all songs, or an empty list when the backend is not
// wired.
func (g *Gateway) GetAllSongs() Outcome {
	handler := g.port.Snapshot().AllSongs
	if handler == nil {
		return ok([]models.Song{})
	}
	songs := handler()
	if songs == nil {
		songs = []models.Song{}
	}
	return ok(songs)
}

// GetAudioFile serves a song's audio file. The backend supplies the file
// name, which is sanitized and resolved under the fixed media directory;
// the extension whitelist then decides the content type. Wrong extension
// and missing file yield the same not-found, giving no hint which applied.
func (g *Gateway) GetAudioFile(songID int) Outcome {
	handler := g.port.Snapshot().AudioPath
	if handler == nil {
		return notFound()
	}
	name := handler(songID)
	if name == "" {
		return notFound()
	}
	resolved := g.resolveAudioPath(name)
	contentType, allowed := audioContentTypes[filepath.Ext(resolved)]
	if !allowed {
		return notFound()
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return notFound()
	}
	return okAsset(contentType, longAssetMaxAge, data)
}

// resolveAudioPath sanitizes the backend-supplied name and joins it with
// the media base directory.
func (g *Gateway) resolveAudioPath(name string) string {
	return filepath.Join(g.mediaDir, filepath.FromSlash(sanitizeName(name)))
}
