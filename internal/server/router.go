package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"stagelink/internal/gateway"
	"stagelink/internal/models"
)

// sessionHeader carries the opaque token issued by login. The companion
// client replays it verbatim on every call.
const sessionHeader = "session"

type router struct {
	gateway *gateway.Gateway
}

// sessionToken extracts the session token. Anything that does not parse
// as a token is treated as absent rather than rejected, so malformed
// headers degrade to the no-session behavior of each operation.
func sessionToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get(sessionHeader))
	if raw == "" {
		return ""
	}
	if _, err := uuid.Parse(raw); err != nil {
		return ""
	}
	return raw
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, fmt.Sprintf("method %s not allowed", r.Method), http.StatusMethodNotAllowed)
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid %s parameter", name), http.StatusBadRequest)
		return 0, false
	}
	return value, true
}

func (rt *router) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (rt *router) login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.Login(req.Username, req.Password))
}

func (rt *router) logout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.Logout(sessionToken(r)))
}

func (rt *router) isServerOnline(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.IsServerOnline(sessionToken(r)))
}

func (rt *router) getOwnProfileID(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetOwnProfileID(sessionToken(r)))
}

func (rt *router) sendKeyEvent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Key string `json:"key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.SendKeyEvent(sessionToken(r), req.Key))
}

func (rt *router) sendKeyStringEvent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		KeyString string `json:"keyString"`
		Shift     bool   `json:"shift"`
		Alt       bool   `json:"alt"`
		Ctrl      bool   `json:"ctrl"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.SendKeyStringEvent(sessionToken(r), req.KeyString, req.Shift, req.Alt, req.Ctrl))
}

func (rt *router) getProfile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	profileID, ok := intQuery(w, r, "profileId")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetProfile(sessionToken(r), profileID))
}

func (rt *router) sendProfile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	profile := models.Profile{ID: models.NewProfileID}
	if !decodeJSON(w, r, &profile) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.SendProfile(sessionToken(r), profile))
}

func (rt *router) getProfileList(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetProfileList())
}

func (rt *router) sendPhoto(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var photo models.Photo
	if !decodeJSON(w, r, &photo) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.SendPhoto(sessionToken(r), photo))
}

func (rt *router) getSong(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	songID, ok := intQuery(w, r, "songId")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetSong(songID))
}

func (rt *router) getCurrentSongID(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetCurrentSongID())
}

func (rt *router) getAllSongs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetAllSongs())
}

func (rt *router) getAudioFile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	songID, ok := intQuery(w, r, "songId")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetAudioFile(songID))
}

func (rt *router) getPlaylists(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetPlaylists())
}

func (rt *router) getPlaylist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	playlistID, ok := intQuery(w, r, "playlistId")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetPlaylist(playlistID))
}

func (rt *router) getPlaylistSongs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	playlistID, ok := intQuery(w, r, "playlistId")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetPlaylistSongs(playlistID))
}

func (rt *router) playlistContainsSong(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	songID, ok := intQuery(w, r, "songId")
	if !ok {
		return
	}
	playlistID, ok := intQuery(w, r, "playlistId")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.PlaylistContainsSong(songID, playlistID))
}

func (rt *router) addSongToPlaylist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		SongID          int  `json:"songId"`
		PlaylistID      int  `json:"playlistId"`
		AllowDuplicates bool `json:"allowDuplicates"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.AddSongToPlaylist(sessionToken(r), req.SongID, req.PlaylistID, req.AllowDuplicates))
}

func (rt *router) removeSongFromPlaylist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Position   int `json:"position"`
		PlaylistID int `json:"playlistId"`
		SongID     int `json:"songId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.RemoveSongFromPlaylist(sessionToken(r), req.Position, req.PlaylistID, req.SongID))
}

func (rt *router) moveSongInPlaylist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		NewPosition int `json:"newPosition"`
		PlaylistID  int `json:"playlistId"`
		SongID      int `json:"songId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.MoveSongInPlaylist(sessionToken(r), req.NewPosition, req.PlaylistID, req.SongID))
}

func (rt *router) removePlaylist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		PlaylistID int `json:"playlistId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.RemovePlaylist(sessionToken(r), req.PlaylistID))
}

func (rt *router) addPlaylist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		PlaylistName string `json:"playlistName"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.AddPlaylist(sessionToken(r), req.PlaylistName))
}

func (rt *router) getUserRole(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	profileID, ok := intQuery(w, r, "profileId")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetUserRole(profileID))
}

func (rt *router) setUserRole(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		ProfileID int `json:"profileId"`
		UserRole  int `json:"userRole"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.SetUserRole(sessionToken(r), req.ProfileID, req.UserRole))
}

func (rt *router) hasUserRight(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	right, ok := intQuery(w, r, "right")
	if !ok {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.HasUserRight(sessionToken(r), right))
}

func (rt *router) delayedImage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	gateway.WriteOutcome(w, rt.gateway.GetDelayedImage(r.URL.Query().Get("id")))
}

func (rt *router) index(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	gateway.WriteOutcome(w, rt.gateway.Index())
}

func (rt *router) jsFile(w http.ResponseWriter, r *http.Request) {
	rt.staticFile(w, r, "/js/", rt.gateway.GetJsFile)
}

func (rt *router) cssFile(w http.ResponseWriter, r *http.Request) {
	rt.staticFile(w, r, "/css/", rt.gateway.GetCssFile)
}

func (rt *router) cssImageFile(w http.ResponseWriter, r *http.Request) {
	rt.staticFile(w, r, "/css/images/", rt.gateway.GetCssImageFile)
}

func (rt *router) imgFile(w http.ResponseWriter, r *http.Request) {
	rt.staticFile(w, r, "/img/", rt.gateway.GetImgFile)
}

func (rt *router) localeFile(w http.ResponseWriter, r *http.Request) {
	rt.staticFile(w, r, "/locales/", rt.gateway.GetLocaleFile)
}

func (rt *router) staticFile(w http.ResponseWriter, r *http.Request, prefix string, op func(string) gateway.Outcome) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	name := strings.TrimPrefix(r.URL.Path, prefix)
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	gateway.WriteOutcome(w, op(name))
}
