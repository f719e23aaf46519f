package gateway

import (
	"testing"

	"stagelink/internal/auth"
	"stagelink/internal/control"
	"stagelink/internal/models"
)

func TestAddSongToPlaylistWithoutRightIsNoop(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "carol", "carol-pass")
	var calls int
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.AddSongToPlaylist = func(songID, playlistID int, allowDuplicates bool) error {
			calls++
			return nil
		}
	})

	out := env.gateway.AddSongToPlaylist(token, 1, 1, false)
	if out.Status != StatusOK || out.Payload != nil {
		t.Fatalf("expected empty success, got %+v", out)
	}
	if calls != 0 {
		t.Fatalf("expected no backend invocation, got %d", calls)
	}
}

func TestAddSongToPlaylistGranted(t *testing.T) {
	env := newTestEnv(t)
	env.rights.grant(5, auth.RightAddSongToPlaylist)
	token := env.login(t, "carol", "carol-pass")
	var gotSong, gotPlaylist int
	var gotDuplicates bool
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.AddSongToPlaylist = func(songID, playlistID int, allowDuplicates bool) error {
			gotSong, gotPlaylist, gotDuplicates = songID, playlistID, allowDuplicates
			return nil
		}
	})

	if out := env.gateway.AddSongToPlaylist(token, 12, 3, true); out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	if gotSong != 12 || gotPlaylist != 3 || !gotDuplicates {
		t.Fatalf("unexpected backend arguments: song=%d playlist=%d dup=%v", gotSong, gotPlaylist, gotDuplicates)
	}
}

func TestGetPlaylistValidationMessagePassthrough(t *testing.T) {
	env := newTestEnv(t)
	const message = "playlist 999 does not exist"
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.Playlist = func(playlistID int) (models.Playlist, error) {
			return models.Playlist{}, control.Validation(message)
		}
	})

	out := env.gateway.GetPlaylist(999)
	if out.Status != StatusForbidden {
		t.Fatalf("expected forbidden, got %+v", out)
	}
	if out.Reason != message {
		t.Fatalf("expected backend message %q verbatim, got %q", message, out.Reason)
	}
}

func TestPlaylistMutationsValidationPassthrough(t *testing.T) {
	env := newTestEnv(t)
	env.rights.grant(5, auth.AllRights)
	token := env.login(t, "carol", "carol-pass")
	const message = "unknown playlist"
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.AddSongToPlaylist = func(int, int, bool) error { return control.Validation(message) }
		h.RemoveSongFromPlaylist = func(int, int, int) error { return control.Validation(message) }
		h.MoveSongInPlaylist = func(int, int, int) error { return control.Validation(message) }
		h.RemovePlaylist = func(int) error { return control.Validation(message) }
		h.AddPlaylist = func(string) (int, error) { return -1, control.Validation(message) }
	})

	outcomes := []Outcome{
		env.gateway.AddSongToPlaylist(token, 1, 99, false),
		env.gateway.RemoveSongFromPlaylist(token, 0, 99, 1),
		env.gateway.MoveSongInPlaylist(token, 2, 99, 1),
		env.gateway.RemovePlaylist(token, 99),
		env.gateway.AddPlaylist(token, "party"),
	}
	for i, out := range outcomes {
		if out.Status != StatusForbidden || out.Reason != message {
			t.Fatalf("outcome %d: expected forbidden %q, got %+v", i, message, out)
		}
	}
}

func TestPlaylistReadOpsNeedNoSession(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.Playlists = func() ([]models.Playlist, error) {
			return []models.Playlist{{ID: 1, Name: "Warmup"}}, nil
		}
		h.PlaylistSongs = func(playlistID int) ([]models.PlaylistSong, error) {
			return []models.PlaylistSong{{SongID: 4, PlaylistID: playlistID}}, nil
		}
		h.PlaylistContainsSong = func(songID, playlistID int) (bool, error) {
			return songID == 4, nil
		}
	})

	if out := env.gateway.GetPlaylists(); out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	} else if playlists := out.Payload.([]models.Playlist); len(playlists) != 1 {
		t.Fatalf("expected one playlist, got %d", len(playlists))
	}

	if out := env.gateway.GetPlaylistSongs(1); out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}

	if out := env.gateway.PlaylistContainsSong(4, 1); out.Payload != true {
		t.Fatalf("expected true, got %+v", out)
	}
	if out := env.gateway.PlaylistContainsSong(5, 1); out.Payload != false {
		t.Fatalf("expected false, got %+v", out)
	}
}

func TestPlaylistOpsUnconfiguredBackend(t *testing.T) {
	env := newTestEnv(t)
	env.rights.grant(5, auth.AllRights)
	token := env.login(t, "carol", "carol-pass")

	reads := []Outcome{
		env.gateway.GetPlaylists(),
		env.gateway.GetPlaylist(1),
		env.gateway.GetPlaylistSongs(1),
		env.gateway.PlaylistContainsSong(1, 1),
		env.gateway.AddSongToPlaylist(token, 1, 1, false),
		env.gateway.RemoveSongFromPlaylist(token, 0, 1, 1),
		env.gateway.MoveSongInPlaylist(token, 1, 1, 1),
		env.gateway.RemovePlaylist(token, 1),
		env.gateway.AddPlaylist(token, "party"),
	}
	for i, out := range reads {
		if out.Status != StatusNotFound {
			t.Fatalf("outcome %d: expected not-found for unwired backend, got %+v", i, out)
		}
	}
}

func TestAddPlaylistDeniedReturnsSentinel(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "carol", "carol-pass")
	var calls int
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.AddPlaylist = func(string) (int, error) {
			calls++
			return 10, nil
		}
	})

	out := env.gateway.AddPlaylist(token, "party")
	if out.Status != StatusOK || out.Payload != -1 {
		t.Fatalf("expected sentinel -1 with success, got %+v", out)
	}
	if calls != 0 {
		t.Fatalf("expected backend untouched, got %d calls", calls)
	}

	env.rights.grant(5, auth.RightCreatePlaylists)
	if out := env.gateway.AddPlaylist(token, "party"); out.Payload != 10 {
		t.Fatalf("expected created playlist id 10, got %+v", out)
	}
}

func TestRemoveAndMoveSongRightGates(t *testing.T) {
	env := newTestEnv(t)
	env.rights.grant(5, auth.RightRemoveSongsFromPlaylists)
	token := env.login(t, "carol", "carol-pass")
	var removed, moved int
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.RemoveSongFromPlaylist = func(int, int, int) error { removed++; return nil }
		h.MoveSongInPlaylist = func(int, int, int) error { moved++; return nil }
	})

	if out := env.gateway.RemoveSongFromPlaylist(token, 0, 1, 2); out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	// ReorderPlaylists was not granted: silent no-op.
	if out := env.gateway.MoveSongInPlaylist(token, 1, 1, 2); out.Status != StatusOK {
		t.Fatalf("expected silent success, got %+v", out)
	}
	if removed != 1 || moved != 0 {
		t.Fatalf("expected removed=1 moved=0, got removed=%d moved=%d", removed, moved)
	}
}
