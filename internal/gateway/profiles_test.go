package gateway

import (
	"testing"

	"stagelink/internal/auth"
	"stagelink/internal/control"
	"stagelink/internal/models"
)

func TestGetProfileOwnerNeedsNoRight(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "carol", "carol-pass")
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.GetProfile = func(id int, readOnly bool) models.Profile {
			return models.Profile{ID: id, PlayerName: "Carol", IsEditable: !readOnly}
		}
	})

	out := env.gateway.GetProfile(token, 5)
	if out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	profile := out.Payload.(models.Profile)
	if profile.ID != 5 || !profile.IsEditable {
		t.Fatalf("expected editable own profile, got %+v", profile)
	}
}

func TestGetProfileOtherUserSilentlyEmpty(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "carol", "carol-pass")
	var calls int
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.GetProfile = func(id int, readOnly bool) models.Profile {
			calls++
			return models.Profile{ID: id}
		}
	})

	// User 5 lacks ViewOtherProfiles: fetching profile 7 yields a default
	// profile with a success status, not a forbidden signal.
	out := env.gateway.GetProfile(token, 7)
	if out.Status != StatusOK {
		t.Fatalf("expected success status, got %+v", out)
	}
	if profile := out.Payload.(models.Profile); profile != (models.Profile{}) {
		t.Fatalf("expected default profile, got %+v", profile)
	}
	if calls != 0 {
		t.Fatalf("expected backend untouched, got %d calls", calls)
	}
}

func TestGetProfileViewRightMarksReadOnly(t *testing.T) {
	env := newTestEnv(t)
	env.rights.grant(5, auth.RightViewOtherProfiles)
	token := env.login(t, "carol", "carol-pass")
	var gotReadOnly bool
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.GetProfile = func(id int, readOnly bool) models.Profile {
			gotReadOnly = readOnly
			return models.Profile{ID: id, IsEditable: !readOnly}
		}
	})

	out := env.gateway.GetProfile(token, 7)
	if out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	if !gotReadOnly {
		t.Fatal("expected view-only access to request a read-only profile")
	}

	// With full edit authority the same fetch is editable.
	env.rights.grant(5, auth.RightViewOtherProfiles|auth.RightEditAllProfiles)
	_ = env.gateway.GetProfile(token, 7)
	if gotReadOnly {
		t.Fatal("expected edit authority to request an editable profile")
	}
}

func TestGetProfileUnconfiguredBackend(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "carol", "carol-pass")

	out := env.gateway.GetProfile(token, 5)
	if out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	if profile := out.Payload.(models.Profile); profile != (models.Profile{}) {
		t.Fatalf("expected default profile, got %+v", profile)
	}
}

func TestSendProfileOwnershipOverride(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "carol", "carol-pass")
	var saved []models.Profile
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.SendProfile = func(p models.Profile) { saved = append(saved, p) }
	})

	// Own profile: no right needed.
	if out := env.gateway.SendProfile(token, models.Profile{ID: 5, PlayerName: "Carol"}); out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	// New profile: the sentinel id bypasses the ownership check.
	if out := env.gateway.SendProfile(token, models.Profile{ID: models.NewProfileID}); out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	if len(saved) != 2 {
		t.Fatalf("expected two backend calls, got %d", len(saved))
	}

	// Someone else's profile without EditAllProfiles: silent no-op.
	out := env.gateway.SendProfile(token, models.Profile{ID: 7})
	if out.Status != StatusOK || out.Payload != nil {
		t.Fatalf("expected empty success, got %+v", out)
	}
	if len(saved) != 2 {
		t.Fatalf("expected backend untouched by denied write, got %d calls", len(saved))
	}

	env.rights.grant(5, auth.RightEditAllProfiles)
	if out := env.gateway.SendProfile(token, models.Profile{ID: 7}); out.Status != StatusOK {
		t.Fatalf("expected success with EditAllProfiles, got %+v", out)
	}
	if len(saved) != 3 {
		t.Fatalf("expected three backend calls, got %d", len(saved))
	}
}

func TestGetProfileListWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	out := env.gateway.GetProfileList()
	if out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	if profiles := out.Payload.([]models.Profile); len(profiles) != 0 {
		t.Fatalf("expected empty list for unwired backend, got %d entries", len(profiles))
	}

	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.ProfileList = func() []models.Profile {
			return []models.Profile{{ID: 1}, {ID: 2}}
		}
	})
	out = env.gateway.GetProfileList()
	if profiles := out.Payload.([]models.Profile); len(profiles) != 2 {
		t.Fatalf("expected two profiles, got %d", len(profiles))
	}
}

func TestSendPhotoRightGate(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "carol", "carol-pass")
	var calls int
	env.gateway.Port().Wire(func(h *control.Handlers) {
		h.SendPhoto = func(models.Photo) { calls++ }
	})

	// Lacking UploadPhotos: silent no-op.
	out := env.gateway.SendPhoto(token, models.Photo{})
	if out.Status != StatusOK || out.Payload != nil {
		t.Fatalf("expected empty success, got %+v", out)
	}
	if calls != 0 {
		t.Fatalf("expected backend untouched, got %d calls", calls)
	}

	env.rights.grant(5, auth.RightUploadPhotos)
	if out := env.gateway.SendPhoto(token, models.Photo{}); out.Status != StatusOK {
		t.Fatalf("expected success, got %+v", out)
	}
	if calls != 1 {
		t.Fatalf("expected one backend call, got %d", calls)
	}
}
