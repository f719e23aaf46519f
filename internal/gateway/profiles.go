package gateway

import (
	"stagelink/internal/auth"
	"stagelink/internal/models"
)

// GetProfile returns the requested profile. Callers reading their own
// profile need no right; reading another user's profile requires
// ViewOtherProfiles, and when the caller additionally lacks
// EditAllProfiles the returned profile is marked read-only. Denial is
// silent: the caller receives a default profile with a success status.
func (g *Gateway) GetProfile(token string, profileID int) Outcome {
	g.touch(token)
	owner := g.sessions.ResolveUser(token) == profileID
	if !owner && !g.holdsRight(token, auth.RightViewOtherProfiles) {
		return ok(models.Profile{})
	}
	handler := g.port.Snapshot().GetProfile
	if handler == nil {
		return ok(models.Profile{})
	}
	readOnly := !owner && !g.holdsRight(token, auth.RightEditAllProfiles)
	return ok(handler(profileID, readOnly))
}

// SendProfile stores profile data. A caller may always write their own
// profile (or create a new one); writing someone else's requires
// EditAllProfiles, and denial is a silent no-op.
func (g *Gateway) SendProfile(token string, profile models.Profile) Outcome {
	g.touch(token)
	if profile.ID != models.NewProfileID {
		owner := g.sessions.ResolveUser(token) == profile.ID
		if !owner && !g.holdsRight(token, auth.RightEditAllProfiles) {
			return ok(nil)
		}
	}
	handler := g.port.Snapshot().SendProfile
	if handler == nil {
		return notFound()
	}
	handler(profile)
	return ok(nil)
}

// GetProfileList lists all profiles. No session is required; an unwired
// backend yields an empty list.
func (g *Gateway) GetProfileList() Outcome {
	handler := g.port.Snapshot().ProfileList
	if handler == nil {
		return ok([]models.Profile{})
	}
	profiles := handler()
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return ok(profiles)
}

// SendPhoto uploads a photo. Denial without UploadPhotos is a silent
// no-op; an unwired photo sink reports not-found.
func (g *Gateway) SendPhoto(token string, photo models.Photo) Outcome {
	g.touch(token)
	if !g.holdsRight(token, auth.RightUploadPhotos) {
		return ok(nil)
	}
	handler := g.port.Snapshot().SendPhoto
	if handler == nil {
		return notFound()
	}
	handler(photo)
	return ok(nil)
}
