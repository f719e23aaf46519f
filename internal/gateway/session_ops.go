package gateway

import "stagelink/internal/auth"

// Login opens a session for the provided credentials. Bad credentials
// yield an explicit forbidden outcome; success returns the opaque token
// the companion UI replays in the session header.
func (g *Gateway) Login(username, password string) Outcome {
	token, err := g.sessions.OpenSession(username, password)
	if err != nil {
		g.logger.Error("open session failed", "error", err)
		return forbidden(ReasonWrongCredentials)
	}
	if token == "" {
		return forbidden(ReasonWrongCredentials)
	}
	g.metrics.SessionOpened()
	return ok(token)
}

// Logout invalidates the caller's session. Logging out an unknown or
// already-invalid token is not an error.
func (g *Gateway) Logout(token string) Outcome {
	g.touch(token)
	g.sessions.Invalidate(token)
	g.metrics.SessionClosed()
	return ok(nil)
}

// IsServerOnline renews the session as a side effect and always succeeds.
func (g *Gateway) IsServerOnline(token string) Outcome {
	g.touch(token)
	return ok(true)
}

// GetOwnProfileID resolves the caller's own profile id, or reports
// "No session" when the token does not resolve.
func (g *Gateway) GetOwnProfileID(token string) Outcome {
	g.touch(token)
	profileID := g.sessions.ResolveUser(token)
	if profileID == auth.UnknownUser {
		return forbidden(ReasonNoSession)
	}
	return ok(profileID)
}
