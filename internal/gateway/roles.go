package gateway

import "stagelink/internal/auth"

// GetUserRole returns the role assigned to a profile. No session is
// required to read a role.
func (g *Gateway) GetUserRole(profileID int) Outcome {
	handler := g.port.Snapshot().UserRole
	if handler == nil {
		return notFound()
	}
	return ok(handler(profileID))
}

// SetUserRole assigns a role to a profile. It requires EditAllProfiles;
// denial is a silent no-op.
func (g *Gateway) SetUserRole(token string, profileID, role int) Outcome {
	g.touch(token)
	if !g.holdsRight(token, auth.RightEditAllProfiles) {
		return ok(nil)
	}
	handler := g.port.Snapshot().SetUserRole
	if handler == nil {
		return notFound()
	}
	handler(profileID, role)
	return ok(nil)
}

// HasUserRight reports whether the caller's session holds the numeric
// right. It answers false for unknown sessions and unknown rights and
// never reports an error.
func (g *Gateway) HasUserRight(token string, right int) Outcome {
	g.touch(token)
	if right <= 0 {
		return ok(false)
	}
	return ok(g.holdsRight(token, auth.Right(right)))
}
