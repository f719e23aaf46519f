package auth

// Right is a named capability checked against a session's resolved user.
// Rights compose as a bitmask so a role can grant several at once.
type Right uint32

const (
	RightEditAllProfiles Right = 1 << iota
	RightUploadPhotos
	RightViewOtherProfiles
	RightUseKeyboard
	RightAddSongToPlaylist
	RightRemoveSongsFromPlaylists
	RightReorderPlaylists
	RightDeletePlaylists
	RightCreatePlaylists
)

// AllRights is the union of every defined capability.
const AllRights = RightEditAllProfiles | RightUploadPhotos | RightViewOtherProfiles |
	RightUseKeyboard | RightAddSongToPlaylist | RightRemoveSongsFromPlaylists |
	RightReorderPlaylists | RightDeletePlaylists | RightCreatePlaylists

func (r Right) String() string {
	switch r {
	case RightEditAllProfiles:
		return "EditAllProfiles"
	case RightUploadPhotos:
		return "UploadPhotos"
	case RightViewOtherProfiles:
		return "ViewOtherProfiles"
	case RightUseKeyboard:
		return "UseKeyboard"
	case RightAddSongToPlaylist:
		return "AddSongToPlaylist"
	case RightRemoveSongsFromPlaylists:
		return "RemoveSongsFromPlaylists"
	case RightReorderPlaylists:
		return "ReorderPlaylists"
	case RightDeletePlaylists:
		return "DeletePlaylists"
	case RightCreatePlaylists:
		return "CreatePlaylists"
	default:
		return "Unknown"
	}
}

// Role is the coarse account class stored in the user directory. Rights are
// derived from the role on every check so role changes apply immediately.
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

// Rights returns the capability set granted by the role.
func (r Role) Rights() Right {
	switch r {
	case RoleUser:
		return RightUseKeyboard | RightUploadPhotos | RightAddSongToPlaylist
	case RoleAdmin:
		return AllRights
	default:
		return 0
	}
}

// RightsPolicy reports whether a user holds a capability. Implementations
// must be side-effect free; the gateway re-evaluates on every call.
type RightsPolicy interface {
	HasRight(userID int, right Right) bool
}

// RoleSource resolves a user's current role from externally-owned data.
type RoleSource interface {
	Role(userID int) (Role, bool)
}

// RolePolicy derives rights from a user's role at call time.
type RolePolicy struct {
	Source RoleSource
}

// HasRight reports whether the user's role grants every bit of right.
func (p RolePolicy) HasRight(userID int, right Right) bool {
	if p.Source == nil || right == 0 {
		return false
	}
	role, ok := p.Source.Role(userID)
	if !ok {
		return false
	}
	return role.Rights()&right == right
}
