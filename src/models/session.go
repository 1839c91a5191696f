package models

// Role represents the role of the current user.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// ParseRole maps a server-provided role string onto the known roles.
// Anything unrecognized degrades to guest.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleStudent:
		return RoleStudent
	case RoleTeacher:
		return RoleTeacher
	default:
		return RoleGuest
	}
}

// Session is the client-held record of the current authenticated identity.
// The zero value plus RoleGuest is the logged-out state.
type Session struct {
	UserID int    `json:"user_id"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"-"`
}

// Guest returns the logged-out session snapshot.
func Guest() Session {
	return Session{Role: RoleGuest}
}

// Authenticated reports whether a credential is held. Absence of the token
// is the sole signal for "logged out"; the role is decoded best-effort and
// may be guest even while a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
