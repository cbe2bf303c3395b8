package videosession

import "strings"

// Role is the platform role of a caller.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a claim value such as "TEACHER" or "admin" to a Role.
// Unknown values map to the empty role.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleTeacher:
		return RoleTeacher
	case RoleStudent:
		return RoleStudent
	case RoleAdmin:
		return RoleAdmin
	default:
		return ""
	}
}

// Caller is the verified identity behind a request. It is a value type and
// is passed explicitly into every lifecycle operation.
type Caller struct {
	ID            string
	Role          Role
	Authenticated bool
}

// Anonymous returns the caller for requests without credentials.
func Anonymous() Caller {
	return Caller{}
}

// NewCaller returns an authenticated caller.
func NewCaller(id string, role Role) Caller {
	return Caller{ID: id, Role: role, Authenticated: id != ""}
}

// IsAdmin reports whether the caller holds the administrative role.
func (c Caller) IsAdmin() bool {
	return c.Authenticated && c.Role == RoleAdmin
}

// Is reports whether the caller is the given participant.
func (c Caller) Is(participantID string) bool {
	return c.Authenticated && participantID != "" && c.ID == participantID
}
