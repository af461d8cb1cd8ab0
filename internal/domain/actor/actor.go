package actor

import "library-backend/internal/domain/apperr"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
)

var ErrForbidden = apperr.Forbidden("FORBIDDEN", "actor is not allowed to perform this action")

// Actor is the authenticated caller as forwarded by the gateway.
type Actor struct {
	UserID string
	Role   Role
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return true
	}
	return false
}

func (a Actor) IsStaff() bool { return a.Role == RoleAdmin || a.Role == RoleLibrarian }

// CanActFor reports whether a may act on behalf of userID (self or staff).
func (a Actor) CanActFor(userID string) bool { return a.IsStaff() || (a.UserID != "" && a.UserID == userID) }

func RequireStaff(a Actor) error {
	if !a.IsStaff() {
		return ErrForbidden
	}
	return nil
}

func RequireSelfOrStaff(a Actor, userID string) error {
	if !a.CanActFor(userID) {
		return ErrForbidden
	}
	return nil
}
