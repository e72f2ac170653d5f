package keygate

import "strings"

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned at signup.
	RoleUser UserRole = "USER"
	// RoleAdmin grants access to the admin routes.
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole returns the role matching the given string, ignoring case.
func ParseRole(s string) (UserRole, bool) {
	r := UserRole(strings.ToUpper(s))
	if IsValidRole(r) {
		return r, true
	}
	return "", false
}
