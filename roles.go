package authclient

// RoleChecker is implemented by anything that can answer role questions
// about the current user.
type RoleChecker interface {
	// HasRole checks if the user has a specific role
	HasRole(role string) bool

	// IsAdmin checks if the user has the admin role
	IsAdmin() bool
}

var _ RoleChecker = Session{}
var _ RoleChecker = &Store{}
