// Package common contains shared constants and sentinel errors used across
// AudioVault components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer token.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix is the expected scheme prefix of the Authorization header.
	BearerPrefix = "Bearer "
)

// User roles. Exactly one account holds RoleMaster; it is seeded at
// bootstrap and cannot be deleted or reassigned.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
	RoleMaster = "master"
)

// ValidAssignableRole reports whether role may be given to a user through
// the create or update operations. RoleMaster is deliberately excluded.
func ValidAssignableRole(role string) bool {
	return role == RoleMember || role == RoleAdmin
}
