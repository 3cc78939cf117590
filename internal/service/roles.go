package service

import "bookvault/internal/model"

// ResolveRole computes the effective role for a login. The configured
// administrator address always yields the admin role; any other email keeps
// the role stored on the record. Client-supplied roles are never consulted.
func ResolveRole(email, storedRole, adminEmail string) string {
	if adminEmail != "" && email == adminEmail {
		return model.RoleAdmin
	}
	return storedRole
}
