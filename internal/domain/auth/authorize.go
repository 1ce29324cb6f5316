package auth

// Authorize passes when the actor is authenticated, active, and holds
// at least one of the acceptable permissions.
func Authorize(user *User, perms ...string) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsActive {
		return ErrUnauthenticated
	}
	if len(perms) == 0 {
		return nil
	}
	if !user.HasAnyPermission(perms...) {
		return ErrForbidden
	}
	return nil
}

// RequireSuperAdmin bypasses the permission set entirely: only exact
// role equality passes. Used for the sensitive operations (managing
// other actors, resetting credentials).
func RequireSuperAdmin(user *User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsActive || user.Role != RoleSuperAdmin {
		return ErrSuperAdminRequired
	}
	return nil
}
