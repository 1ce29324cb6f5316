package auth

import "errors"

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrSuperAdminRequired = errors.New("superadmin privileges required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already in use")
	ErrUnknownRole        = errors.New("unknown role")
	ErrUnknownPermission  = errors.New("unknown permission")
)
