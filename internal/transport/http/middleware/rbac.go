package middleware

import (
	"errors"
	"net/http"

	"hrpay/internal/domain/auth"
	"hrpay/internal/transport/http/api"
)

// RequireAuth rejects requests that carry no authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Actor(r.Context()) == nil {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission allows the request through when the actor holds at least
// one of the given permissions.
func RequirePermission(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Authorize(Actor(r.Context()), perms...); err != nil {
				writeAuthError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin restricts the route to the super_admin role itself;
// holding every permission is not enough.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireSuperAdmin(Actor(r.Context())); err != nil {
			writeAuthError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := GetRequestID(r.Context())
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
	case errors.Is(err, auth.ErrSuperAdminRequired):
		api.Fail(w, http.StatusForbidden, "forbidden", "super admin access required", reqID)
	default:
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
	}
}
