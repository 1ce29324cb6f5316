package middleware

import (
	"context"
	"net/http"
	"strings"

	"hrpay/internal/domain/auth"
	"hrpay/internal/transport/http/api"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

// ActorLoader fetches the authenticated user so that permission checks
// always run against the current database state rather than token claims.
type ActorLoader interface {
	FindByID(ctx context.Context, id string) (auth.User, error)
}

// Authenticate parses the bearer token and attaches the resolved user to the
// request context. Requests without a token pass through unauthenticated;
// RequireAuth decides whether that is acceptable for the route.
func Authenticate(secret string, loader ActorLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid authorization header", GetRequestID(r.Context()))
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", GetRequestID(r.Context()))
				return
			}

			user, err := loader.FindByID(r.Context(), claims.UserID)
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", GetRequestID(r.Context()))
				return
			}
			if !user.IsActive {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "account is deactivated", GetRequestID(r.Context()))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyActor, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Actor returns the authenticated user from the context, or nil.
func Actor(ctx context.Context) *auth.User {
	user, _ := ctx.Value(ctxKeyActor).(*auth.User)
	return user
}
