// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/corpdesk/corpdesk/internal/models"
	"github.com/corpdesk/corpdesk/internal/token"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenParser verifies a bearer token string.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

// Auth is a middleware that enforces bearer-token authentication.
//
// It expects an "Authorization: Bearer <token>" header on every request
// except the login and registration endpoints, which must stay reachable
// for unauthenticated users. On success the token claims are stored in the
// request context for downstream handlers.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/auth/login" || r.URL.Path == "/api/auth/register" {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must be mounted after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil || claims.Role != models.RoleAdmin {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaimsFromContext extracts the authenticated session claims from the
// request context. Returns nil if not found.
func GetClaimsFromContext(ctx context.Context) *token.Claims {
	val := ctx.Value(claimsKey)
	if c, ok := val.(*token.Claims); ok {
		return c
	}
	return nil
}
