package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/studytracker/internal/api"
	"github.com/mmynk/studytracker/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// IdentityKey is the context key for storing the authenticated identity.
const IdentityKey contextKey = "identity"

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Access denied. Token is not valid or has expired."
	msgAdminOnly    = "Forbidden. Admin privileges required."
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(auth.Identity)
	return id, ok
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) < 2 {
		return "", auth.ErrMissingToken
	}
	if !strings.EqualFold(parts[0], "Bearer") || len(parts) != 2 {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth returns a middleware that validates bearer tokens.
// A missing token is answered with 401, an invalid or expired one with 403.
// On success the caller's identity is added to the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if errors.Is(err, auth.ErrMissingToken) {
				api.WriteUnauthorized(w, msgNoToken)
				return
			}
			if err != nil {
				api.WriteForbidden(w, msgInvalidToken)
				return
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				slog.Debug("token rejected", "error", err, "path", r.URL.Path)
				api.WriteForbidden(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity())))
		})
	}
}

// RequireAdmin rejects callers whose identity does not hold the admin role.
// It must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok || !id.IsAdmin() {
			api.WriteForbidden(w, msgAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}
