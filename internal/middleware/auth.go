package middleware

import (
	"context"
	"net/http"
	"strings"

	"gamestore-api/internal/auth"

	"github.com/rs/zerolog"
)

type contextKey string

// identityKey is the request context key holding the authenticated caller.
const identityKey contextKey = "identity"

// IdentityFromContext extracts the authenticated caller from the request
// context, if one was attached by the auth middleware.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

// WithIdentity attaches a caller identity to the context. Exposed for tests.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// extractBearer pulls the token out of the Authorization header.
func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAdmin rejects requests that do not carry a valid token with the
// admin role. 401 for missing/invalid tokens, 403 for non-admin callers.
func RequireAdmin(verifier *auth.Verifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			identity, err := verifier.ParseToken(token)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Msg("invalid bearer token")
				writeAuthError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			if !identity.IsAdmin() {
				logger.Warn().
					Str("path", r.URL.Path).
					Int64("user_id", identity.UserID).
					Msg("admin privilege required")
				writeAuthError(w, http.StatusForbidden, "admin privilege required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth attaches the caller identity when a valid token is present
// and passes the request through either way.
func OptionalAuth(verifier *auth.Verifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractBearer(r); token != "" {
				if identity, err := verifier.ParseToken(token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				} else {
					logger.Debug().Str("path", r.URL.Path).Msg("ignoring invalid bearer token")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success": false, "error": "` + message + `"}`))
}
