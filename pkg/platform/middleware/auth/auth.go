// Package auth provides bearer-token authentication middleware for the
// ingest HTTP routes. The WebSocket upgrade handler does not use it; it
// validates its own token query parameter.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"vigil/pkg/requestcontext"
)

// Claims is what a validated bearer token yields.
type Claims struct {
	ActorID    string
	Username   string
	Role       string
	Department string
	JTI        string
}

// Validator verifies a bearer token string and returns its claims.
type Validator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth validates the bearer token on every request, checks revocation
// when a checker is configured, and injects actor claims into the request
// context for downstream handlers. revocationChecker may be nil (no Redis
// configured) in which case the revocation check is skipped.
func RequireAuth(validator Validator, revocationChecker RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token := bearerToken(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token", "error", err, "request_id", requestID)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if revocationChecker != nil && claims.JTI != "" {
				revoked, err := revocationChecker.IsTokenRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation", "error", err, "request_id", requestID)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token")
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked", "jti", claims.JTI, "request_id", requestID)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has been revoked")
					return
				}
			}

			ctx = requestcontext.WithActorID(ctx, claims.ActorID)
			ctx = requestcontext.WithUsername(ctx, claims.Username)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			ctx = requestcontext.WithDepartment(ctx, claims.Department)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from either the Authorization header
// ("Bearer <token>") or a "token" query parameter.
func bearerToken(r *http.Request) string {
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return after
	}
	return r.URL.Query().Get("token")
}
