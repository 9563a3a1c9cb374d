package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/sly-barbershop/internal/session"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

type contextKey string

const (
	adminClaimsKey contextKey = "adminClaims"
	adminTokenKey  contextKey = "adminToken"
)

// TokenVerifier checks a signed admin token.
type TokenVerifier interface {
	Verify(token string) (*jwt.RegisteredClaims, error)
}

// AdminSession resolves the visitor's stored admin token and, when it
// verifies, puts the claims and the token in the request context. Requests
// without a valid token pass through unauthenticated.
func AdminSession(store session.Store, verifier TokenVerifier, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID, ok := VisitorIDFromContext(r.Context())
			if !ok || store == nil || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}
			token, err := store.Load(r.Context(), visitorID)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					logger.Warn("admin session lookup failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, *claims)
			ctx = context.WithValue(ctx, adminTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin sends requests without admin claims to loginPath.
func RequireAdmin(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := AdminClaimsFromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminClaimsFromContext returns admin JWT claims if present.
func AdminClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(jwt.RegisteredClaims)
	return claims, ok
}

// AdminTokenFromContext returns the verified admin token if present.
func AdminTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(adminTokenKey).(string)
	return token, ok
}
