package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// VisitorCookie names the cookie carrying the per-browser id.
const VisitorCookie = "sly_visitor"

const visitorIDKey contextKey = "visitorID"

// Visitor makes sure every request carries a visitor id, issuing a fresh
// random one in a cookie when the browser has none.
func Visitor(maxAge time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(VisitorCookie); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id)))
		})
	}
}

// WithVisitorID stores id on ctx.
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorIDKey, id)
}

// VisitorIDFromContext returns the visitor id set by Visitor.
func VisitorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorIDKey).(string)
	return id, ok && id != ""
}
