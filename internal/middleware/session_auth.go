package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/condopro/backend/internal/auth"
	"github.com/condopro/backend/internal/models"
)

type contextKey string

const ctxSessionKey contextKey = "session"

// SessionAuth validates the Bearer token and puts the resulting Session into
// the request context. Requests without a valid token are rejected.
func SessionAuth(authSvc auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}
			sess, err := authSvc.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// RequireAdmin rejects sessions whose role is not admin. Must run after
// SessionAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		if sess.Role != models.RoleAdmin {
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalSession attaches a Session when a valid token is present but lets
// anonymous requests through. Used for ticket submission, which accepts both.
func OptionalSession(authSvc auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := extractBearer(r); raw != "" {
				if sess, err := authSvc.ValidateToken(r.Context(), raw); err == nil {
					r = r.WithContext(WithSession(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromCtx returns the authenticated session or nil.
func SessionFromCtx(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(ctxSessionKey).(*auth.Session)
	return sess
}

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, sess)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
