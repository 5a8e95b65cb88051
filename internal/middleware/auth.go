package middleware

import (
	"context"
	"net/http"

	"omezka-shop-api/internal/model"
	"omezka-shop-api/pkg/apierror"
	"omezka-shop-api/pkg/response"
)

// SessionKey is the key for storing session data in request context.
const SessionKey contextKey = "session"

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "session"

// SessionValidator resolves a session token to its stored data.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.SessionData, error)
}

// AuthConfig holds configuration for the session middleware.
type AuthConfig struct {
	Sessions SessionValidator
}

// NewSessionAuth creates a middleware that resolves the session token from
// the X-Token header or the session cookie and puts the session data in
// the request context. Requests without a valid session are rejected.
func NewSessionAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Sessions == nil {
				response.Error(w, apierror.ServiceUnavailable("session store unavailable"))
				return
			}

			token := r.Header.Get("X-Token")
			if token == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					token = c.Value
				}
			}
			if token == "" {
				response.Error(w, apierror.Unauthorized("authentication required"))
				return
			}

			session, err := cfg.Sessions.Validate(r.Context(), token)
			if err != nil {
				response.Error(w, apierror.Unauthorized("invalid or expired session"))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentSession retrieves the session data from context, if any.
func CurrentSession(ctx context.Context) *model.SessionData {
	if s, ok := ctx.Value(SessionKey).(*model.SessionData); ok {
		return s
	}
	return nil
}

// WithSession returns a context carrying the given session data. Intended
// for handler tests that bypass the middleware.
func WithSession(ctx context.Context, s *model.SessionData) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// NewAdminKeyAuth creates a middleware that guards admin routes with a
// static X-Login-Key header. An empty configured key disables the routes.
func NewAdminKeyAuth(loginKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if loginKey == "" || r.Header.Get("X-Login-Key") != loginKey {
				response.Error(w, apierror.Forbidden("invalid login key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
