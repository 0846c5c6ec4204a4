package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

// CookieName is the session cookie set on login and register.
const CookieName = "session"

type contextKey int

const userContextKey contextKey = 0

// UserFromContext returns the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey).(*user.User)
	return u, ok
}

// ContextWithUser stores an authenticated user on the context.
func ContextWithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// Middleware resolves session cookies to users and guards routes.
type Middleware struct {
	sessions Service
	users    user.Service
}

func NewMiddleware(sessions Service, users user.Service) *Middleware {
	return &Middleware{sessions: sessions, users: users}
}

// Authenticate requires a valid session cookie and stores the user in the
// request context. Missing or expired sessions get 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			respondUnauthorized(w)
			return
		}

		session, err := m.sessions.GetSession(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				log.Error().Err(err).Msg("middleware: failed to resolve session")
			}
			respondUnauthorized(w)
			return
		}

		u, err := m.users.GetByID(r.Context(), session.UserID)
		if err != nil {
			log.Error().Err(err).Stringer("user_id", session.UserID).Msg("middleware: failed to load session user")
			respondUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), u)))
	})
}

// RequireAdmin must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			respondUnauthorized(w)
			return
		}

		if !u.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"admin access required"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication required"}`))
}
