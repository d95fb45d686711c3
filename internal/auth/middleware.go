package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"finboard/internal/core"
)

// CookieName is the session cookie.
const CookieName = "finboard_session"

type contextKey string

const userKey contextKey = "current_user"

// CurrentUser returns the logged-in user placed on the context by the
// middleware. The bool is false on unauthenticated requests.
func CurrentUser(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey).(core.User)
	return u, ok
}

// WithUser returns a context carrying the user, for handlers and tests.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// SetSessionCookie writes the session token as an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, sess core.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the session cookie to a user on every request.
// Requests without a valid session pass through unauthenticated;
// RequireAuth decides what happens then.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err == nil && cookie.Value != "" {
			if u, err := s.UserFromToken(r.Context(), cookie.Value); err == nil {
				r = r.WithContext(WithUser(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects unauthenticated requests to the login page,
// carrying the intended URL so login can send the user back.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			target := "/login"
			if r.Method == http.MethodGet && r.URL.Path != "/" {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectTarget returns the validated post-login destination: only
// same-site paths are honored, everything else falls back to the
// dashboard.
func RedirectTarget(next string) string {
	if next == "" {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || len(next) == 0 || next[0] != '/' {
		return "/"
	}
	return u.RequestURI()
}
