package http

import (
	"log/slog"
	"net/http"
	"strings"

	"finboard/internal/auth"
	"finboard/internal/core"
)

// handleLogin serves the login page and processes credential posts. A
// valid "next" query parameter is carried through the form so the user
// lands back on the page that sent them here.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := auth.CurrentUser(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, "login.html", authView{
			Next: auth.RedirectTarget(r.URL.Query().Get("next")),
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			BadRequestError("invalid form data").Write(w)
			return
		}
		form := core.LoginForm{
			Email:    sanitizeInput(r.PostFormValue("email")),
			Password: r.PostFormValue("password"),
		}
		next := auth.RedirectTarget(r.PostFormValue("next"))

		sess, fieldErrs, err := s.auth.Login(r.Context(), form)
		if err != nil {
			slog.ErrorContext(r.Context(), "Login failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !fieldErrs.Empty() {
			s.renderStatus(w, r, http.StatusUnprocessableEntity, "login.html", authView{Email: form.Email, Next: next, Errors: fieldErrs})
			return
		}

		auth.SetSessionCookie(w, sess)
		http.Redirect(w, r, next, http.StatusSeeOther)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleRegister serves the registration page and creates the account.
// A successful registration logs the new user straight in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := auth.CurrentUser(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.render(w, r, "register.html", authView{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			BadRequestError("invalid form data").Write(w)
			return
		}
		form := core.RegistrationForm{
			Name:                 sanitizeInput(r.PostFormValue("name")),
			Email:                sanitizeInput(r.PostFormValue("email")),
			Password:             r.PostFormValue("password"),
			PasswordConfirmation: r.PostFormValue("password_confirmation"),
		}

		_, fieldErrs, err := s.auth.Register(r.Context(), form)
		if err != nil {
			slog.ErrorContext(r.Context(), "Registration failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !fieldErrs.Empty() {
			s.renderStatus(w, r, http.StatusUnprocessableEntity, "register.html", authView{Name: form.Name, Email: form.Email, Errors: fieldErrs})
			return
		}

		sess, loginErrs, err := s.auth.Login(r.Context(), core.LoginForm{Email: form.Email, Password: form.Password})
		if err != nil || !loginErrs.Empty() {
			// Account exists but auto-login failed; let them sign in manually.
			slog.WarnContext(r.Context(), "Auto-login after registration failed", "error", err)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		auth.SetSessionCookie(w, sess)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleCheckEmail backs the registration form's live uniqueness check.
// It returns just the email error fragment for swapping under the field.
func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("invalid form data").Write(w)
		return
	}
	email := sanitizeInput(r.PostFormValue("email"))

	fieldErrs, err := s.auth.CheckEmailAvailable(r.Context(), email)
	if err != nil {
		slog.ErrorContext(r.Context(), "Email check failed", "error", err)
		InternalServerError("could not check email").Write(w)
		return
	}
	if rule, ok := fieldErrs["email"]; ok {
		NewHTMXResponse().BodyHTML(`<span class="field-error">` + errorMessage("email", rule) + `</span>`).Write(w)
		return
	}
	NewHTMXResponse().BodyHTML("").Write(w)
}

// handleLogout ends the session and drops the per-session dashboard
// state along with it.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			slog.WarnContext(r.Context(), "Logout failed", "error", err)
		}
		s.sessions.drop(cookie.Value)
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// sanitizeInput trims whitespace and strips control characters from
// user-provided text fields.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// RequireMethod writes a 405 and reports false when the request method
// does not match.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		MethodNotAllowedError(method).Write(w)
		return false
	}
	return true
}
