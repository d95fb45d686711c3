package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"
)

func newTestService() (*Service, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	// Minimum cost keeps hashing fast in tests.
	return NewService(store, store, time.Hour, 4), store
}

func register(t *testing.T, s *Service, name, email, password string) core.User {
	t.Helper()
	u, fe, err := s.Register(context.Background(), core.RegistrationForm{
		Name: name, Email: email, Password: password, PasswordConfirmation: password,
	})
	if err != nil || !fe.Empty() {
		t.Fatalf("register %s: fe=%v err=%v", email, fe, err)
	}
	return u
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	s, store := newTestService()
	u := register(t, s, "Daniel Sanchez", "dsanchez@gmail.com", "supersecret")

	stored, err := store.GetUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.PasswordHash == "supersecret" || stored.PasswordHash == "" {
		t.Fatalf("password stored in the clear")
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newTestService()
	_, fe, err := s.Register(context.Background(), core.RegistrationForm{
		Name: "short", Email: "not-an-email", Password: "abc", PasswordConfirmation: "xyz",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if fe["name"] != core.RuleMin || fe["email"] != core.RuleEmail || fe["password"] != core.RuleMin {
		t.Fatalf("unexpected field errors: %v", fe)
	}
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	s, _ := newTestService()
	register(t, s, "Daniel Sanchez", "dsanchez@gmail.com", "supersecret")

	_, fe, err := s.Register(context.Background(), core.RegistrationForm{
		Name: "Somebody Elsewhere", Email: "dsanchez@gmail.com",
		Password: "password1", PasswordConfirmation: "password1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if fe["email"] != core.RuleUnique {
		t.Fatalf("want email: unique, got %v", fe)
	}
}

func TestCheckEmailAvailableIsEager(t *testing.T) {
	s, _ := newTestService()
	register(t, s, "Daniel Sanchez", "dsanchez@gmail.com", "supersecret")

	fe, err := s.CheckEmailAvailable(context.Background(), "dsanchez@gmail.com")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if fe["email"] != core.RuleUnique {
		t.Fatalf("taken email not reported: %v", fe)
	}

	fe, err = s.CheckEmailAvailable(context.Background(), "fresh@example.com")
	if err != nil || !fe.Empty() {
		t.Fatalf("fresh email flagged: %v %v", fe, err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	s, _ := newTestService()
	u := register(t, s, "Daniel Sanchez", "dsanchez@gmail.com", "supersecret")

	sess, fe, err := s.Login(context.Background(), core.LoginForm{
		Email: "dsanchez@gmail.com", Password: "supersecret",
	})
	if err != nil || !fe.Empty() {
		t.Fatalf("login: fe=%v err=%v", fe, err)
	}
	if sess.Token == "" || sess.UserID != u.ID {
		t.Fatalf("bad session: %+v", sess)
	}

	got, err := s.UserFromToken(context.Background(), sess.Token)
	if err != nil || got.ID != u.ID {
		t.Fatalf("user from token: %+v %v", got, err)
	}

	if err := s.Logout(context.Background(), sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := s.UserFromToken(context.Background(), sess.Token); err == nil {
		t.Fatalf("session survived logout")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	s, _ := newTestService()
	register(t, s, "Daniel Sanchez", "dsanchez@gmail.com", "supersecret")

	cases := []core.LoginForm{
		{Email: "dsanchez@gmail.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "supersecret"},
	}
	for _, form := range cases {
		_, fe, err := s.Login(context.Background(), form)
		if err != nil {
			t.Fatalf("login %s: %v", form.Email, err)
		}
		if fe["email"] != core.RuleAuth {
			t.Fatalf("login %s: want email: auth, got %v", form.Email, fe)
		}
	}
}

func TestRequireAuthRedirectsWithIntendedURL(t *testing.T) {
	s, _ := newTestService()
	handler := s.Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/profile?tab=about", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/login?next=%2Fprofile%3Ftab%3Dabout" {
		t.Fatalf("redirect %q carries no intended URL", loc)
	}
}

func TestRequireAuthPassesLoggedInUser(t *testing.T) {
	s, _ := newTestService()
	register(t, s, "Daniel Sanchez", "dsanchez@gmail.com", "supersecret")
	sess, _, err := s.Login(context.Background(), core.LoginForm{
		Email: "dsanchez@gmail.com", Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var seen core.User
	handler := s.Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if seen.Email != "dsanchez@gmail.com" {
		t.Fatalf("handler saw user %+v", seen)
	}
}

func TestRedirectTarget(t *testing.T) {
	cases := map[string]string{
		"":                          "/",
		"/profile":                  "/profile",
		"/profile?tab=about":        "/profile?tab=about",
		"https://evil.example/":     "/",
		"//evil.example/phish":      "/",
		"javascript:alert(1)":       "/",
		"relative/path":             "/",
	}
	for in, want := range cases {
		if got := RedirectTarget(in); got != want {
			t.Fatalf("RedirectTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
