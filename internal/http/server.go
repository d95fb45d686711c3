package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/files"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/storage"
	appweb "finboard/web"
)

// EventPublisher publishes transaction mutation events. A nil publisher
// disables eventing.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

type Server struct {
	http.Server
	templates *template.Template

	store   storage.Store
	auth    *auth.Service
	avatars *files.AvatarStore
	events  EventPublisher

	sessions *controllerRegistry

	detector     *security.Detector
	loginLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer wires routes, templates and middleware, returning a
// ready-to-run server.
func NewServer(addr string, store storage.Store, authSvc *auth.Service, avatars *files.AvatarStore, events EventPublisher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           nil, // set below, after the middleware chain
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:    store,
		auth:     authSvc,
		avatars:  avatars,
		events:   events,
		sessions: newControllerRegistry(store),
		detector: security.NewDetector(),
		// Credential endpoints get a tighter budget than the default.
		loginLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 15, CleanupInterval: 5 * time.Minute}),
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets from the embedded FS.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Auth pages, rate limited on POST.
	mux.Handle("/login", s.limitPOST(http.HandlerFunc(s.handleLogin)))
	mux.Handle("/register", s.limitPOST(http.HandlerFunc(s.handleRegister)))
	mux.HandleFunc("/register/check-email", s.handleCheckEmail)
	mux.HandleFunc("/logout", s.handleLogout)

	// Dashboard and profile require a session.
	mux.Handle("/", auth.RequireAuth(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("/dashboard/", auth.RequireAuth(http.HandlerFunc(s.handleDashboardAction)))
	mux.Handle("/profile", auth.RequireAuth(http.HandlerFunc(s.handleProfile)))
	mux.Handle("/avatars/", auth.RequireAuth(http.HandlerFunc(s.handleAvatar)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)

	var handler http.Handler = mux
	handler = authSvc.Middleware(handler)
	handler = s.suspicionLogger(handler)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)
	s.Server.Handler = handler

	return s
}

// suspicionLogger flags requests matching known attack patterns. They
// are logged, not blocked; the detector's heuristics are too coarse to
// reject on.
func (s *Server) suspicionLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// limitPOST applies the login limiter to POST requests only, so the
// pages themselves stay reachable.
func (s *Server) limitPOST(next http.Handler) http.Handler {
	limited := s.loginLimiter.Middleware(s.detector.ExtractClientIP, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.Stop()
		s.sessions.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes a template, logging failures. The status must be
// written here because headers are frozen once the body starts.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}

func (s *Server) publishEvent(ctx context.Context, action string, ids ...int64) {
	if s.events == nil || len(ids) == 0 {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, ids...)); err != nil {
		slog.WarnContext(ctx, "Event publish failed", "action", action, "ids", ids, "error", err)
	}
}
