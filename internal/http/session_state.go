package http

import (
	"net/http"
	"sync"
	"time"

	"finboard/internal/auth"
	"finboard/internal/cache"
	"finboard/internal/dashboard"
)

// controllerRegistry keeps one dashboard controller per login session.
// Controllers hold UI state only (filters, sort, page, selection, edit
// modal), so eviction just resets the dashboard to its defaults.
type controllerRegistry struct {
	mu      sync.Mutex
	store   dashboard.Store
	cache   *cache.LRUCache[*dashboard.Controller]
	manager *cache.Manager
}

func newControllerRegistry(store dashboard.Store) *controllerRegistry {
	r := &controllerRegistry{
		store:   store,
		cache:   cache.NewLRUCache[*dashboard.Controller](1000, 2*time.Hour),
		manager: cache.NewManager(),
	}
	r.manager.Register(r.cache)
	r.manager.StartCleanup(10 * time.Minute)
	return r
}

func (r *controllerRegistry) stop() {
	r.manager.Stop()
}

func (r *controllerRegistry) get(token string) *dashboard.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cache.Get(token); ok {
		return c
	}
	c := dashboard.NewController(r.store)
	r.cache.Set(token, c)
	return c
}

func (r *controllerRegistry) drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(token)
}

// controllerFor returns the dashboard controller for the request's
// session, with the row cache reset for this interaction.
func (s *Server) controllerFor(r *http.Request) *dashboard.Controller {
	token := ""
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		token = cookie.Value
	}
	c := s.sessions.get(token)
	c.Refresh()
	return c
}
