package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ewilliams-labs/segue/internal/core/services"
)

const defaultResolveTimeout = 10 * time.Second

// Handler manages the HTTP interface for the similarity engine.
type Handler struct {
	resolver       *services.Resolver
	router         chi.Router
	resolveTimeout time.Duration
}

// NewHandler initializes the HTTP adapter and sets up routes.
// resolveTimeout bounds one whole resolution call; zero selects the
// default.
func NewHandler(resolver *services.Resolver, resolveTimeout time.Duration) *Handler {
	if resolveTimeout <= 0 {
		resolveTimeout = defaultResolveTimeout
	}
	h := &Handler{
		resolver:       resolver,
		router:         chi.NewRouter(),
		resolveTimeout: resolveTimeout,
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Use(requestID)

	h.router.Get("/health", h.HealthCheck)
	h.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/tracks/{id}/similar", h.SimilarTracks)
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestID tags every request with an X-Request-ID, preserving one the
// caller already set.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
