package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alfagnish/users-gateway/internal/config"
	"github.com/alfagnish/users-gateway/internal/events"
	"github.com/alfagnish/users-gateway/internal/handlers"
	mw "github.com/alfagnish/users-gateway/internal/middleware"
	"github.com/alfagnish/users-gateway/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a fully-configured chi router with all route groups,
// middleware, and handlers wired together.
func New(cfg *config.Config, store users.Store, hub *events.Hub) http.Handler {
	r := chi.NewRouter()

	// ── Middleware ───────────────────────────────────────────
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", mw.HeaderRequestID},
		ExposedHeaders: []string{mw.HeaderRequestID},
		MaxAge:         300,
	}))
	r.Use(mw.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// ── Handlers ────────────────────────────────────────────
	systemH := handlers.NewSystemHandler(store, cfg.StoreBackend, hub)
	usersH := handlers.NewUsersHandler(store, hub)
	eventsH := handlers.NewEventsHandler(hub)

	// ── Route groups ────────────────────────────────────────
	r.Route("/api/system", systemH.Routes)
	r.Route("/api/users", usersH.Routes)
	r.Route("/api/events", eventsH.Routes)

	return r
}

// requestLogger is a simple middleware that logs each HTTP request with
// method, path, status code, duration, and request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		if strings.HasPrefix(r.URL.Path, "/api/") {
			status := ww.Status()
			if status == 0 {
				status = 200
			}
			log.Printf("%s %s %d %s [%s]",
				r.Method,
				r.URL.Path,
				status,
				time.Since(start).Round(time.Millisecond),
				mw.RequestIDFromContext(r.Context()),
			)
		}
	})
}
