// Package api wires the HTTP surface: the migration endpoint plus health
// and metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"template-migrator/internal/migration"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is anything with a health-checkable backing connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds shared state for all API handlers.
type Server struct {
	Migration *migration.Handler

	// Backends checked by the readiness probe; nil entries are skipped.
	Redis    Pinger
	Postgres Pinger
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(s *Server, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/migrations/hubspot-to-sfmc", s.Migration.Migrate)
	})

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready reports whether the optional backends are reachable. The service
// itself can run without either, so only configured ones are probed.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	for name, pinger := range map[string]Pinger{
		"redis":    s.Redis,
		"postgres": s.Postgres,
	} {
		if pinger == nil {
			continue
		}
		if err := pinger.Ping(r.Context()); err != nil {
			checks[name] = "unreachable"
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	writeStatus(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}

func writeStatus(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
