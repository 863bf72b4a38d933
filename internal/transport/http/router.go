// Package httptransport wires the public HTTP surface: middleware stack,
// authenticated API routes, and the health probe.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillmint/internal/platform/middleware"
	respond "skillmint/internal/transport/http/shared/json"
)

// Registrar is implemented by the per-domain handlers.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries router-level settings.
type Config struct {
	SigningKey     []byte
	RequestTimeout time.Duration
}

// NewRouter assembles the middleware stack and mounts every handler behind
// bearer auth. Only the health probe is public; metrics are served from a
// separate listener.
func NewRouter(cfg Config, logger *slog.Logger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.SigningKey, logger))
		for _, handler := range handlers {
			handler.Register(r)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
