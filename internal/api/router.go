package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each component check in GET /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/buildings/{id}", func(r chi.Router) {
			r.Get("/chart-config", s.handleGetChartConfig)
			r.Delete("/chart-config", s.handleInvalidateChartConfig)
			r.Get("/series", s.handleGetSeries)
			r.Get("/temperature", s.handleGetTemperature)

			r.Route("/datasets", func(r chi.Router) {
				r.Get("/", s.handleListDatasets)
				r.Put("/{code}", s.handleSaveDataset)
				r.Delete("/{code}", s.handleDeleteDataset)
			})
		})

		r.Get(s.wsPath(), s.handleWebSocket)
	})

	return r
}

// handleHealth reports the server version and the state of each
// infrastructure component. Any failing component makes the response 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]string, len(s.health))
	status, code := "ok", http.StatusOK

	for name, checker := range s.health {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()

		if err != nil {
			components[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}

// wsPath is the WebSocket route under /api/v1, "/ws" unless configured.
func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}
