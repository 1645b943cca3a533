package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/colo-planner-core/internal/panel"
)

// healthCheckTimeout bounds each dependency check of /health.
const healthCheckTimeout = 3 * time.Second

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

		r.Route("/colos", func(r chi.Router) {
			r.Get("/", s.handleListColos)

			r.Route("/{coloID}", func(r chi.Router) {
				r.Get("/", s.handleGetColo)
				r.Put("/", s.handlePutColo)
				r.Delete("/", s.handleDeleteColo)
				r.Get("/stats", s.handleColoStats)
				r.Get("/layout", s.handleColoLayout)
				r.Get("/layout.svg", s.handleColoLayoutSVG)
			})
		})

		r.Route("/datacenters", func(r chi.Router) {
			r.Get("/", s.handleListDataCenters)
			r.Put("/", s.handlePutDataCenters)

			r.Route("/{dcID}", func(r chi.Router) {
				r.Put("/racks", s.handlePutRacks)
				r.Get("/racks", s.handleListRacks)
				r.Put("/reservations", s.handlePutReservations)
				r.Get("/reservations", s.handleListReservations)
				r.Get("/reservations/{groupID}/assignments", s.handleGroupAssignments)
			})
		})

		r.Put("/skus", s.handlePutSKUs)
		r.Get("/skus", s.handleListSKUs)

		r.Route("/geometry", func(r chi.Router) {
			r.Post("/rects", s.handleGeometryRects)
			r.Post("/groups", s.handleGeometryGroups)
		})

		r.Get("/audit", s.handleListAudit)

		r.Get("/ws", s.handleWebSocket)
	})

	r.Handle("/*", panel.Handler(s.cfg.PanelDir))

	return r
}

// handleHealth reports the server version and the state of each optional
// dependency. Any failing dependency turns the status to "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := "ok"

	check := func(name string, c HealthChecker) {
		if c == nil {
			checks[name] = "disabled"
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			return
		}
		checks[name] = "ok"
	}
	check("database", s.database)
	check("mqtt", s.mqtt)
	check("influxdb", s.metrics)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"version":  s.version,
		"sessions": s.sessions.Len(),
		"checks":   checks,
	})
}
