// Package httptransport assembles the public HTTP surface. It delegates to
// feature handlers so transport concerns remain isolated from domain logic.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sayrarh/Fast/internal/platform/metrics"
	"github.com/Sayrarh/Fast/internal/platform/middleware"
	"github.com/Sayrarh/Fast/internal/registry"
	"github.com/Sayrarh/Fast/pkg/platform/httputil"
)

// HealthCheck probes one backing dependency for the readiness endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the router needs. Optional fields may be nil.
type Deps struct {
	Registry *registry.Handler
	Verifier *middleware.TokenVerifier
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Checks   []HealthCheck
}

// NewRouter wires middleware, operational endpoints, and feature routes.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	if d.Metrics != nil {
		r.Use(middleware.Latency(d.Metrics))
	}

	r.Get("/healthz", handleHealth(d.Logger, d.Checks))
	r.Handle("/metrics", promhttp.Handler())

	d.Registry.Register(r, middleware.RequireCaller(d.Verifier, d.Logger))
	return r
}

func handleHealth(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"check", c.Name,
					"error", err.Error(),
				)
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[c.Name] = err.Error()
				continue
			}
			body[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
