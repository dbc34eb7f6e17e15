// Package core provides the API chassis for the slopecast read API. It
// creates a chi router and enforces cross-cutting concerns -- panic
// recovery, request correlation, logging, metrics, and error handling --
// before requests reach domain handlers.
package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slopecast/internal/config"
	"slopecast/internal/observability"
)

// Server encapsulates the router and its cross-cutting dependencies,
// allowing easy injection during testing.
type Server struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// HealthProbes are checked by GET /healthz.
	HealthProbes []HealthProbe

	// V1RouteRegistrars are populated by the application entry point. This
	// indirection avoids import cycles between core and handler packages.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer initializes the server chassis. The caller mounts routes via
// MountRoutes after registering handlers.
func NewServer(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	return &Server{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		router:  chi.NewRouter(),
	}, nil
}

// MountRoutes registers the global middleware chain, the v1 API group, and
// the operational endpoints.
//
// Middleware ordering: Recoverer is outermost so every panic is caught;
// RequestID runs before the logger so log lines carry the correlation ID;
// metrics run innermost so they time only handler work.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))
	if s.Metrics != nil {
		s.router.Use(s.metricsMiddleware)
	}

	s.router.Route("/v1", func(r chi.Router) {
		for _, registrar := range s.V1RouteRegistrars {
			registrar(r)
		}
	})

	s.router.Get("/healthz", s.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
