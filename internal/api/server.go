// Copyright (c) 2026 Identra. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/anhtran-dev/identra/internal/audit"
	"github.com/anhtran-dev/identra/internal/auth"
	"github.com/anhtran-dev/identra/internal/platform/access"
	"github.com/anhtran-dev/identra/internal/platform/config"
	"github.com/anhtran-dev/identra/internal/platform/constants"
	"github.com/anhtran-dev/identra/internal/platform/metrics"
	"github.com/anhtran-dev/identra/internal/platform/middleware"
	"github.com/anhtran-dev/identra/internal/profiles"
	"github.com/anhtran-dev/identra/internal/roles"
	"github.com/anhtran-dev/identra/internal/users"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles credential verification routes (login, register, refresh).
	Auth *auth.Handler

	// Users handles account administration.
	Users *users.Handler

	// Roles handles the role catalogue.
	Roles *roles.Handler

	// Profiles handles personal profile data.
	Profiles *profiles.Handler

	// Audit exposes the audit trail to operators.
	Audit *audit.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups under their access policies.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, chain *access.Chain, set *metrics.Set, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.Metrics(set))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// Prometheus scrape endpoint.
	r.Method(http.MethodGet, "/metrics", set.Handler())

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(router chi.Router) { h.Auth.RegisterRoutes(router, chain) })
		api.Route("/users", func(router chi.Router) { h.Users.RegisterRoutes(router, chain) })
		api.Route("/roles", func(router chi.Router) { h.Roles.RegisterRoutes(router, chain) })
		api.Route("/profiles", func(router chi.Router) { h.Profiles.RegisterRoutes(router, chain) })
		api.Route("/audit-logs", func(router chi.Router) { h.Audit.RegisterRoutes(router, chain) })
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
