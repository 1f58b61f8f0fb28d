// Copyright (c) 2026 Identra. All rights reserved.

// Command api is the entry point for the Identra HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build security primitives (token codec, password hasher).
//  7. Wire domain services, audit trail and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anhtran-dev/identra/internal/api"
	"github.com/anhtran-dev/identra/internal/audit"
	"github.com/anhtran-dev/identra/internal/auth"
	"github.com/anhtran-dev/identra/internal/platform/access"
	"github.com/anhtran-dev/identra/internal/platform/config"
	"github.com/anhtran-dev/identra/internal/platform/constants"
	"github.com/anhtran-dev/identra/internal/platform/metrics"
	"github.com/anhtran-dev/identra/internal/platform/migration"
	pgstore "github.com/anhtran-dev/identra/internal/platform/postgres"
	redisstore "github.com/anhtran-dev/identra/internal/platform/redis"
	"github.com/anhtran-dev/identra/internal/platform/sec"
	"github.com/anhtran-dev/identra/internal/profiles"
	"github.com/anhtran-dev/identra/internal/roles"
	"github.com/anhtran-dev/identra/internal/users"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "identra"))
	slog.SetDefault(log)

	log.Info("[Identra] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "identra"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security Primitives ────────────────────────────────────────────
	codec := sec.NewTokenCodec(cfg.JWTSecret, constants.AuthIssuer, cfg.JWTTTL)
	hasher := sec.NewHasher(cfg.BcryptCost)
	meters := metrics.New()

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := users.NewPostgresRepository(pool)
	auditStore := audit.NewPostgresStore(pool)

	trail := audit.NewTrail(auditStore, log, meters)
	defer trail.Close()

	resolver := access.NewResolver(codec, userRepository)
	chain := access.NewChain(resolver)

	attemptLimiter := auth.NewRedisAttemptLimiter(rdb)
	authService := auth.NewService(userRepository, hasher, codec, attemptLimiter, trail, meters, log)

	userService := users.NewService(userRepository, hasher, log)
	roleService := roles.NewService(roles.NewPostgresRepository(pool), log)
	profileService := profiles.NewService(profiles.NewPostgresRepository(pool), log)
	auditService := audit.NewService(auditStore, log)

	// Background retention sweep for expired audit events.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go audit.NewRetentionWorker(auditService, log, cfg.AuditRetention()).Run(workerCtx)

	// ── 8. Health Handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Users:     users.NewHandler(userService),
		Roles:     roles.NewHandler(roleService),
		Profiles:  profiles.NewHandler(profileService),
		Audit:     audit.NewHandler(auditService, cfg.AuditRetention()),
	}

	server := api.NewServer(workerCtx, cfg, log, chain, meters, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
