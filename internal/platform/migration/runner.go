// Copyright (c) 2026 Identra. All rights reserved.

// Package migration applies Identra's SQL schema on startup.
//
// The server refuses to take traffic against an unknown schema: main runs
// RunUp after connecting and aborts on any failure, including a dirty
// version left behind by a crashed migration. The runner never rolls back
// on its own; downgrades are an operator action.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme with golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql pairs from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies every pending up migration from migrationsPath against dsn.
// Already-current databases are a no-op, so restarts are safe.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		if sourceErr != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
		}
		if dbErr != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbErr))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema is dirty at version %d, resolve manually before restarting", version)
	}

	logger.Info("migration_started", slog.Uint64("schema_version", uint64(version)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_schema_current", slog.Uint64("schema_version", uint64(version)))
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	applied, _, _ := migrator.Version()
	logger.Info("migration_applied",
		slog.Uint64("from_version", uint64(version)),
		slog.Uint64("to_version", uint64(applied)),
	)

	return nil
}

// pgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// that golang-migrate's pgx/v5 driver registers. Anything else passes
// through untouched.
func pgx5DSN(dsn string) string {
	const scheme = "pgx5://"

	switch {
	case strings.HasPrefix(dsn, scheme):
		return dsn
	case strings.HasPrefix(dsn, "postgres://"):
		return scheme + strings.TrimPrefix(dsn, "postgres://")
	case strings.HasPrefix(dsn, "postgresql://"):
		return scheme + strings.TrimPrefix(dsn, "postgresql://")
	default:
		return dsn
	}
}

// migrateLogger bridges golang-migrate's Printf logger onto slog at debug
// level, so migration chatter stays out of production logs.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *migrateLogger) Verbose() bool { return false }
