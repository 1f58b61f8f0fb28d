// Copyright (c) 2026 Identra. All rights reserved.

/*
Package audit records who did what, when, from where.

The package has two faces:

  - [Trail] is the write side: a fire-and-forget recorder used by the
    authentication flow. A failed audit write never fails the operation
    being audited; it is logged and counted instead.
  - [Service] is the read side: paginated queries, statistics and the
    retention sweep, exposed to administrators over HTTP.
*/
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/anhtran-dev/identra/internal/platform/constants"
	"github.com/anhtran-dev/identra/internal/platform/metrics"
)

// Trail appends audit events asynchronously.
//
// Record returns before the write completes. Pending writes survive the
// caller's request context being canceled; Close blocks until they drain.
type Trail struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Set

	pending sync.WaitGroup

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewTrail creates an audit recorder. The metrics set may be nil.
func NewTrail(store Store, logger *slog.Logger, set *metrics.Set) *Trail {
	return &Trail{
		store:   store,
		logger:  logger,
		metrics: set,
		now:     time.Now,
	}
}

// Record persists an event in the background.
//
// The event's CreatedAt is stamped here so that the recorded time is the
// time of the action, not the time the write lands. Persistence errors are
// swallowed: they are logged and counted, never returned.
func (trail *Trail) Record(ctx context.Context, event Event) {
	event.CreatedAt = trail.now()

	// Detach from the request context so an aborted request cannot cancel
	// the audit write, but keep request-scoped values (logger, request ID).
	detachedCtx := context.WithoutCancel(ctx)

	trail.pending.Add(1)
	go func() {
		defer trail.pending.Done()

		writeCtx, cancel := context.WithTimeout(detachedCtx, constants.AuditAppendTimeout)
		defer cancel()

		if err := trail.store.Append(writeCtx, &event); err != nil {
			if trail.metrics != nil {
				trail.metrics.AuditAppendFailures.Inc()
			}
			trail.logger.Error("audit_append_failed",
				slog.String("action", event.Action),
				slog.String("module", event.Module),
				slog.Any("error", err),
			)
		}
	}()
}

// Close waits for all in-flight writes to finish. Call during shutdown.
func (trail *Trail) Close() {
	trail.pending.Wait()
}
