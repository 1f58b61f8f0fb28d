package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/anhtran-dev/identra/internal/platform/constants"
)

// RetentionWorker periodically removes audit events past their retention
// window. One sweep runs immediately on start, then once per interval.
type RetentionWorker struct {
	service   *Service
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration
}

func NewRetentionWorker(service *Service, logger *slog.Logger, retention time.Duration) *RetentionWorker {
	return &RetentionWorker{
		service:   service,
		logger:    logger,
		retention: retention,
		interval:  constants.AuditSweepInterval,
	}
}

// Run blocks until the context is canceled. Intended to be started in its
// own goroutine from the composition root.
func (worker *RetentionWorker) Run(ctx context.Context) {
	worker.logger.Info("audit_retention_worker_started",
		slog.Duration("retention", worker.retention),
		slog.Duration("interval", worker.interval),
	)

	worker.sweep(ctx)

	ticker := time.NewTicker(worker.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			worker.sweep(ctx)
		case <-ctx.Done():
			worker.logger.Info("audit_retention_worker_stopped")
			return
		}
	}
}

func (worker *RetentionWorker) sweep(ctx context.Context) {
	if _, err := worker.service.Cleanup(ctx, worker.retention); err != nil {
		worker.logger.Error("audit_retention_sweep_failed", slog.Any("error", err))
	}
}
