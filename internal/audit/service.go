package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/anhtran-dev/identra/internal/platform/validate"
)

type Service struct {
	store  Store
	logger *slog.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (service *Service) ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]*Event, int, error) {
	validator := &validate.Validator{}

	if filter.Status != "" {
		validator.OneOf(FieldStatus, filter.Status, StatusSuccess, StatusFailed)
	}

	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	return service.store.List(ctx, filter, limit, offset)
}

func (service *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return service.store.GetEvent(ctx, id)
}

func (service *Service) Statistics(ctx context.Context, from, to *time.Time) (*Statistics, error) {
	return service.store.Statistics(ctx, from, to)
}

func (service *Service) Trends(ctx context.Context, days int) ([]DailyCount, error) {
	if days < 1 || days > 365 {
		days = 7
	}
	return service.store.Trends(ctx, days)
}

// Cleanup removes events older than the retention window and returns how
// many were removed.
func (service *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := service.now().Add(-retention)

	removed, err := service.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	service.logger.Info("audit_cleanup_completed",
		slog.Int64("removed", removed),
		slog.Time("cutoff", cutoff),
	)
	return removed, nil
}
