package audit

import (
	"context"
	"time"
)

type Store interface {
	Append(context context.Context, event *Event) error
	List(context context.Context, f Filter, limit, offset int) ([]*Event, int, error)
	GetEvent(context context.Context, id int64) (*Event, error)
	DeleteOlderThan(context context.Context, cutoff time.Time) (int64, error)
	Statistics(context context.Context, from, to *time.Time) (*Statistics, error)
	Trends(context context.Context, days int) ([]DailyCount, error)
}
