package audit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anhtran-dev/identra/internal/platform/database/schema"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (store *PostgresStore) Append(ctx context.Context, event *Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`,
		schema.AuditLogs.Table, schema.AuditLogs.Action, schema.AuditLogs.Module,
		schema.AuditLogs.Description, schema.AuditLogs.UserID, schema.AuditLogs.IPAddress,
		schema.AuditLogs.UserAgent, schema.AuditLogs.Status, schema.AuditLogs.ErrorMessage,
		schema.AuditLogs.CreatedAt,
		schema.AuditLogs.ID,
	)

	err := store.db.QueryRow(ctx, query,
		event.Action, event.Module, event.Description, event.ActorID,
		event.IPAddress, event.UserAgent, event.Status, event.ErrorMessage,
		event.CreatedAt,
	).Scan(&event.ID)

	return dberr.Wrap(err, "append_audit_event")
}

func (store *PostgresStore) List(ctx context.Context, f Filter, limit, offset int) ([]*Event, int, error) {
	conditions := []string{"1=1"}
	args := []any{}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if f.Module != "" {
		addCondition(schema.AuditLogs.Module+" = $%d", f.Module)
	}
	if f.Action != "" {
		addCondition(schema.AuditLogs.Action+" = $%d", f.Action)
	}
	if f.Status != "" {
		addCondition(schema.AuditLogs.Status+" = $%d", f.Status)
	}
	if f.ActorID != nil {
		addCondition(schema.AuditLogs.UserID+" = $%d", *f.ActorID)
	}
	if f.From != nil {
		addCondition(schema.AuditLogs.CreatedAt+" >= $%d", *f.From)
	}
	if f.To != nil {
		addCondition(schema.AuditLogs.CreatedAt+" <= $%d", *f.To)
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, schema.AuditLogs.Table, where)

	var total int
	if err := store.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_audit_events")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY %s DESC
		LIMIT $%s OFFSET $%s
	`,
		strings.Join(schema.AuditLogs.Columns(), ", "), schema.AuditLogs.Table,
		where, schema.AuditLogs.CreatedAt,
		itos(len(args)+1), itos(len(args)+2),
	)
	args = append(args, limit, offset)

	rows, err := store.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_audit_events")
	}
	defer rows.Close()

	events := make([]*Event, 0, limit)
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(
			&e.ID, &e.Action, &e.Module, &e.Description, &e.ActorID,
			&e.IPAddress, &e.UserAgent, &e.Status, &e.ErrorMessage, &e.CreatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_audit_event")
		}
		events = append(events, e)
	}

	return events, total, nil
}

func (store *PostgresStore) GetEvent(ctx context.Context, id int64) (*Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1
	`,
		strings.Join(schema.AuditLogs.Columns(), ", "), schema.AuditLogs.Table, schema.AuditLogs.ID,
	)

	e := &Event{}
	err := store.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Action, &e.Module, &e.Description, &e.ActorID,
		&e.IPAddress, &e.UserAgent, &e.Status, &e.ErrorMessage, &e.CreatedAt,
	)

	return e, dberr.Wrap(err, "get_audit_event")
}

// DeleteOlderThan removes events created strictly before the cutoff and
// returns how many were removed.
func (store *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`,
		schema.AuditLogs.Table, schema.AuditLogs.CreatedAt,
	)

	cmd, err := store.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_expired_audit_events")
	}

	return cmd.RowsAffected(), nil
}

func (store *PostgresStore) Statistics(ctx context.Context, from, to *time.Time) (*Statistics, error) {
	conditions := []string{"1=1"}
	args := []any{}

	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", schema.AuditLogs.CreatedAt, len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, fmt.Sprintf("%s <= $%d", schema.AuditLogs.CreatedAt, len(args)))
	}

	where := strings.Join(conditions, " AND ")

	stats := &Statistics{
		ByModule: map[string]int64{},
		ByAction: map[string]int64{},
	}

	totalsQuery := fmt.Sprintf(`
		SELECT
			count(*),
			count(*) FILTER (WHERE %s = $%d),
			count(*) FILTER (WHERE %s = $%d)
		FROM %s WHERE %s
	`,
		schema.AuditLogs.Status, len(args)+1,
		schema.AuditLogs.Status, len(args)+2,
		schema.AuditLogs.Table, where,
	)

	totalsArgs := append(append([]any{}, args...), StatusSuccess, StatusFailed)
	if err := store.db.QueryRow(ctx, totalsQuery, totalsArgs...).Scan(&stats.Total, &stats.Success, &stats.Failed); err != nil {
		return nil, dberr.Wrap(err, "audit_statistics_totals")
	}

	groupBy := func(column string, target map[string]int64) error {
		query := fmt.Sprintf(`SELECT %s, count(*) FROM %s WHERE %s GROUP BY %s`,
			column, schema.AuditLogs.Table, where, column,
		)

		rows, err := store.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err != nil {
				return err
			}
			target[key] = count
		}
		return rows.Err()
	}

	if err := groupBy(schema.AuditLogs.Module, stats.ByModule); err != nil {
		return nil, dberr.Wrap(err, "audit_statistics_by_module")
	}
	if err := groupBy(schema.AuditLogs.Action, stats.ByAction); err != nil {
		return nil, dberr.Wrap(err, "audit_statistics_by_action")
	}

	return stats, nil
}

// Trends returns per-day event counts for the last N days, oldest first.
// Days without events are omitted.
func (store *PostgresStore) Trends(ctx context.Context, days int) ([]DailyCount, error) {
	query := fmt.Sprintf(`
		SELECT to_char(date_trunc('day', %s), 'YYYY-MM-DD') AS day, count(*)
		FROM %s
		WHERE %s >= NOW() - ($1 * INTERVAL '1 day')
		GROUP BY day
		ORDER BY day ASC
	`,
		schema.AuditLogs.CreatedAt, schema.AuditLogs.Table, schema.AuditLogs.CreatedAt,
	)

	rows, err := store.db.Query(ctx, query, days)
	if err != nil {
		return nil, dberr.Wrap(err, "audit_trends")
	}
	defer rows.Close()

	var trends []DailyCount
	for rows.Next() {
		var point DailyCount
		if err := rows.Scan(&point.Date, &point.Count); err != nil {
			return nil, dberr.Wrap(err, "scan_audit_trend")
		}
		trends = append(trends, point)
	}

	return trends, rows.Err()
}

func itos(i int) string {
	return strconv.Itoa(i)
}
