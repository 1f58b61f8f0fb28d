package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anhtran-dev/identra/internal/platform/database/schema"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListRoles(ctx context.Context) ([]*Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		strings.Join(schema.Roles.Columns(), ", "), schema.Roles.Table, schema.Roles.ID,
	)

	rows, err := repository.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_roles")
	}
	defer rows.Close()

	var result []*Role
	for rows.Next() {
		role := &Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_role")
		}
		result = append(result, role)
	}

	return result, nil
}

func (repository *PostgresRepository) GetRole(ctx context.Context, id int64) (*Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Roles.Columns(), ", "), schema.Roles.Table, schema.Roles.ID,
	)

	role := &Role{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt,
	)

	return role, dberr.Wrap(err, "get_role")
}

func (repository *PostgresRepository) CreateRole(ctx context.Context, r *Role) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		schema.Roles.Table, schema.Roles.Name, schema.Roles.Description,
		schema.Roles.CreatedAt, schema.Roles.UpdatedAt,
		schema.Roles.ID, schema.Roles.CreatedAt, schema.Roles.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, r.Name, r.Description).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	return dberr.Wrap(err, "create_role")
}

func (repository *PostgresRepository) UpdateRole(ctx context.Context, r *Role) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Roles.Table, schema.Roles.Name, schema.Roles.Description, schema.Roles.UpdatedAt,
		schema.Roles.ID, schema.Roles.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, r.ID, r.Name, r.Description).Scan(&r.UpdatedAt)
	return dberr.Wrap(err, "update_role")
}

func (repository *PostgresRepository) DeleteRole(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Roles.Table, schema.Roles.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_role")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) CountMembers(ctx context.Context, id int64) (int64, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`,
		schema.UserRoles.Table, schema.UserRoles.RoleID,
	)

	var count int64
	if err := repository.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_role_members")
	}
	return count, nil
}
