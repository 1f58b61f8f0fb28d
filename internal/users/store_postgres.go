package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anhtran-dev/identra/internal/auth"
	"github.com/anhtran-dev/identra/internal/platform/access"
	"github.com/anhtran-dev/identra/internal/platform/database/schema"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
)

// PostgresRepository implements [Repository]. It also backs the resolver
// (access.IdentityStore) and the login flow (auth.CredentialStore), so all
// three views of a user row stay consistent.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// rolesAggregate is the SELECT expression collecting a user's role names.
const rolesAggregate = "COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')"

// userSelect joins users to their roles; callers append WHERE/LIMIT clauses.
func userSelect(where string) string {
	u, ur, r := schema.Users, schema.UserRoles, schema.Roles

	return fmt.Sprintf(`
		SELECT u.%s, u.%s, u.%s, u.%s, u.%s, u.%s, u.%s, u.%s, %s
		FROM %s u
		LEFT JOIN %s ur ON ur.%s = u.%s
		LEFT JOIN %s r ON r.%s = ur.%s
		%s
		GROUP BY u.%s
	`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.LastLoginAt, u.CreatedAt, u.UpdatedAt,
		rolesAggregate,
		u.Table,
		ur.Table, ur.UserID, u.ID,
		r.Table, r.ID, ur.RoleID,
		where,
		u.ID,
	)
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.Roles,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (repository *PostgresRepository) ListUsers(ctx context.Context, f Filter, limit, offset int) ([]*User, int, error) {
	u := schema.Users

	conditions := []string{"1=1"}
	args := []any{}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		position := itos(len(args))
		conditions = append(conditions, fmt.Sprintf("(u.%s ILIKE $%s OR u.%s ILIKE $%s)", u.Username, position, u.Email, position))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conditions = append(conditions, fmt.Sprintf("u.%s = $%s", u.IsActive, itos(len(args))))
	}
	if f.Role != "" {
		args = append(args, f.Role)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s ur2 JOIN %s r2 ON r2.%s = ur2.%s WHERE ur2.%s = u.%s AND r2.%s = $%s)",
			schema.UserRoles.Table, schema.Roles.Table, schema.Roles.ID, schema.UserRoles.RoleID,
			schema.UserRoles.UserID, u.ID, schema.Roles.Name, itos(len(args)),
		))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s u %s`, u.Table, where)

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_users")
	}

	query := userSelect(where) +
		fmt.Sprintf(" ORDER BY u.%s ASC LIMIT $%s OFFSET $%s", u.ID, itos(len(args)+1), itos(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_users")
	}
	defer rows.Close()

	var result []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_user")
		}
		result = append(result, user)
	}

	return result, total, nil
}

func (repository *PostgresRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	query := userSelect(fmt.Sprintf("WHERE u.%s = $1", schema.Users.ID))

	user, err := scanUser(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_user")
	}
	return user, nil
}

func (repository *PostgresRepository) CreateUser(ctx context.Context, u *User, roleIDs []int64) error {
	users := schema.Users

	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "create_user_begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		users.Table, users.Username, users.Email, users.PasswordHash, users.IsActive,
		users.CreatedAt, users.UpdatedAt,
		users.ID, users.CreatedAt, users.UpdatedAt,
	)

	err = tx.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash, u.IsActive).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_user")
	}

	if err := insertUserRoles(ctx, tx, u.ID, roleIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "create_user_commit")
	}
	return nil
}

func (repository *PostgresRepository) UpdateUser(ctx context.Context, u *User) error {
	users := schema.Users

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		users.Table, users.Email, users.PasswordHash, users.IsActive, users.UpdatedAt,
		users.ID, users.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query, u.ID, u.Email, u.PasswordHash, u.IsActive).Scan(&u.UpdatedAt)
	return dberr.Wrap(err, "update_user")
}

func (repository *PostgresRepository) DeleteUser(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Users.Table, schema.Users.ID)

	cmd, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_user")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	users := schema.Users

	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		users.Table, users.IsActive, users.UpdatedAt, users.ID,
	)

	cmd, err := repository.db.Exec(ctx, query, id, active)
	if err != nil {
		return dberr.Wrap(err, "set_user_active")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "replace_roles_begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.UserRoles.Table, schema.UserRoles.UserID,
	)
	if _, err := tx.Exec(ctx, deleteQuery, userID); err != nil {
		return dberr.Wrap(err, "replace_roles_clear")
	}

	if err := insertUserRoles(ctx, tx, userID, roleIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "replace_roles_commit")
	}
	return nil
}

func insertUserRoles(ctx context.Context, tx pgx.Tx, userID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, unnest($2::bigint[])`,
		schema.UserRoles.Table, schema.UserRoles.UserID, schema.UserRoles.RoleID,
	)

	if _, err := tx.Exec(ctx, query, userID, roleIDs); err != nil {
		return dberr.Wrap(err, "assign_user_roles")
	}
	return nil
}

// # Identity Resolution (access.IdentityStore)

// FindIdentity loads the minimal live view the authorization chain needs.
func (repository *PostgresRepository) FindIdentity(ctx context.Context, id int64) (*access.Identity, error) {
	user, err := repository.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &access.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
		IsActive: user.IsActive,
	}, nil
}

// # Credential Access (auth.CredentialStore)

func toAccount(user *User) *auth.Account {
	return &auth.Account{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		Roles:        user.Roles,
		LastLoginAt:  user.LastLoginAt,
	}
}

func (repository *PostgresRepository) findAccount(ctx context.Context, where string, arg any) (*auth.Account, error) {
	user, err := scanUser(repository.db.QueryRow(ctx, userSelect(where), arg))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account")
	}
	return toAccount(user), nil
}

func (repository *PostgresRepository) FindByUsername(ctx context.Context, username string) (*auth.Account, error) {
	return repository.findAccount(ctx, fmt.Sprintf("WHERE u.%s = $1", schema.Users.Username), username)
}

func (repository *PostgresRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return repository.findAccount(ctx, fmt.Sprintf("WHERE u.%s = $1", schema.Users.Email), email)
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	return repository.findAccount(ctx, fmt.Sprintf("WHERE u.%s = $1", schema.Users.ID), id)
}

// CreateAccount enrolls a self-registered account, resolving role names to
// IDs inside the same transaction.
func (repository *PostgresRepository) CreateAccount(ctx context.Context, account *auth.Account, roleNames []string) error {
	users := schema.Users

	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "create_account_begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s
	`,
		users.Table, users.Username, users.Email, users.PasswordHash, users.IsActive,
		users.CreatedAt, users.UpdatedAt,
		users.ID,
	)

	err = tx.QueryRow(ctx, insertQuery, account.Username, account.Email, account.PasswordHash, account.IsActive).
		Scan(&account.ID)
	if err != nil {
		return dberr.Wrap(err, "create_account")
	}

	if len(roleNames) > 0 {
		assignQuery := fmt.Sprintf(`
			INSERT INTO %s (%s, %s)
			SELECT $1, %s FROM %s WHERE %s = ANY($2)
		`,
			schema.UserRoles.Table, schema.UserRoles.UserID, schema.UserRoles.RoleID,
			schema.Roles.ID, schema.Roles.Table, schema.Roles.Name,
		)
		if _, err := tx.Exec(ctx, assignQuery, account.ID, roleNames); err != nil {
			return dberr.Wrap(err, "assign_account_roles")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "create_account_commit")
	}
	return nil
}

func (repository *PostgresRepository) TouchLastLogin(ctx context.Context, id int64) error {
	users := schema.Users

	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		users.Table, users.LastLoginAt, users.ID,
	)

	_, err := repository.db.Exec(ctx, query, id)
	return dberr.Wrap(err, "touch_last_login")
}

func itos(i int) string {
	return strconv.Itoa(i)
}
