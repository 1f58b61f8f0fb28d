package profiles

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

func (repository *PostgresRepository) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Profiles.Columns(), ", "), schema.Profiles.Table, schema.Profiles.UserID,
	)

	p := &Profile{}
	err := repository.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.AvatarURL, &p.Phone,
		&p.Gender, &p.Birthday, &p.Address, &p.CreatedAt, &p.UpdatedAt,
	)

	return p, dberr.Wrap(err, "get_profile")
}

// Upsert creates the profile row on first write, then updates it in place.
func (repository *PostgresRepository) Upsert(ctx context.Context, p *Profile) error {
	profiles := schema.Profiles

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s, %s, %s
	`,
		profiles.Table, profiles.UserID, profiles.FullName, profiles.AvatarURL, profiles.Phone,
		profiles.Gender, profiles.Birthday, profiles.Address, profiles.CreatedAt, profiles.UpdatedAt,
		profiles.UserID,
		profiles.FullName, profiles.FullName,
		profiles.AvatarURL, profiles.AvatarURL,
		profiles.Phone, profiles.Phone,
		profiles.Gender, profiles.Gender,
		profiles.Birthday, profiles.Birthday,
		profiles.Address, profiles.Address,
		profiles.UpdatedAt,
		profiles.ID, profiles.CreatedAt, profiles.UpdatedAt,
	)

	err := repository.db.QueryRow(ctx, query,
		p.UserID, p.FullName, p.AvatarURL, p.Phone, p.Gender, p.Birthday, p.Address,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	return dberr.Wrap(err, "upsert_profile")
}
