package profiles

import "context"

type Repository interface {
	GetByUserID(context context.Context, userID int64) (*Profile, error)
	Upsert(context context.Context, p *Profile) error
}
