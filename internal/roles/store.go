package roles

import "context"

type Repository interface {
	ListRoles(context context.Context) ([]*Role, error)
	GetRole(context context.Context, id int64) (*Role, error)
	CreateRole(context context.Context, r *Role) error
	UpdateRole(context context.Context, r *Role) error
	DeleteRole(context context.Context, id int64) error
	CountMembers(context context.Context, id int64) (int64, error)
}
