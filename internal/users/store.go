package users

import "context"

type Repository interface {
	ListUsers(context context.Context, f Filter, limit, offset int) ([]*User, int, error)
	GetUser(context context.Context, id int64) (*User, error)
	CreateUser(context context.Context, u *User, roleIDs []int64) error
	UpdateUser(context context.Context, u *User) error
	DeleteUser(context context.Context, id int64) error
	SetActive(context context.Context, id int64, active bool) error
	ReplaceRoles(context context.Context, userID int64, roleIDs []int64) error
}
