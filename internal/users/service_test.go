package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhtran-dev/identra/internal/platform/access"
	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
	"github.com/anhtran-dev/identra/internal/platform/sec"
)

type fakeRepo struct {
	users map[int64]*User
}

func (r *fakeRepo) ListUsers(_ context.Context, _ Filter, _, _ int) ([]*User, int, error) {
	var result []*User
	for _, user := range r.users {
		result = append(result, user)
	}
	return result, len(result), nil
}

func (r *fakeRepo) GetUser(_ context.Context, id int64) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeRepo) CreateUser(_ context.Context, u *User, roleIDs []int64) error {
	u.ID = int64(len(r.users) + 1)
	names := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		if roleID == 1 {
			names = append(names, "admin")
		} else {
			names = append(names, "user")
		}
	}
	u.Roles = names
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, u *User) error {
	if _, ok := r.users[u.ID]; !ok {
		return dberr.ErrNotFound
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeRepo) DeleteUser(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) SetActive(_ context.Context, id int64, active bool) error {
	user, ok := r.users[id]
	if !ok {
		return dberr.ErrNotFound
	}
	user.IsActive = active
	return nil
}

func (r *fakeRepo) ReplaceRoles(_ context.Context, userID int64, roleIDs []int64) error {
	if _, ok := r.users[userID]; !ok {
		return dberr.ErrNotFound
	}
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{users: map[int64]*User{
		1: {ID: 1, Username: "admin", Email: "admin@identra.dev", IsActive: true, Roles: []string{"admin"}},
		2: {ID: 2, Username: "bob", Email: "bob@identra.dev", IsActive: true, Roles: []string{"user"}},
	}}
	service := NewService(repo, sec.NewHasher(4), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return service, repo
}

var (
	adminActor = &access.Identity{ID: 1, Username: "admin", Roles: []string{"admin"}, IsActive: true}
	userActor  = &access.Identity{ID: 2, Username: "bob", Roles: []string{"user"}, IsActive: true}
)

func TestService_CreateUser(t *testing.T) {
	service, _ := newTestService()

	user, err := service.CreateUser(context.Background(), CreateInput{
		Username: "newcomer",
		Email:    "newcomer@identra.dev",
		Password: "s3cret-password",
		RoleIDs:  []int64{2},
	})
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.Roles)
}

func TestService_CreateUser_RequiresRole(t *testing.T) {
	service, _ := newTestService()

	_, err := service.CreateUser(context.Background(), CreateInput{
		Username: "newcomer",
		Email:    "newcomer@identra.dev",
		Password: "s3cret-password",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestService_UpdateUser_ActiveFlagIsAdminOnly(t *testing.T) {
	service, _ := newTestService()

	inactive := false

	// A plain user may not flip the flag, even on their own account
	_, err := service.UpdateUser(context.Background(), 2, UpdateInput{IsActive: &inactive}, userActor)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	// An admin may
	user, err := service.UpdateUser(context.Background(), 2, UpdateInput{IsActive: &inactive}, adminActor)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestService_UpdateUser_SelfEmailChange(t *testing.T) {
	service, repo := newTestService()

	email := "bob+new@identra.dev"
	user, err := service.UpdateUser(context.Background(), 2, UpdateInput{Email: &email}, userActor)
	require.NoError(t, err)

	assert.Equal(t, email, user.Email)
	assert.Equal(t, email, repo.users[2].Email)
}

func TestService_DeleteUser_SelfDeleteBlocked(t *testing.T) {
	service, repo := newTestService()

	err := service.DeleteUser(context.Background(), 1, adminActor)
	require.Error(t, err)
	assert.Equal(t, 422, apperr.As(err).HTTPStatus)
	assert.Contains(t, repo.users, int64(1))

	require.NoError(t, service.DeleteUser(context.Background(), 2, adminActor))
	assert.NotContains(t, repo.users, int64(2))
}

func TestService_SetActive_SelfDeactivateBlocked(t *testing.T) {
	service, repo := newTestService()

	err := service.SetActive(context.Background(), 1, false, adminActor)
	require.Error(t, err)
	assert.True(t, repo.users[1].IsActive)

	require.NoError(t, service.SetActive(context.Background(), 2, false, adminActor))
	assert.False(t, repo.users[2].IsActive)
}

func TestService_ReplaceRoles_Validation(t *testing.T) {
	service, _ := newTestService()

	_, err := service.ReplaceRoles(context.Background(), 2, nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = service.ReplaceRoles(context.Background(), 99, []int64{1})
	require.Error(t, err)
	assert.True(t, dberr.IsNotFound(err))
}
