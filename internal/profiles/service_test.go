package profiles

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/dberr"
)

type fakeRepo struct {
	profiles map[int64]*Profile
}

func (r *fakeRepo) GetByUserID(_ context.Context, userID int64) (*Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *profile
	return &clone, nil
}

func (r *fakeRepo) Upsert(_ context.Context, p *Profile) error {
	if existing, ok := r.profiles[p.UserID]; ok {
		p.ID = existing.ID
	} else {
		p.ID = int64(len(r.profiles) + 1)
	}
	clone := *p
	r.profiles[p.UserID] = &clone
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{profiles: map[int64]*Profile{}}
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func strptr(s string) *string { return &s }

func TestService_GetProfile_LazyEmpty(t *testing.T) {
	service, _ := newTestService()

	profile, err := service.GetProfile(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), profile.UserID)
	assert.Zero(t, profile.ID)
	assert.Nil(t, profile.FullName)
}

func TestService_UpdateProfile_CreatesThenUpdates(t *testing.T) {
	service, repo := newTestService()

	created, err := service.UpdateProfile(context.Background(), 7, UpdateInput{
		FullName: strptr("Anh Tran"),
		Gender:   strptr("other"),
		Birthday: strptr("1992-11-03"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := service.UpdateProfile(context.Background(), 7, UpdateInput{
		FullName: strptr("Anh T. Tran"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Len(t, repo.profiles, 1)
}

func TestService_UpdateProfile_Validation(t *testing.T) {
	service, _ := newTestService()

	tests := []struct {
		name  string
		input UpdateInput
	}{
		{"bad_gender", UpdateInput{Gender: strptr("robot")}},
		{"bad_birthday", UpdateInput{Birthday: strptr("03/11/1992")}},
		{"bad_phone", UpdateInput{Phone: strptr("abc")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.UpdateProfile(context.Background(), 7, tt.input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}
