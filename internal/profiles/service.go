package profiles

import (
	"context"
	"log/slog"

	"github.com/anhtran-dev/identra/internal/platform/dberr"
	"github.com/anhtran-dev/identra/internal/platform/validate"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetProfile returns the user's profile. Users without a stored profile get
// an empty one rather than a 404, since the row is created lazily.
func (service *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	profile, err := service.repo.GetByUserID(ctx, userID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return &Profile{UserID: userID}, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpdateInput is the payload for a profile upsert.
type UpdateInput struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Phone     *string `json:"phone"`
	Gender    *string `json:"gender"`
	Birthday  *string `json:"birthday"`
	Address   *string `json:"address"`
}

func (service *Service) UpdateProfile(ctx context.Context, userID int64, input UpdateInput) (*Profile, error) {
	validator := &validate.Validator{}

	if input.FullName != nil {
		validator.MaxLen(FieldFullName, *input.FullName, 100)
	}
	if input.AvatarURL != nil {
		validator.MaxLen(FieldAvatarURL, *input.AvatarURL, 500)
	}
	if input.Phone != nil {
		validator.Phone(FieldPhone, *input.Phone)
	}
	if input.Gender != nil {
		validator.OneOf(FieldGender, *input.Gender, Genders...)
	}
	if input.Birthday != nil {
		validator.Date(FieldBirthday, *input.Birthday)
	}
	if input.Address != nil {
		validator.MaxLen(FieldAddress, *input.Address, 255)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:    userID,
		FullName:  input.FullName,
		AvatarURL: input.AvatarURL,
		Phone:     input.Phone,
		Gender:    input.Gender,
		Birthday:  input.Birthday,
		Address:   input.Address,
	}

	if err := service.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	service.logger.Info("profile_updated", slog.Int64("user_id", userID))
	return profile, nil
}
