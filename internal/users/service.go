package users

import (
	"context"
	"log/slog"

	"github.com/anhtran-dev/identra/internal/platform/access"
	"github.com/anhtran-dev/identra/internal/platform/apperr"
	"github.com/anhtran-dev/identra/internal/platform/sec"
	"github.com/anhtran-dev/identra/internal/platform/validate"
)

type Service struct {
	repo   Repository
	hasher *sec.Hasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher *sec.Hasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

func (service *Service) ListUsers(ctx context.Context, filter Filter, limit, offset int) ([]*User, int, error) {
	return service.repo.ListUsers(ctx, filter, limit, offset)
}

func (service *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return service.repo.GetUser(ctx, id)
}

// CreateInput is the payload for an administrative user creation.
type CreateInput struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	IsActive *bool   `json:"is_active"`
	RoleIDs  []int64 `json:"role_ids"`
}

func (service *Service) CreateUser(ctx context.Context, input CreateInput) (*User, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		MaxLen(FieldUsername, input.Username, 50).
		Username(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 6).
		Custom(FieldRoleIDs, len(input.RoleIDs) == 0, "At least one role is required")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := service.repo.CreateUser(ctx, user, input.RoleIDs); err != nil {
		return nil, err
	}

	// Reload to pick up the assigned role names.
	created, err := service.repo.GetUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_created", slog.Int64("user_id", created.ID), slog.String("username", created.Username))
	return created, nil
}

// UpdateInput is the payload for a partial user update. Nil fields are
// left untouched.
type UpdateInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser applies a partial update. The actor matters: only admins may
// flip the active flag, even on their own account.
func (service *Service) UpdateUser(ctx context.Context, id int64, input UpdateInput, actor *access.Identity) (*User, error) {
	validator := &validate.Validator{}
	if input.Email != nil {
		validator.Required(FieldEmail, *input.Email).Email(FieldEmail, *input.Email)
	}
	if input.Password != nil {
		validator.MinLen(FieldPassword, *input.Password, 6).MaxLen(FieldPassword, *input.Password, 72)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.IsActive != nil && !actor.HasRole("admin") {
		return nil, apperr.Forbidden("Only administrators may change account status")
	}

	user, err := service.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashedPassword, err := service.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := service.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_updated", slog.Int64("user_id", user.ID), slog.Int64("actor_id", actor.ID))
	return user, nil
}

func (service *Service) DeleteUser(ctx context.Context, id int64, actor *access.Identity) error {
	// An administrator deleting their own account would lock the door
	// behind them.
	if actor.ID == id {
		return apperr.Unprocessable("You cannot delete your own account")
	}

	if err := service.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("user_deleted", slog.Int64("user_id", id), slog.Int64("actor_id", actor.ID))
	return nil
}

func (service *Service) SetActive(ctx context.Context, id int64, active bool, actor *access.Identity) error {
	if actor.ID == id && !active {
		return apperr.Unprocessable("You cannot deactivate your own account")
	}

	if err := service.repo.SetActive(ctx, id, active); err != nil {
		return err
	}

	service.logger.Info("user_active_changed",
		slog.Int64("user_id", id),
		slog.Bool("active", active),
		slog.Int64("actor_id", actor.ID),
	)
	return nil
}

func (service *Service) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) (*User, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldRoleIDs, len(roleIDs) == 0, "At least one role is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Ensure the user exists before touching the join table.
	if _, err := service.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := service.repo.ReplaceRoles(ctx, userID, roleIDs); err != nil {
		return nil, err
	}

	service.logger.Info("user_roles_replaced", slog.Int64("user_id", userID))
	return service.repo.GetUser(ctx, userID)
}
