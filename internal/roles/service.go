package roles

import (
	"context"
	"log/slog"

	"github.com/anhtran-dev/identra/internal/platform/apperr"
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

func (service *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return service.repo.ListRoles(ctx)
}

func (service *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	return service.repo.GetRole(ctx, id)
}

func (service *Service) CreateRole(ctx context.Context, role *Role) error {
	if err := validateRole(role); err != nil {
		return err
	}

	if err := service.repo.CreateRole(ctx, role); err != nil {
		return err
	}

	service.logger.Info("role_created", slog.String("name", role.Name))
	return nil
}

func (service *Service) UpdateRole(ctx context.Context, id int64, role *Role) error {
	role.ID = id

	existing, err := service.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}

	// Renaming a built-in would silently strip everyone's access.
	if IsReserved(existing.Name) && role.Name != existing.Name {
		return apperr.Unprocessable("Built-in roles cannot be renamed")
	}

	if err := validateRole(role); err != nil {
		return err
	}

	if err := service.repo.UpdateRole(ctx, role); err != nil {
		return err
	}

	service.logger.Info("role_updated", slog.Int64("role_id", role.ID))
	return nil
}

func (service *Service) DeleteRole(ctx context.Context, id int64) error {
	role, err := service.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}

	if IsReserved(role.Name) {
		return apperr.Unprocessable("Built-in roles cannot be deleted")
	}

	members, err := service.repo.CountMembers(ctx, id)
	if err != nil {
		return err
	}
	if members > 0 {
		return apperr.Conflict("Role is still assigned to users")
	}

	if err := service.repo.DeleteRole(ctx, id); err != nil {
		return err
	}

	service.logger.Warn("role_deleted", slog.Int64("role_id", id), slog.String("name", role.Name))
	return nil
}

func validateRole(role *Role) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldName, role.Name).
		MinLen(FieldName, role.Name, 2).
		MaxLen(FieldName, role.Name, 50)

	if role.Description != nil {
		validator.MaxLen(FieldDescription, *role.Description, 255)
	}

	return validator.Err()
}
