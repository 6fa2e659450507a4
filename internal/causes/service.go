package causes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
)

const maxNameLength = 120

// Service defines the behavior needed by the cause controllers.
type Service interface {
	Create(ctx context.Context, input CreateCauseInput) (*CauseDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CauseDTO, error)
	List(ctx context.Context) ([]CauseDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCauseInput) (*CauseDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, cause *models.Cause) (*models.Cause, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cause, error)
	FindByName(ctx context.Context, name string) (*models.Cause, error)
	List(ctx context.Context) ([]models.Cause, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

// ServiceParams bundles the dependencies required to build a causes service.
type ServiceParams struct {
	Repo repository
}

// NewService constructs a causes service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("causes repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCauseInput) (*CauseDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cause name is required")
	}
	if len(name) > maxNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cause name is too long").
			WithDetails(map[string]any{"max": maxNameLength})
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cause name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cause")
	}

	created, err := s.repo.Create(ctx, &models.Cause{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    input.ImageURL,
		CreatedBy:   input.CreatedBy,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cause")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CauseDTO, error) {
	cause, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cause not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cause")
	}
	return FromModel(cause), nil
}

func (s *service) List(ctx context.Context) ([]CauseDTO, error) {
	causes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list causes")
	}
	return FromModels(causes), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCauseInput) (*CauseDTO, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cause not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cause")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cause name is required")
		}
		if len(name) > maxNameLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cause name is too long").
				WithDetails(map[string]any{"max": maxNameLength})
		}
		if name != existing.Name {
			if _, err := s.repo.FindByName(ctx, name); err == nil {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "cause name already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cause")
			}
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cause")
		}
	}

	refreshed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cause")
	}
	return FromModel(refreshed), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cause not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cause")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cause")
	}
	return nil
}
