package aggregation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
	"github.com/givebridge/givebridge-backend/pkg/logger"
)

// Service serves the donor and admin dashboards.
type Service interface {
	UserSummary(ctx context.Context, userID uuid.UUID) (*UserSummaryDTO, error)
	SystemSummary(ctx context.Context) (*SystemSummaryDTO, error)
}

type repository interface {
	ListUserDonations(ctx context.Context, userID uuid.UUID) ([]UserDonationEntry, error)
	SumSuccessfulDonations(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListAllDonations(ctx context.Context) ([]SystemDonationEntry, error)
	Stats(ctx context.Context) (SystemStats, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetTotalDonated(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
}

type service struct {
	repo  repository
	users usersRepository
	logg  *logger.Logger
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo   repository
	Users  usersRepository
	Logger *logger.Logger
}

// NewService constructs an aggregation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("aggregation repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: params.Repo, users: params.Users, logg: params.Logger}, nil
}

// UserSummary builds the donor dashboard. The denormalized total_donated is
// checked against the ledger and healed in place when it drifted; the ledger
// sum is authoritative either way.
func (s *service) UserSummary(ctx context.Context, userID uuid.UUID) (*UserSummaryDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	donations, err := s.repo.ListUserDonations(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list donations")
	}

	total, err := s.repo.SumSuccessfulDonations(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum donations")
	}

	if !total.Equal(user.TotalDonated) {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"user_id":  userID.String(),
			"stored":   user.TotalDonated.StringFixed(2),
			"computed": total.StringFixed(2),
		})
		s.logg.Warn(lctx, "user.total_donated.drift")
		if err := s.users.SetTotalDonated(ctx, userID, total); err != nil {
			s.logg.Error(lctx, "user.total_donated.heal", err)
		}
	}

	return &UserSummaryDTO{
		UserID:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
		TotalDonated: total,
		Donations:    donations,
	}, nil
}

// SystemSummary builds the admin dashboard.
func (s *service) SystemSummary(ctx context.Context) (*SystemSummaryDTO, error) {
	donations, err := s.repo.ListAllDonations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list donations")
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute stats")
	}
	return &SystemSummaryDTO{Donations: donations, Stats: stats}, nil
}
