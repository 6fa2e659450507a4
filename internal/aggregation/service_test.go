package aggregation

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
	"github.com/givebridge/givebridge-backend/pkg/logger"
)

type stubAggRepo struct {
	listUserFn func(ctx context.Context, userID uuid.UUID) ([]UserDonationEntry, error)
	sumFn      func(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	listAllFn  func(ctx context.Context) ([]SystemDonationEntry, error)
	statsFn    func(ctx context.Context) (SystemStats, error)
}

func (s *stubAggRepo) ListUserDonations(ctx context.Context, userID uuid.UUID) ([]UserDonationEntry, error) {
	if s.listUserFn != nil {
		return s.listUserFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubAggRepo) SumSuccessfulDonations(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if s.sumFn != nil {
		return s.sumFn(ctx, userID)
	}
	return decimal.Zero, nil
}

func (s *stubAggRepo) ListAllDonations(ctx context.Context) ([]SystemDonationEntry, error) {
	if s.listAllFn != nil {
		return s.listAllFn(ctx)
	}
	return nil, nil
}

func (s *stubAggRepo) Stats(ctx context.Context) (SystemStats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx)
	}
	return SystemStats{}, nil
}

type stubAggUsers struct {
	findFn   func(ctx context.Context, id uuid.UUID) (*models.User, error)
	setTotal func(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
}

func (s *stubAggUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAggUsers) SetTotalDonated(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	if s.setTotal != nil {
		return s.setTotal(ctx, id, total)
	}
	return nil
}

func newAggService(t *testing.T, repo *stubAggRepo, users *stubAggUsers) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Users:  users,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestUserSummaryUnknownUser(t *testing.T) {
	svc := newAggService(t, &stubAggRepo{}, &stubAggUsers{})

	_, err := svc.UserSummary(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUserSummaryHealsDriftedTotal(t *testing.T) {
	userID := uuid.New()
	users := &stubAggUsers{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{
				ID:           userID,
				Name:         "Dana",
				Email:        "dana@example.com",
				TotalDonated: decimal.RequireFromString("10.00"),
			}, nil
		},
	}
	var healed *decimal.Decimal
	users.setTotal = func(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
		healed = &total
		return nil
	}
	repo := &stubAggRepo{
		sumFn: func(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
			return decimal.RequireFromString("35.00"), nil
		},
	}

	summary, err := newAggService(t, repo, users).UserSummary(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, healed)
	assert.True(t, healed.Equal(decimal.RequireFromString("35.00")))
	// The ledger sum wins in the response as well.
	assert.True(t, summary.TotalDonated.Equal(decimal.RequireFromString("35.00")))
}

func TestUserSummarySkipsHealWhenTotalsMatch(t *testing.T) {
	userID := uuid.New()
	users := &stubAggUsers{
		findFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: userID, TotalDonated: decimal.RequireFromString("35.00")}, nil
		},
	}
	healCalled := false
	users.setTotal = func(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
		healCalled = true
		return nil
	}
	repo := &stubAggRepo{
		sumFn: func(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
			// Same value, different exponent.
			return decimal.RequireFromString("35"), nil
		},
	}

	_, err := newAggService(t, repo, users).UserSummary(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, healCalled)
}

func TestSystemSummaryCombinesLedgerAndStats(t *testing.T) {
	repo := &stubAggRepo{
		listAllFn: func(ctx context.Context) ([]SystemDonationEntry, error) {
			return []SystemDonationEntry{{DonorName: "Dana"}}, nil
		},
		statsFn: func(ctx context.Context) (SystemStats, error) {
			return SystemStats{Total: 1, Success: 1, TotalAmount: decimal.RequireFromString("5.00")}, nil
		},
	}

	summary, err := newAggService(t, repo, &stubAggUsers{}).SystemSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Donations, 1)
	assert.Equal(t, int64(1), summary.Stats.Total)
	assert.True(t, summary.Stats.TotalAmount.Equal(decimal.RequireFromString("5.00")))
}
