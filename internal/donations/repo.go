package donations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/enums"
	"github.com/givebridge/givebridge-backend/pkg/pagination"
)

// Repository persists donation rows and owns the status transition.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a donations repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a pending donation row.
func (r *Repository) Create(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

// FindByID loads a single donation row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// FindByPaymentIntentID resolves a donation from the gateway reference.
func (r *Repository) FindByPaymentIntentID(ctx context.Context, ref string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("stripe_payment_intent_id = ?", ref).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListByDonor returns a donor's history newest-first using cursor pagination.
func (r *Repository) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) ([]models.Donation, error) {
	query := r.db.WithContext(ctx).Model(&models.Donation{}).Where("donor_id = ?", donorID)

	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit))

	var rows []models.Donation
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ResolveTerminal moves a pending donation into the target terminal status.
//
// The update is conditional on the row still being pending, and the donor's
// running total bumps in the same transaction only when the conditional
// update changed a row. A donation that already reached a terminal status is
// returned unchanged with applied=false, which makes the transition safe
// under concurrent confirms and redelivered webhooks.
func (r *Repository) ResolveTerminal(ctx context.Context, id uuid.UUID, target enums.DonationStatus, failureReason *string) (*models.Donation, bool, error) {
	if !target.IsTerminal() {
		return nil, false, fmt.Errorf("donations: %q is not a terminal status", target)
	}

	var donation models.Donation
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&donation).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"status":     target,
			"updated_at": time.Now().UTC(),
		}
		if target == enums.DonationStatusFailed && failureReason != nil {
			updates["failure_reason"] = *failureReason
		}

		result := tx.Model(&models.Donation{}).
			Where("id = ? AND status = ?", id, enums.DonationStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race: another resolver landed first. Surface the
			// stored terminal state instead of flipping it.
			return tx.Where("id = ?", id).First(&donation).Error
		}
		applied = true

		if target == enums.DonationStatusSuccess {
			bump := tx.Model(&models.User{}).
				Where("id = ?", donation.DonorID).
				UpdateColumn("total_donated", gorm.Expr("total_donated + ?", donation.Amount))
			if bump.Error != nil {
				return bump.Error
			}
		}

		return tx.Where("id = ?", id).First(&donation).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &donation, applied, nil
}
