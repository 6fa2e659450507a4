package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/givebridge-backend/pkg/enums"
)

// Donation is the ledger record for a single payment attempt.
// Rows are appended at intent creation and amended exactly once when the
// reconciler lands a terminal status; they are never deleted.
type Donation struct {
	ID                    uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DonorID               uuid.UUID            `gorm:"column:donor_id;type:uuid;not null;index"`
	CauseID               *uuid.UUID           `gorm:"column:cause_id;type:uuid;index"`
	CauseName             string               `gorm:"column:cause_name;not null;default:''"`
	Amount                decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency              string               `gorm:"column:currency;not null;default:'usd'"`
	Status                enums.DonationStatus `gorm:"column:status;type:donation_status;not null;default:'pending'"`
	PaymentMethod         string               `gorm:"column:payment_method;not null;default:'card'"`
	StripePaymentIntentID string               `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex"`
	FailureReason         *string              `gorm:"column:failure_reason"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
