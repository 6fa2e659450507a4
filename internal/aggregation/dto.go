package aggregation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/givebridge-backend/pkg/enums"
)

// UserDonationEntry is one row of a donor's history joined with cause display
// fields.
type UserDonationEntry struct {
	ID            uuid.UUID            `json:"id"`
	CauseID       *uuid.UUID           `json:"cause_id,omitempty"`
	CauseName     string               `json:"cause_name"`
	CauseImageURL *string              `json:"cause_image_url,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	Status        enums.DonationStatus `json:"status"`
	FailureReason *string              `json:"failure_reason,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// UserSummaryDTO is the donor dashboard payload.
type UserSummaryDTO struct {
	UserID       uuid.UUID           `json:"user_id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	TotalDonated decimal.Decimal     `json:"total_donated"`
	Donations    []UserDonationEntry `json:"donations"`
}

// SystemDonationEntry is one platform-wide donation row joined with donor and
// cause display fields.
type SystemDonationEntry struct {
	ID            uuid.UUID            `json:"id"`
	DonorID       uuid.UUID            `json:"donor_id"`
	DonorName     string               `json:"donor_name"`
	DonorEmail    string               `json:"donor_email"`
	CauseID       *uuid.UUID           `json:"cause_id,omitempty"`
	CauseName     string               `json:"cause_name"`
	CauseImageURL *string              `json:"cause_image_url,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	Status        enums.DonationStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

// SystemStats partitions the ledger by status. TotalAmount counts successful
// donations only.
type SystemStats struct {
	Total       int64           `json:"total"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Success     int64           `json:"success"`
	Pending     int64           `json:"pending"`
	Failed      int64           `json:"failed"`
}

// SystemSummaryDTO is the admin dashboard payload.
type SystemSummaryDTO struct {
	Donations []SystemDonationEntry `json:"donations"`
	Stats     SystemStats           `json:"stats"`
}
