package donations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/enums"
)

// CreateIntentInput carries a donor's request to start a payment.
type CreateIntentInput struct {
	DonorID uuid.UUID
	CauseID *uuid.UUID
	Amount  decimal.Decimal
}

// IntentResult is returned after the gateway accepts the payment intent.
// ClientSecret is handed to the browser SDK to collect the card.
type IntentResult struct {
	DonationID   uuid.UUID `json:"donation_id"`
	ExternalRef  string    `json:"payment_intent_id"`
	ClientSecret string    `json:"client_secret"`
}

// ConfirmInput carries a client-reported payment outcome for reconciliation.
// ExternalRef and ReportedStatus are optional; when ReportedStatus is not
// "failed" the gateway is consulted as the source of truth.
type ConfirmInput struct {
	DonationID     uuid.UUID
	ExternalRef    string
	ReportedStatus string
	FailureReason  string
}

// DonationDTO is the API-facing shape of a donation row.
type DonationDTO struct {
	ID            uuid.UUID            `json:"id"`
	DonorID       uuid.UUID            `json:"donor_id"`
	CauseID       *uuid.UUID           `json:"cause_id,omitempty"`
	CauseName     string               `json:"cause_name"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	Status        enums.DonationStatus `json:"status"`
	PaymentMethod string               `json:"payment_method"`
	FailureReason *string              `json:"failure_reason,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// DonationList is a cursor-paginated page of a donor's history.
type DonationList struct {
	Donations  []DonationDTO `json:"donations"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// FromModel maps a persistence row onto the API shape.
func FromModel(donation *models.Donation) DonationDTO {
	return DonationDTO{
		ID:            donation.ID,
		DonorID:       donation.DonorID,
		CauseID:       donation.CauseID,
		CauseName:     donation.CauseName,
		Amount:        donation.Amount,
		Currency:      donation.Currency,
		Status:        donation.Status,
		PaymentMethod: donation.PaymentMethod,
		FailureReason: donation.FailureReason,
		CreatedAt:     donation.CreatedAt,
		UpdatedAt:     donation.UpdatedAt,
	}
}

// FromModels maps a slice of rows, preserving order.
func FromModels(rows []models.Donation) []DonationDTO {
	out := make([]DonationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
