package aggregation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/pkg/enums"
)

// Repository runs the read-side joins for the dashboards.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an aggregation repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userDonationRecord struct {
	ID            uuid.UUID
	CauseID       *uuid.UUID
	CauseName     string
	CauseImageURL *string
	Amount        decimal.Decimal
	Currency      string
	Status        enums.DonationStatus
	FailureReason *string
	CreatedAt     time.Time
}

func (r userDonationRecord) toEntry() UserDonationEntry {
	return UserDonationEntry{
		ID:            r.ID,
		CauseID:       r.CauseID,
		CauseName:     r.CauseName,
		CauseImageURL: r.CauseImageURL,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Status:        r.Status,
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt,
	}
}

// ListUserDonations returns a donor's full history, newest first, joined with
// cause display fields. Deleted causes fall back to the name denormalized onto
// the donation row at intent time.
func (r *Repository) ListUserDonations(ctx context.Context, userID uuid.UUID) ([]UserDonationEntry, error) {
	columns := []string{
		"d.id",
		"d.cause_id",
		"COALESCE(c.name, d.cause_name) AS cause_name",
		"c.image_url AS cause_image_url",
		"d.amount",
		"d.currency",
		"d.status",
		"d.failure_reason",
		"d.created_at",
	}

	var records []userDonationRecord
	err := r.db.WithContext(ctx).
		Table("donations d").
		Select(strings.Join(columns, ", ")).
		Joins("LEFT JOIN causes c ON c.id = d.cause_id").
		Where("d.donor_id = ?", userID).
		Order("d.created_at DESC").Order("d.id DESC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	entries := make([]UserDonationEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, record.toEntry())
	}
	return entries, nil
}

// SumSuccessfulDonations recomputes a donor's lifetime total from the ledger.
func (r *Repository) SumSuccessfulDonations(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("donations").
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("donor_id = ? AND status = ?", userID, enums.DonationStatusSuccess).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

type systemDonationRecord struct {
	ID            uuid.UUID
	DonorID       uuid.UUID
	DonorName     string
	DonorEmail    string
	CauseID       *uuid.UUID
	CauseName     string
	CauseImageURL *string
	Amount        decimal.Decimal
	Currency      string
	Status        enums.DonationStatus
	CreatedAt     time.Time
}

func (r systemDonationRecord) toEntry() SystemDonationEntry {
	return SystemDonationEntry{
		ID:            r.ID,
		DonorID:       r.DonorID,
		DonorName:     r.DonorName,
		DonorEmail:    r.DonorEmail,
		CauseID:       r.CauseID,
		CauseName:     r.CauseName,
		CauseImageURL: r.CauseImageURL,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}

// ListAllDonations returns the platform-wide ledger, newest first, joined with
// donor identity and cause display fields.
func (r *Repository) ListAllDonations(ctx context.Context) ([]SystemDonationEntry, error) {
	columns := []string{
		"d.id",
		"d.donor_id",
		"u.name AS donor_name",
		"u.email AS donor_email",
		"d.cause_id",
		"COALESCE(c.name, d.cause_name) AS cause_name",
		"c.image_url AS cause_image_url",
		"d.amount",
		"d.currency",
		"d.status",
		"d.created_at",
	}

	var records []systemDonationRecord
	err := r.db.WithContext(ctx).
		Table("donations d").
		Select(strings.Join(columns, ", ")).
		Joins("JOIN users u ON u.id = d.donor_id").
		Joins("LEFT JOIN causes c ON c.id = d.cause_id").
		Order("d.created_at DESC").Order("d.id DESC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	entries := make([]SystemDonationEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, record.toEntry())
	}
	return entries, nil
}

// Stats partitions the ledger by status in a single query.
func (r *Repository) Stats(ctx context.Context) (SystemStats, error) {
	var row struct {
		Total       int64
		TotalAmount decimal.Decimal
		Success     int64
		Pending     int64
		Failed      int64
	}
	err := r.db.WithContext(ctx).
		Table("donations").
		Select(strings.Join([]string{
			"COUNT(*) AS total",
			"COALESCE(SUM(amount), 0) AS total_amount",
			"COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) AS success",
			"COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending",
			"COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed",
		}, ", ")).
		Scan(&row).Error
	if err != nil {
		return SystemStats{}, err
	}
	return SystemStats{
		Total:       row.Total,
		TotalAmount: row.TotalAmount,
		Success:     row.Success,
		Pending:     row.Pending,
		Failed:      row.Failed,
	}, nil
}
