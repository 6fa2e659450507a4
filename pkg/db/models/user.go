package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/givebridge-backend/pkg/enums"
)

// User represents a donor or platform administrator.
type User struct {
	ID             uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string               `gorm:"column:name;not null"`
	Email          string               `gorm:"type:text;not null;index:idx_users_email_role,unique"`
	PasswordHash   string               `gorm:"column:password_hash;not null"`
	Role           enums.UserRole       `gorm:"column:role;type:user_role;not null;default:'donor';index:idx_users_email_role,unique"`
	IsVerified     bool                 `gorm:"column:is_verified;not null;default:false"`
	ApprovalStatus enums.ApprovalStatus `gorm:"column:approval_status;type:approval_status;not null;default:'approved'"`
	ApprovedAt     *time.Time           `gorm:"column:approved_at"`
	RegisteredAt   time.Time            `gorm:"column:registered_at;autoCreateTime"`
	TotalDonated   decimal.Decimal      `gorm:"column:total_donated;type:numeric(12,2);not null;default:0"`
	LastLoginAt    *time.Time           `gorm:"column:last_login_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
