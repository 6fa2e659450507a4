package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Role           enums.UserRole       `json:"role"`
	IsVerified     bool                 `json:"is_verified"`
	ApprovalStatus enums.ApprovalStatus `json:"approval_status"`
	ApprovedAt     *time.Time           `json:"approved_at,omitempty"`
	RegisteredAt   time.Time            `json:"registered_at"`
	TotalDonated   decimal.Decimal      `json:"total_donated"`
	LastLoginAt    *time.Time           `json:"last_login_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name           string
	Email          string
	PasswordHash   string
	Role           enums.UserRole
	IsVerified     bool
	ApprovalStatus enums.ApprovalStatus
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		IsVerified:     u.IsVerified,
		ApprovalStatus: u.ApprovalStatus,
		ApprovedAt:     u.ApprovedAt,
		RegisteredAt:   u.RegisteredAt,
		TotalDonated:   u.TotalDonated,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleDonor
	}
	approval := c.ApprovalStatus
	if approval == "" {
		approval = enums.ApprovalStatusApproved
	}

	return &models.User{
		ID:             uuid.New(),
		Name:           c.Name,
		Email:          c.Email,
		PasswordHash:   c.PasswordHash,
		Role:           role,
		IsVerified:     c.IsVerified,
		ApprovalStatus: approval,
		TotalDonated:   decimal.Zero,
	}
}
