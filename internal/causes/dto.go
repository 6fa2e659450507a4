package causes

import (
	"time"

	"github.com/google/uuid"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
)

// CauseDTO is the transport shape for a cause.
type CauseDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ImageURL    *string    `json:"image_url,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateCauseInput holds the fields accepted when registering a cause.
type CreateCauseInput struct {
	Name        string
	Description string
	ImageURL    *string
	CreatedBy   *uuid.UUID
}

// UpdateCauseInput holds the mutable fields of a cause. Nil means unchanged.
type UpdateCauseInput struct {
	Name        *string
	Description *string
	ImageURL    *string
}

func FromModel(c *models.Cause) *CauseDTO {
	if c == nil {
		return nil
	}
	return &CauseDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromModels(causes []models.Cause) []CauseDTO {
	out := make([]CauseDTO, 0, len(causes))
	for i := range causes {
		out = append(out, *FromModel(&causes[i]))
	}
	return out
}
