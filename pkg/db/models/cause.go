package models

import (
	"time"

	"github.com/google/uuid"
)

// Cause is a campaign donors can contribute to.
type Cause struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;type:text;not null;uniqueIndex"`
	Description string     `gorm:"column:description;not null;default:''"`
	ImageURL    *string    `gorm:"column:image_url"`
	CreatedBy   *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
