package causes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/pkg/db/models"
)

// Repository exposes cause persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a causes repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new cause.
func (r *Repository) Create(ctx context.Context, cause *models.Cause) (*models.Cause, error) {
	if cause.ID == uuid.Nil {
		cause.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(cause).Error; err != nil {
		return nil, err
	}
	return cause, nil
}

// FindByID loads a cause by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cause, error) {
	var cause models.Cause
	if err := r.db.WithContext(ctx).First(&cause, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cause, nil
}

// FindByName loads a cause by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Cause, error) {
	var cause models.Cause
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&cause).Error; err != nil {
		return nil, err
	}
	return &cause, nil
}

// List returns all causes ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Cause, error) {
	var causes []models.Cause
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&causes).Error; err != nil {
		return nil, err
	}
	return causes, nil
}

// Update applies the provided column updates to a cause.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Cause{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes a cause. Donation rows keep the denormalized cause name.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Cause{}, "id = ?", id).Error
}
