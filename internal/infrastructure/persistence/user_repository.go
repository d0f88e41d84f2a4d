package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/didikala/backend/internal/domain/identity"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/didikala/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserReader using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by primary key
func (r *GormUserRepository) FindByID(ctx context.Context, userID int64) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return model.ToDomain(), nil
}

// Exists reports whether a user with the given ID exists
func (r *GormUserRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

var _ identity.UserReader = (*GormUserRepository)(nil)
