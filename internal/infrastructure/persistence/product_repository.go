package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/didikala/backend/internal/domain/catalog"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/didikala/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductReader using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID retrieves a product by primary key
func (r *GormProductRepository) FindByID(ctx context.Context, productID int64) (*catalog.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return model.ToDomain(), nil
}

var _ catalog.ProductReader = (*GormProductRepository)(nil)
