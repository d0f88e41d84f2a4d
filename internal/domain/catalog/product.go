package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog reference entity. The ordering workflow only reads
// products to verify existence and to snapshot the current price.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductReader provides read access to the product catalog.
type ProductReader interface {
	// FindByID loads a product by its ID.
	// Returns shared.ErrNotFound if no such product exists.
	FindByID(ctx context.Context, id int64) (*Product, error)
}
