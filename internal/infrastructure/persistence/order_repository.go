package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/didikala/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements ordering.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM-based order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists an order together with its items in a single transaction.
// Store-assigned identifiers are written back to the domain order.
func (r *GormOrderRepository) Create(ctx context.Context, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	model.SyncDomainIDs(order)
	return nil
}

// FindByID retrieves an order with its items by primary key
func (r *GormOrderRepository) FindByID(ctx context.Context, orderID int64) (*ordering.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		First(&model, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAll retrieves all orders with their items, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]ordering.Order, error) {
	return r.findOrders(ctx, "")
}

// FindByCustomer retrieves a customer's orders with their items, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID int64) ([]ordering.Order, error) {
	return r.findOrders(ctx, "orders.customer_id = ?", customerID)
}

// orderItemRow is the flat scan target for the order/item join.
// Item columns are nullable because orders without items still produce a row.
type orderItemRow struct {
	OrderID       int64
	Code          string
	CustomerID    int64
	Date          string
	Hour          string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ItemID        sql.NullInt64
	ItemProductID sql.NullInt64
	ItemQuantity  sql.NullInt64
	ItemColor     sql.NullString
	ItemPrice     decimal.NullDecimal
	ItemCreatedAt sql.NullTime
	ItemUpdatedAt sql.NullTime
}

const orderJoinColumns = `orders.id AS order_id, orders.code, orders.customer_id, orders.date, orders.hour,
orders.is_active, orders.created_at, orders.updated_at,
order_items.id AS item_id, order_items.product_id AS item_product_id,
order_items.quantity AS item_quantity, order_items.color AS item_color,
order_items.price AS item_price, order_items.created_at AS item_created_at,
order_items.updated_at AS item_updated_at`

// findOrders reads orders and their items in one LEFT JOIN query and
// regroups the flat rows into aggregates, preserving query order.
func (r *GormOrderRepository) findOrders(ctx context.Context, condition string, args ...interface{}) ([]ordering.Order, error) {
	query := r.db.WithContext(ctx).
		Table("orders").
		Select(orderJoinColumns).
		Joins("LEFT JOIN order_items ON order_items.order_id = orders.id").
		Order("orders.date DESC, orders.hour DESC, orders.id, order_items.id")
	if condition != "" {
		query = query.Where(condition, args...)
	}

	var rows []orderItemRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]ordering.Order, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		pos, seen := index[row.OrderID]
		if !seen {
			orders = append(orders, ordering.Order{
				ID:         row.OrderID,
				Code:       row.Code,
				CustomerID: row.CustomerID,
				Date:       row.Date,
				Hour:       row.Hour,
				IsActive:   row.IsActive,
				Items:      []ordering.OrderItem{},
				CreatedAt:  row.CreatedAt,
				UpdatedAt:  row.UpdatedAt,
			})
			pos = len(orders) - 1
			index[row.OrderID] = pos
		}
		if !row.ItemID.Valid {
			continue
		}
		orders[pos].Items = append(orders[pos].Items, ordering.OrderItem{
			ID:        row.ItemID.Int64,
			OrderID:   row.OrderID,
			ProductID: row.ItemProductID.Int64,
			Quantity:  int(row.ItemQuantity.Int64),
			Color:     row.ItemColor.String,
			Price:     row.ItemPrice.Decimal,
			CreatedAt: row.ItemCreatedAt.Time,
			UpdatedAt: row.ItemUpdatedAt.Time,
		})
	}
	return orders, nil
}

// SetActive updates the active flag of an order header
func (r *GormOrderRepository) SetActive(ctx context.Context, orderID int64, isActive bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("is_active", isActive)
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateItem applies a partial update to one item of an order and reports
// how many rows matched. An unknown item yields zero rows, not an error.
func (r *GormOrderRepository) UpdateItem(ctx context.Context, orderID, itemID int64, patch ordering.ItemPatch) (int64, error) {
	updates := make(map[string]interface{})
	if patch.Quantity != nil {
		updates["quantity"] = *patch.Quantity
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if len(updates) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Where("order_id = ? AND id = ?", orderID, itemID).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update order item: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes an order and its items in a single transaction.
// Items go first so the foreign key never dangles mid-transaction.
func (r *GormOrderRepository) Delete(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}

		result := tx.Where("id = ?", orderID).Delete(&models.OrderModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
