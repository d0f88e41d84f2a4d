package models

import (
	"time"

	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for orders
type OrderModel struct {
	ID         int64            `gorm:"primaryKey;autoIncrement"`
	Code       string           `gorm:"type:varchar(36);uniqueIndex;not null"`
	CustomerID int64            `gorm:"not null;index"`
	Date       string           `gorm:"type:varchar(10);not null;index:idx_orders_date_hour,priority:1"`
	Hour       string           `gorm:"type:varchar(8);not null;index:idx_orders_date_hour,priority:2"`
	IsActive   bool             `gorm:"not null;default:true"`
	CreatedAt  time.Time        `gorm:"not null"`
	UpdatedAt  time.Time        `gorm:"not null"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for order line items
type OrderItemModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"not null;index"`
	ProductID int64           `gorm:"not null;index"`
	Quantity  int             `gorm:"not null;default:1"`
	Color     string          `gorm:"type:varchar(50);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for OrderItemModel
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts OrderModel to a domain Order
func (m *OrderModel) ToDomain() *ordering.Order {
	items := make([]ordering.OrderItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &ordering.Order{
		ID:         m.ID,
		Code:       m.Code,
		CustomerID: m.CustomerID,
		Date:       m.Date,
		Hour:       m.Hour,
		IsActive:   m.IsActive,
		Items:      items,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ToDomain converts OrderItemModel to a domain OrderItem
func (m *OrderItemModel) ToDomain() ordering.OrderItem {
	return ordering.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Color:     m.Color,
		Price:     m.Price,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// OrderModelFromDomain converts a domain Order to its persistence model
func OrderModelFromDomain(order *ordering.Order) *OrderModel {
	items := make([]OrderItemModel, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemModel{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Color:     item.Color,
			Price:     item.Price,
		}
	}
	return &OrderModel{
		ID:         order.ID,
		Code:       order.Code,
		CustomerID: order.CustomerID,
		Date:       order.Date,
		Hour:       order.Hour,
		IsActive:   order.IsActive,
		Items:      items,
	}
}

// SyncDomainIDs copies store-assigned identifiers and timestamps back to the domain order
func (m *OrderModel) SyncDomainIDs(order *ordering.Order) {
	order.ID = m.ID
	order.CreatedAt = m.CreatedAt
	order.UpdatedAt = m.UpdatedAt
	for i := range m.Items {
		if i < len(order.Items) {
			order.Items[i].ID = m.Items[i].ID
			order.Items[i].OrderID = m.Items[i].OrderID
			order.Items[i].CreatedAt = m.Items[i].CreatedAt
			order.Items[i].UpdatedAt = m.Items[i].UpdatedAt
		}
	}
}
