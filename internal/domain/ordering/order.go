package ordering

import (
	"regexp"
	"strings"
	"time"

	"github.com/didikala/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultQuantity is used when an order item does not specify a quantity.
const DefaultQuantity = 1

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hourPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// Order is the order aggregate root. The store assigns ID on first save;
// Code is a random identifier fixed at creation and never changed afterwards.
type Order struct {
	ID         int64
	Code       string
	CustomerID int64
	Date       string // YYYY-MM-DD
	Hour       string // HH:MM:SS
	IsActive   bool
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem is a line of an order. Price is a snapshot of the catalog price
// at creation time and is immutable afterwards.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Color     string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder creates a new active order header without items.
func NewOrder(code string, customerID int64, date, hour string) (*Order, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order code is required")
	}
	if customerID <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID must be a positive number")
	}
	if !datePattern.MatchString(date) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Date must be in YYYY-MM-DD format")
	}
	if !hourPattern.MatchString(hour) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Hour must be in HH:MM:SS format")
	}

	return &Order{
		Code:       code,
		CustomerID: customerID,
		Date:       date,
		Hour:       hour,
		IsActive:   true,
	}, nil
}

// NewOrderItem creates an order line. A zero quantity falls back to
// DefaultQuantity; a negative quantity is rejected.
func NewOrderItem(productID int64, quantity int, color string, price decimal.Decimal) (*OrderItem, error) {
	if productID <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID must be a positive number")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if quantity == 0 {
		quantity = DefaultQuantity
	}
	if strings.TrimSpace(color) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Color is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
	}

	return &OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		Color:     color,
		Price:     price,
	}, nil
}

// AddItem appends a line to the order.
func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
}

// HasItems reports whether the order carries at least one line.
// An order must never be persisted without items.
func (o *Order) HasItems() bool {
	return len(o.Items) > 0
}

// SetActive flips the order's active flag.
func (o *Order) SetActive(active bool) {
	o.IsActive = active
}
