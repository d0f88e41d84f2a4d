package ordering

import "context"

// ItemPatch is a partial update for a single order line. Only quantity and
// color are patchable; the product and its price snapshot are fixed at
// creation. Nil fields are left untouched.
type ItemPatch struct {
	Quantity *int
	Color    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Quantity == nil && p.Color == nil
}

// OrderRepository persists and queries order aggregates.
type OrderRepository interface {
	// Create persists the order header together with all of its items in a
	// single transaction. The store assigns Order.ID and the item IDs.
	Create(ctx context.Context, order *Order) error

	// FindByID loads a single order with its items.
	// Returns shared.ErrNotFound if no such order exists.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindAll returns all orders with their items, newest first
	// (date descending, then hour descending).
	FindAll(ctx context.Context) ([]Order, error)

	// FindByCustomer returns the orders of one customer, newest first.
	FindByCustomer(ctx context.Context, customerID int64) ([]Order, error)

	// SetActive updates the order's active flag.
	// Returns shared.ErrNotFound if the order header does not exist.
	SetActive(ctx context.Context, orderID int64, isActive bool) error

	// UpdateItem applies a partial update to one line of the given order and
	// returns the number of rows affected. An unknown item ID is not an
	// error; it simply affects zero rows.
	UpdateItem(ctx context.Context, orderID, itemID int64, patch ItemPatch) (int64, error)

	// Delete removes the order and all of its items in a single transaction.
	// Returns shared.ErrNotFound if the order header does not exist.
	Delete(ctx context.Context, orderID int64) error
}
