package ordering

import "github.com/didikala/backend/internal/domain/shared"

// Event types published by the ordering domain
const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
	EventOrderDeleted = "order_deleted"
)

const aggregateTypeOrder = "Order"

// OrderCreatedEvent is published after an order has been committed to the store.
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	Order *Order `json:"order"`
}

// NewOrderCreatedEvent creates an OrderCreatedEvent for a persisted order.
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCreated, aggregateTypeOrder, order.ID),
		Order:           order,
	}
}

// ItemChange describes the requested change for a single order line.
// Nil fields were not part of the request.
type ItemChange struct {
	OrderItemID int64   `json:"orderItemID"`
	Quantity    *int    `json:"quantity,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// OrderUpdatedEvent carries the update request as received, not the resulting
// state. Subscribers that need the full order re-read it from the store.
type OrderUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderID  int64        `json:"orderID"`
	IsActive *bool        `json:"isActive,omitempty"`
	Items    []ItemChange `json:"items,omitempty"`
}

// NewOrderUpdatedEvent creates an OrderUpdatedEvent echoing the applied patch.
func NewOrderUpdatedEvent(orderID int64, isActive *bool, items []ItemChange) *OrderUpdatedEvent {
	return &OrderUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderUpdated, aggregateTypeOrder, orderID),
		OrderID:         orderID,
		IsActive:        isActive,
		Items:           items,
	}
}

// OrderDeletedEvent is published after an order and its lines are removed.
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID int64 `json:"orderID"`
}

// NewOrderDeletedEvent creates an OrderDeletedEvent.
func NewOrderDeletedEvent(orderID int64) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderDeleted, aggregateTypeOrder, orderID),
		OrderID:         orderID,
	}
}
