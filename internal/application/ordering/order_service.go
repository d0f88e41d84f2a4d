package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/didikala/backend/internal/domain/catalog"
	"github.com/didikala/backend/internal/domain/identity"
	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateOrderCommand carries the input for creating an order.
type CreateOrderCommand struct {
	CustomerID int64
	Date       string
	Hour       string
	Items      []CreateOrderItemCommand
}

// CreateOrderItemCommand is one requested order line.
// A nil Quantity falls back to the default of one unit.
type CreateOrderItemCommand struct {
	ProductID int64
	Quantity  *int
	Color     string
}

// RejectedItem reports why a requested line was not accepted.
type RejectedItem struct {
	ProductID int64  `json:"productID"`
	Reason    string `json:"reason"`
}

// CreateOrderResult is the outcome of a create request: the persisted order
// (nil when nothing was accepted) plus the lines that were turned away.
type CreateOrderResult struct {
	Order    *ordering.Order
	Rejected []RejectedItem
}

// UpdateOrderCommand carries a partial update for an order.
// Nil IsActive leaves the header untouched; each item patch is independent.
type UpdateOrderCommand struct {
	OrderID  int64
	IsActive *bool
	Items    []UpdateOrderItemCommand
}

// UpdateOrderItemCommand is a partial update for one order line. The product
// and its price snapshot cannot be changed after creation.
type UpdateOrderItemCommand struct {
	OrderItemID int64
	Quantity    *int
	Color       *string
}

// ItemUpdateResult reports the outcome of one item patch.
type ItemUpdateResult struct {
	OrderItemID int64 `json:"orderItemID"`
	Affected    int64 `json:"affected"`
	Skipped     bool  `json:"skipped"`
}

// UpdateOrderResult acknowledges an update request per patch.
type UpdateOrderResult struct {
	OrderID  int64              `json:"orderID"`
	IsActive *bool              `json:"isActive,omitempty"`
	Items    []ItemUpdateResult `json:"items"`
}

// OrderService implements the order lifecycle use cases.
type OrderService struct {
	orders    ordering.OrderRepository
	products  catalog.ProductReader
	users     identity.UserReader
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service. The publisher is used for
// best-effort notifications; publish failures never fail the request.
func NewOrderService(
	orders ordering.OrderRepository,
	products catalog.ProductReader,
	users identity.UserReader,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates the requested lines, snapshots catalog prices and persists
// the accepted lines with the header in one transaction. Invalid lines are
// reported back per item; when no line survives validation nothing is written
// and shared.ErrNoValidItems is returned alongside the rejection report.
func (s *OrderService) Create(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	exists, err := s.users.Exists(ctx, cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}

	order, err := ordering.NewOrder(uuid.New().String(), cmd.CustomerID, cmd.Date, cmd.Hour)
	if err != nil {
		return nil, err
	}

	rejected := make([]RejectedItem, 0)
	for _, line := range cmd.Items {
		quantity := 0
		if line.Quantity != nil {
			quantity = *line.Quantity
		}

		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				rejected = append(rejected, RejectedItem{ProductID: line.ProductID, Reason: "Product not found"})
				continue
			}
			return nil, fmt.Errorf("failed to look up product: %w", err)
		}

		item, err := ordering.NewOrderItem(line.ProductID, quantity, line.Color, product.Price)
		if err != nil {
			var domainErr *shared.DomainError
			reason := "Invalid item"
			if errors.As(err, &domainErr) {
				reason = domainErr.Message
			}
			rejected = append(rejected, RejectedItem{ProductID: line.ProductID, Reason: reason})
			continue
		}
		order.AddItem(*item)
	}

	if !order.HasItems() {
		return &CreateOrderResult{Rejected: rejected}, shared.ErrNoValidItems
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, ordering.NewOrderCreatedEvent(order))

	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_code", order.Code),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int("accepted_items", len(order.Items)),
		zap.Int("rejected_items", len(rejected)),
	)

	return &CreateOrderResult{Order: order, Rejected: rejected}, nil
}

// GetAll returns every order, newest first.
func (s *OrderService) GetAll(ctx context.Context) ([]ordering.Order, error) {
	return s.orders.FindAll(ctx)
}

// GetByCustomer returns one customer's orders, newest first.
func (s *OrderService) GetByCustomer(ctx context.Context, customerID int64) ([]ordering.Order, error) {
	if customerID <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID must be a positive number")
	}
	return s.orders.FindByCustomer(ctx, customerID)
}

// Update applies a partial update. The active flag, when present, is applied
// first; if the order does not exist the whole request fails with NOT_FOUND
// and no item patch is attempted. Item patches are applied independently of
// each other: an empty patch is skipped, an unknown item affects zero rows,
// and neither fails the request.
func (s *OrderService) Update(ctx context.Context, cmd UpdateOrderCommand) (*UpdateOrderResult, error) {
	if cmd.OrderID <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order ID must be a positive number")
	}

	if cmd.IsActive != nil {
		if err := s.orders.SetActive(ctx, cmd.OrderID, *cmd.IsActive); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
			}
			return nil, err
		}
	}

	results := make([]ItemUpdateResult, 0, len(cmd.Items))
	changes := make([]ordering.ItemChange, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		// The broadcast echoes the request as received, skipped patches included
		changes = append(changes, ordering.ItemChange{
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
			Color:       item.Color,
		})

		patch := ordering.ItemPatch{
			Quantity: item.Quantity,
			Color:    item.Color,
		}
		if patch.IsEmpty() {
			results = append(results, ItemUpdateResult{OrderItemID: item.OrderItemID, Skipped: true})
			continue
		}

		affected, err := s.orders.UpdateItem(ctx, cmd.OrderID, item.OrderItemID, patch)
		if err != nil {
			return nil, err
		}
		results = append(results, ItemUpdateResult{OrderItemID: item.OrderItemID, Affected: affected})
	}

	s.publish(ctx, ordering.NewOrderUpdatedEvent(cmd.OrderID, cmd.IsActive, changes))

	s.logger.Info("order updated",
		zap.Int64("order_id", cmd.OrderID),
		zap.Int("item_patches", len(cmd.Items)),
	)

	return &UpdateOrderResult{
		OrderID:  cmd.OrderID,
		IsActive: cmd.IsActive,
		Items:    results,
	}, nil
}

// Delete removes an order and its items. Returns NOT_FOUND when the order
// does not exist.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Order ID must be a positive number")
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return err
	}

	s.publish(ctx, ordering.NewOrderDeletedEvent(orderID))

	s.logger.Info("order deleted", zap.Int64("order_id", orderID))
	return nil
}

// publish sends an event without letting broadcast problems surface to the caller.
func (s *OrderService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
