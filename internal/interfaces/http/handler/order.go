package handler

import (
	"errors"
	"net/http"
	"strconv"

	appordering "github.com/didikala/backend/internal/application/ordering"
	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/didikala/backend/internal/interfaces/http/dto"
	"github.com/didikala/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	service *appordering.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *appordering.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrderRequest is the request body for creating an order.
// Item fields are validated per line by the service so an invalid line is
// reported instead of failing the whole request.
type CreateOrderRequest struct {
	CustomerID int64                    `json:"customerID" binding:"required,gt=0"`
	Date       string                   `json:"date" binding:"required,datetime=2006-01-02"`
	Hour       string                   `json:"hour" binding:"required,datetime=15:04:05"`
	Items      []CreateOrderItemRequest `json:"items" binding:"required,min=1"`
}

// CreateOrderItemRequest is one requested order line.
// Quantity defaults to one unit when omitted.
type CreateOrderItemRequest struct {
	ProductID int64  `json:"productID"`
	Quantity  *int   `json:"quantity"`
	Color     string `json:"color"`
}

// OrderItemResponse is the wire shape of an order line
type OrderItemResponse struct {
	OrderItemID int64   `json:"orderItemID"`
	ProductID   int64   `json:"productID"`
	Quantity    int     `json:"quantity"`
	Color       string  `json:"color"`
	Price       float64 `json:"price"`
}

// OrderResponse is the wire shape of an order
type OrderResponse struct {
	OrderID    int64               `json:"orderID"`
	OrderCode  string              `json:"orderCode"`
	CustomerID int64               `json:"customerID"`
	Date       string              `json:"date"`
	Hour       string              `json:"hour"`
	IsActive   bool                `json:"isActive"`
	Items      []OrderItemResponse `json:"items"`
}

// CreateOrderResponse is the order plus the per-item rejection report
type CreateOrderResponse struct {
	OrderResponse
	Rejected []appordering.RejectedItem `json:"rejected"`
}

// UpdateOrderItemRequest is a partial update for one order line
type UpdateOrderItemRequest struct {
	OrderItemID int64   `json:"orderItemID" binding:"required,gt=0"`
	Quantity    *int    `json:"quantity" binding:"omitempty,gt=0"`
	Color       *string `json:"color"`
}

// UpdateOrderRequest is the request body for a partial order update
type UpdateOrderRequest struct {
	IsActive *bool                    `json:"isActive"`
	Items    []UpdateOrderItemRequest `json:"items" binding:"omitempty,dive"`
}

// DeleteOrderResponse acknowledges a delete
type DeleteOrderResponse struct {
	OrderID int64 `json:"orderID"`
	Deleted bool  `json:"deleted"`
}

func toOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Color:       item.Color,
			Price:       item.Price.InexactFloat64(),
		}
	}
	return OrderResponse{
		OrderID:    order.ID,
		OrderCode:  order.Code,
		CustomerID: order.CustomerID,
		Date:       order.Date,
		Hour:       order.Hour,
		IsActive:   order.IsActive,
		Items:      items,
	}
}

func toOrderResponses(orders []ordering.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = toOrderResponse(&orders[i])
	}
	return responses
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	cmd := appordering.CreateOrderCommand{
		CustomerID: req.CustomerID,
		Date:       req.Date,
		Hour:       req.Hour,
		Items:      make([]appordering.CreateOrderItemCommand, len(req.Items)),
	}
	for i, item := range req.Items {
		cmd.Items[i] = appordering.CreateOrderItemCommand{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Color:     item.Color,
		}
	}

	result, err := h.service.Create(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, shared.ErrNoValidItems) && result != nil {
			// Nothing was written; report why every line was turned away
			c.JSON(http.StatusBadRequest, dto.Response{
				Success: false,
				Data:    gin.H{"rejected": result.Rejected},
				Error: &dto.ErrorInfo{
					Code:      dto.ErrCodeNoValidItems,
					Message:   shared.ErrNoValidItems.Message,
					RequestID: getRequestID(c),
				},
			})
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, CreateOrderResponse{
		OrderResponse: toOrderResponse(result.Order),
		Rejected:      result.Rejected,
	})
}

// GetAll handles GET /api/v1/orders
func (h *OrderHandler) GetAll(c *gin.Context) {
	orders, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toOrderResponses(orders))
}

// GetByCustomer handles GET /api/v1/orders/user/:customerID.
// Customers can only read their own orders.
func (h *OrderHandler) GetByCustomer(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("customerID"), 10, 64)
	if err != nil || customerID <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Customer ID must be a positive number")
		return
	}

	authenticatedID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if authenticatedID != customerID {
		h.Forbidden(c, "You can only access your own orders")
		return
	}

	orders, err := h.service.GetByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toOrderResponses(orders))
}

// Update handles PUT /api/v1/orders/:orderID
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Order ID must be a positive number")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	cmd := appordering.UpdateOrderCommand{
		OrderID:  orderID,
		IsActive: req.IsActive,
		Items:    make([]appordering.UpdateOrderItemCommand, len(req.Items)),
	}
	for i, item := range req.Items {
		cmd.Items[i] = appordering.UpdateOrderItemCommand{
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
			Color:       item.Color,
		}
	}

	result, err := h.service.Update(c.Request.Context(), cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete handles DELETE /api/v1/orders/:orderID
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Order ID must be a positive number")
		return
	}

	if err := h.service.Delete(c.Request.Context(), orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, DeleteOrderResponse{OrderID: orderID, Deleted: true})
}
