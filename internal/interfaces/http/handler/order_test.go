package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	appordering "github.com/didikala/backend/internal/application/ordering"
	"github.com/didikala/backend/internal/domain/catalog"
	"github.com/didikala/backend/internal/domain/identity"
	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/didikala/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOrderStore is an in-memory ordering.OrderRepository for handler tests
type fakeOrderStore struct {
	orders map[int64]*ordering.Order
	nextID int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[int64]*ordering.Order), nextID: 1}
}

func (s *fakeOrderStore) Create(_ context.Context, order *ordering.Order) error {
	order.ID = s.nextID
	s.nextID++
	for i := range order.Items {
		order.Items[i].ID = s.nextID
		order.Items[i].OrderID = order.ID
		s.nextID++
	}
	copied := *order
	copied.Items = append([]ordering.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &copied
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id int64) (*ordering.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (s *fakeOrderStore) FindAll(_ context.Context) ([]ordering.Order, error) {
	orders := make([]ordering.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (s *fakeOrderStore) FindByCustomer(_ context.Context, customerID int64) ([]ordering.Order, error) {
	orders := make([]ordering.Order, 0)
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (s *fakeOrderStore) SetActive(_ context.Context, orderID int64, isActive bool) error {
	order, ok := s.orders[orderID]
	if !ok {
		return shared.ErrNotFound
	}
	order.IsActive = isActive
	return nil
}

func (s *fakeOrderStore) UpdateItem(_ context.Context, orderID, itemID int64, patch ordering.ItemPatch) (int64, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return 0, nil
	}
	for i := range order.Items {
		if order.Items[i].ID != itemID {
			continue
		}
		if patch.Quantity != nil {
			order.Items[i].Quantity = *patch.Quantity
		}
		if patch.Color != nil {
			order.Items[i].Color = *patch.Color
		}
		return 1, nil
	}
	return 0, nil
}

func (s *fakeOrderStore) Delete(_ context.Context, orderID int64) error {
	if _, ok := s.orders[orderID]; !ok {
		return shared.ErrNotFound
	}
	delete(s.orders, orderID)
	return nil
}

// fakeCatalog serves a fixed product set
type fakeCatalog struct {
	products map[int64]*catalog.Product
}

func (f *fakeCatalog) FindByID(_ context.Context, id int64) (*catalog.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

// fakeUsers knows a fixed user set
type fakeUsers struct {
	ids map[int64]bool
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*identity.User, error) {
	if !f.ids[id] {
		return nil, shared.ErrNotFound
	}
	return &identity.User{ID: id, Username: "user"}, nil
}

func (f *fakeUsers) Exists(_ context.Context, id int64) (bool, error) {
	return f.ids[id], nil
}

type recordedEvents struct {
	events []shared.DomainEvent
}

func (r *recordedEvents) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.events = append(r.events, events...)
	return nil
}

type handlerFixture struct {
	store     *fakeOrderStore
	publisher *recordedEvents
	router    *gin.Engine
}

// asUser injects JWT context values the way the auth middleware would
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID)
		c.Next()
	}
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	store := newFakeOrderStore()
	publisher := &recordedEvents{}
	service := appordering.NewOrderService(
		store,
		&fakeCatalog{products: map[int64]*catalog.Product{
			7: {ID: 7, Name: "phone", Price: decimal.RequireFromString("129.99")},
			8: {ID: 8, Name: "case", Price: decimal.RequireFromString("15.50")},
		}},
		&fakeUsers{ids: map[int64]bool{1: true, 2: true}},
		publisher,
		zap.NewNop(),
	)

	h := NewOrderHandler(service)
	router := gin.New()
	orders := router.Group("/api/v1/orders")
	orders.POST("", asUser("1"), h.Create)
	orders.GET("", h.GetAll)
	orders.GET("/user/:customerID", asUser("1"), h.GetByCustomer)
	orders.PUT("/:orderID", asUser("1"), h.Update)
	orders.DELETE("/:orderID", asUser("1"), h.Delete)

	return &handlerFixture{store: store, publisher: publisher, router: router}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateOrderEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customerID": 1,
		"date":       "2024-05-01",
		"hour":       "10:00:00",
		"items": []gin.H{
			{"productID": 7, "quantity": 2, "color": "red"},
			{"productID": 999, "color": "blue"},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool                `json:"success"`
		Data    CreateOrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.Data.OrderID)
	assert.NotEmpty(t, resp.Data.OrderCode)
	assert.Equal(t, int64(1), resp.Data.CustomerID)
	assert.Equal(t, "2024-05-01", resp.Data.Date)
	assert.Equal(t, "10:00:00", resp.Data.Hour)
	assert.True(t, resp.Data.IsActive)

	// Product 999 does not exist so only the first line is accepted
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, int64(7), resp.Data.Items[0].ProductID)
	assert.Equal(t, 2, resp.Data.Items[0].Quantity)
	assert.Equal(t, "red", resp.Data.Items[0].Color)
	assert.InDelta(t, 129.99, resp.Data.Items[0].Price, 0.001)

	require.Len(t, resp.Data.Rejected, 1)
	assert.Equal(t, int64(999), resp.Data.Rejected[0].ProductID)

	// Broadcast fires with the single-item order
	require.Len(t, f.publisher.events, 1)
	created, ok := f.publisher.events[0].(*ordering.OrderCreatedEvent)
	require.True(t, ok)
	assert.Len(t, created.Order.Items, 1)
}

func TestCreateOrderAllItemsInvalid(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customerID": 1,
		"date":       "2024-05-01",
		"hour":       "10:00:00",
		"items": []gin.H{
			{"productID": 999, "color": "blue"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NO_VALID_ITEMS")
	assert.Contains(t, w.Body.String(), "rejected")

	// Nothing persisted, nothing broadcast
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.publisher.events)
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customerID": 42,
		"date":       "2024-05-01",
		"hour":       "10:00:00",
		"items":      []gin.H{{"productID": 7, "color": "red"}},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderMalformedDate(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customerID": 1,
		"date":       "01-05-2024",
		"hour":       "10:00:00",
		"items":      []gin.H{{"productID": 7, "color": "red"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "date")
}

func TestGetAllOrdersEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	created := f.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customerID": 1,
		"date":       "2024-05-01",
		"hour":       "10:00:00",
		"items":      []gin.H{{"productID": 7, "color": "red"}},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	w := f.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestGetByCustomerForbiddenForOtherCustomer(t *testing.T) {
	f := newHandlerFixture(t)

	// Authenticated as user 1, asking for user 2's orders
	w := f.do(t, http.MethodGet, "/api/v1/orders/user/2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetByCustomerOwnOrders(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/orders/user/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateOrderEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	created := f.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customerID": 1,
		"date":       "2024-05-01",
		"hour":       "10:00:00",
		"items":      []gin.H{{"productID": 7, "quantity": 2, "color": "red"}},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var createResp struct {
		Data CreateOrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))
	orderID := createResp.Data.OrderID
	itemID := createResp.Data.Items[0].OrderItemID

	w := f.do(t, http.MethodPut, "/api/v1/orders/"+itoa(orderID), gin.H{
		"isActive": false,
		"items": []gin.H{
			{"orderItemID": itemID, "quantity": 3},
			{"orderItemID": 424242, "color": "blue"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data appordering.UpdateOrderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, int64(1), resp.Data.Items[0].Affected)
	assert.Zero(t, resp.Data.Items[1].Affected)

	// Quantity patched, color untouched
	stored := f.store.orders[orderID]
	assert.False(t, stored.IsActive)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	assert.Equal(t, "red", stored.Items[0].Color)
}

func TestUpdateOrderNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPut, "/api/v1/orders/999", gin.H{"isActive": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrderEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	created := f.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customerID": 1,
		"date":       "2024-05-01",
		"hour":       "10:00:00",
		"items":      []gin.H{{"productID": 7, "color": "red"}},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var createResp struct {
		Data CreateOrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))

	w := f.do(t, http.MethodDelete, "/api/v1/orders/"+itoa(createResp.Data.OrderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.store.orders)

	deleted, ok := f.publisher.events[len(f.publisher.events)-1].(*ordering.OrderDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, createResp.Data.OrderID, deleted.OrderID)
}

func TestDeleteOrderNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodDelete, "/api/v1/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
