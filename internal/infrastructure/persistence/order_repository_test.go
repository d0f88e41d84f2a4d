package persistence

import (
	"context"
	"testing"

	"github.com/didikala/backend/internal/domain/ordering"
	"github.com/didikala/backend/internal/domain/shared"
	"github.com/didikala/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.ProductModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
	))
	return db
}

func newTestOrder(t *testing.T, customerID int64, date, hour string, prices ...string) *ordering.Order {
	t.Helper()

	order, err := ordering.NewOrder("code-"+date+"-"+hour, customerID, date, hour)
	require.NoError(t, err)
	for i, price := range prices {
		item, err := ordering.NewOrderItem(int64(100+i), 2, "red", decimal.RequireFromString(price))
		require.NoError(t, err)
		order.AddItem(*item)
	}
	return order
}

func TestCreateAndFindByID(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newTestOrder(t, 7, "2026-08-20", "14:30:00", "129.99", "15.50")
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)
	require.NotZero(t, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Code, found.Code)
	assert.Equal(t, int64(7), found.CustomerID)
	assert.Equal(t, "2026-08-20", found.Date)
	assert.Equal(t, "14:30:00", found.Hour)
	assert.True(t, found.IsActive)
	require.Len(t, found.Items, 2)
	assert.True(t, found.Items[0].Price.Equal(decimal.RequireFromString("129.99")))
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Equal(t, "red", found.Items[0].Color)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFindAllNewestFirst(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	oldest := newTestOrder(t, 1, "2026-08-19", "09:00:00", "10.00")
	evening := newTestOrder(t, 1, "2026-08-20", "21:00:00", "20.00")
	morning := newTestOrder(t, 2, "2026-08-20", "08:00:00")
	require.NoError(t, repo.Create(ctx, oldest))
	require.NoError(t, repo.Create(ctx, evening))
	require.NoError(t, repo.Create(ctx, morning))

	orders, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, evening.ID, orders[0].ID)
	assert.Equal(t, morning.ID, orders[1].ID)
	assert.Equal(t, oldest.ID, orders[2].ID)

	// Orders without items still appear, with an empty item list
	assert.Empty(t, orders[1].Items)
	assert.Len(t, orders[0].Items, 1)
}

func TestFindByCustomer(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	mine := newTestOrder(t, 5, "2026-08-20", "10:00:00", "10.00")
	other := newTestOrder(t, 6, "2026-08-20", "11:00:00", "20.00")
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, other))

	orders, err := repo.FindByCustomer(ctx, 5)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	orders, err = repo.FindByCustomer(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSetActive(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newTestOrder(t, 1, "2026-08-20", "10:00:00", "10.00")
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.SetActive(ctx, order.ID, false))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestSetActiveNotFound(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))

	err := repo.SetActive(context.Background(), 999, false)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newTestOrder(t, 1, "2026-08-20", "10:00:00", "10.00")
	require.NoError(t, repo.Create(ctx, order))
	itemID := order.Items[0].ID

	quantity := 9
	color := "blue"
	affected, err := repo.UpdateItem(ctx, order.ID, itemID, ordering.ItemPatch{
		Quantity: &quantity,
		Color:    &color,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 9, found.Items[0].Quantity)
	assert.Equal(t, "blue", found.Items[0].Color)
	// Price is a snapshot and never changes through item updates
	assert.True(t, found.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
}

func TestUpdateItemUnknownItem(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newTestOrder(t, 1, "2026-08-20", "10:00:00", "10.00")
	require.NoError(t, repo.Create(ctx, order))

	color := "blue"
	affected, err := repo.UpdateItem(ctx, order.ID, 999, ordering.ItemPatch{Color: &color})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestUpdateItemEmptyPatch(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newTestOrder(t, 1, "2026-08-20", "10:00:00", "10.00")
	require.NoError(t, repo.Create(ctx, order))

	affected, err := repo.UpdateItem(ctx, order.ID, order.Items[0].ID, ordering.ItemPatch{})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, 1, "2026-08-20", "10:00:00", "10.00", "20.00")
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.Delete(ctx, order.ID))

	_, err := repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItemModel{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestDeleteNotFound(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))

	err := repo.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.UserModel{Username: "ali", Email: "ali@example.com"}).Error)

	exists, err := repo.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, exists)

	user, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ali", user.Username)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	price := decimal.RequireFromString("999.00")
	require.NoError(t, db.Create(&models.ProductModel{Name: "keyboard", Price: price}).Error)

	product, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "keyboard", product.Name)
	assert.True(t, product.Price.Equal(price))

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
