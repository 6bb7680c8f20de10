package orders

import (
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), client, NewStockRestorer(), logg)
	require.NoError(t, err)
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     "Linen Shirt " + uuid.NewString()[:8],
		Slug:     "linen-shirt-" + uuid.NewString()[:8],
		Price:    decimal.RequireFromString("25"),
		Stock:    stock,
		Images:   []string{},
		Colors:   []string{},
		Sizes:    []string{},
		IsActive: true,
	}
	require.NoError(t, conn.Create(p).Error)
	return p
}

func seedOrder(t *testing.T, conn *gorm.DB, source enums.OrderSource, status enums.OrderStatus, items ...models.OrderItem) *models.Order {
	t.Helper()
	number, err := AssignNumber(context.Background(), NewRepository(conn))
	require.NoError(t, err)
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	order := &models.Order{
		OrderNumber:     number,
		Source:          source,
		Status:          status,
		CustomerName:    "Maria Lopez",
		CustomerPhone:   "+15551234567",
		ShippingAddress: "12 Main St",
		City:            "Springfield",
		Subtotal:        subtotal,
		ShippingFee:     decimal.Zero,
		Total:           subtotal,
		Items:           items,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func line(p *models.Product, qty int) models.OrderItem {
	id := p.ID
	return models.OrderItem{
		ProductID:   &id,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    qty,
		LineTotal:   p.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^SF-[A-Z2-9]{8}$`)
	for i := 0; i < 50; i++ {
		number, err := NewOrderNumber()
		require.NoError(t, err)
		assert.Regexp(t, pattern, number)
	}
}

func TestGetPreloadsItems(t *testing.T) {
	svc, conn := newService(t)
	p := seedProduct(t, conn, 5)
	order := seedOrder(t, conn, enums.OrderSourceStorefront, enums.OrderStatusPending, line(p, 2))

	got, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("50")))

	_, err = svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersAndPages(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	p := seedProduct(t, conn, 50)
	for i := 0; i < 3; i++ {
		seedOrder(t, conn, enums.OrderSourceStorefront, enums.OrderStatusPending, line(p, 1))
	}
	landing := seedOrder(t, conn, enums.OrderSourceLanding, enums.OrderStatusConfirmed, line(p, 1))

	pending := enums.OrderStatusPending
	page, err := svc.List(ctx, ListInput{Status: &pending, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.List(ctx, ListInput{Status: &pending, Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, next.Items, 1)
	assert.Empty(t, next.NextCursor)

	source := enums.OrderSourceLanding
	page, err = svc.List(ctx, ListInput{Source: &source})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, landing.ID, page.Items[0].ID)

	page, err = svc.List(ctx, ListInput{Search: landing.OrderNumber[3:]})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	bogus := enums.OrderStatus("lost")
	_, err = svc.List(ctx, ListInput{Status: &bogus})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		from enums.OrderStatus
		to   enums.OrderStatus
		ok   bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPending, enums.OrderStatusShipped, false},
		{enums.OrderStatusConfirmed, enums.OrderStatusShipped, true},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled, false},
		{enums.OrderStatusDelivered, enums.OrderStatusPending, false},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			svc, conn := newService(t)
			p := seedProduct(t, conn, 5)
			order := seedOrder(t, conn, enums.OrderSourceStorefront, tc.from, line(p, 1))

			got, err := svc.UpdateStatus(context.Background(), order.ID, tc.to)
			if !tc.ok {
				assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, got.Status)
		})
	}
}

func TestCancelRestoresStock(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	shirt := seedProduct(t, conn, 3)
	hat := seedProduct(t, conn, 0)
	order := seedOrder(t, conn, enums.OrderSourceStorefront, enums.OrderStatusConfirmed, line(shirt, 2), line(hat, 4))

	_, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, 5, stockOf(t, conn, shirt.ID))
	assert.Equal(t, 4, stockOf(t, conn, hat.ID))

	again, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, again.Status)
	assert.Equal(t, 5, stockOf(t, conn, shirt.ID), "repeating cancel must not restore twice")
	assert.Equal(t, 4, stockOf(t, conn, hat.ID), "repeating cancel must not restore twice")
}

// stockOf reads into a fresh struct so gorm builds the lookup from id alone.
func stockOf(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", id).Error)
	return product.Stock
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "lost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusConfirmed)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
