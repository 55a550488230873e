package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastrolink/mesa-api/internal/domain/enum"
	infraRepo "github.com/gastrolink/mesa-api/internal/infrastructure/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/catalog"
)

type orderFixture struct {
	ctx       context.Context
	svc       *OrderService
	orderRepo *fakeOrderRepo
	waiterID  uuid.UUID
	products  []catalog.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	products := []catalog.Product{
		{ID: uuid.New(), Name: "Margherita", Price: dec("10.00")},
		{ID: uuid.New(), Name: "Lemonade", Price: dec("7.50")},
	}
	orderRepo := newFakeOrderRepo()
	svc := NewOrderService(orderRepo, &fakeOrderItemRepo{orders: orderRepo}, catalog.NewStaticCatalog(products))
	return &orderFixture{
		ctx:       infraRepo.WithEstablishment(context.Background(), uuid.New()),
		svc:       svc,
		orderRepo: orderRepo,
		waiterID:  uuid.New(),
		products:  products,
	}
}

func (f *orderFixture) createOrder(t *testing.T) *orderCreated {
	t.Helper()
	order, err := f.svc.CreateOrder(f.ctx, f.waiterID, &CreateOrderInput{
		Fulfillment: enum.FulfillmentDineIn,
		DiscountPct: dec("10"),
		Items: []OrderItemInput{
			{ProductID: f.products[0].ID, Quantity: 2},
			{ProductID: f.products[1].ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	return &orderCreated{order.ID}
}

type orderCreated struct {
	id uuid.UUID
}

func TestCreateOrder_FreezesCatalogPrices(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.CreateOrder(f.ctx, f.waiterID, &CreateOrderInput{
		Fulfillment: enum.FulfillmentDineIn,
		DiscountPct: dec("10"),
		Items: []OrderItemInput{
			{ProductID: f.products[0].ID, Quantity: 2},
			{ProductID: f.products[1].ID, Quantity: 1, Note: "no ice"},
		},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Margherita", order.Items[0].Name)
	assert.True(t, order.Items[0].UnitPrice.Equal(dec("10.00")))
	assert.Equal(t, "no ice", order.Items[1].Note)
	assert.Equal(t, enum.OrderStateOpen, order.State)

	assert.True(t, order.GrossSubtotal().Equal(dec("27.50")))
	assert.True(t, order.NetPayable().Equal(dec("24.75")))
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateOrder(f.ctx, f.waiterID, &CreateOrderInput{
		Items: []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestCreateOrder_DeliveryRequiresContact(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateOrder(f.ctx, f.waiterID, &CreateOrderInput{
		Fulfillment: enum.FulfillmentDelivery,
		Items:       []OrderItemInput{{ProductID: f.products[0].ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestAddItem_RejectedAfterKitchenDone(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	order, err := f.svc.GetOrder(f.ctx, created.id)
	require.NoError(t, err)
	for _, item := range order.Items {
		_, err := f.svc.SetItemKitchenState(f.ctx, created.id, item.ID, enum.KitchenStateReady)
		require.NoError(t, err)
	}

	_, err = f.svc.AddItem(f.ctx, created.id, &OrderItemInput{ProductID: f.products[0].ID, Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrOrderState)
}

func TestKitchenProgress_DrivesOrderState(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	order, err := f.svc.GetOrder(f.ctx, created.id)
	require.NoError(t, err)

	order, err = f.svc.SetItemKitchenState(f.ctx, created.id, order.Items[0].ID, enum.KitchenStatePreparing)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateInPreparation, order.State)

	for _, item := range order.Items {
		order, err = f.svc.SetItemKitchenState(f.ctx, created.id, item.ID, enum.KitchenStateReady)
		require.NoError(t, err)
	}
	assert.Equal(t, enum.OrderStateReady, order.State)
}

func TestKitchenState_CannotMoveBackwards(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	order, err := f.svc.GetOrder(f.ctx, created.id)
	require.NoError(t, err)
	itemID := order.Items[0].ID

	_, err = f.svc.SetItemKitchenState(f.ctx, created.id, itemID, enum.KitchenStateReady)
	require.NoError(t, err)
	_, err = f.svc.SetItemKitchenState(f.ctx, created.id, itemID, enum.KitchenStatePreparing)
	assert.ErrorIs(t, err, apperror.ErrOrderState)
}

func TestCloseOrder_RequiresAllItemsReady(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	_, err := f.svc.CloseOrder(f.ctx, created.id)
	assert.ErrorIs(t, err, apperror.ErrOrderState)

	order, err := f.svc.GetOrder(f.ctx, created.id)
	require.NoError(t, err)
	for _, item := range order.Items {
		_, err := f.svc.SetItemKitchenState(f.ctx, created.id, item.ID, enum.KitchenStateReady)
		require.NoError(t, err)
	}

	closed, err := f.svc.CloseOrder(f.ctx, created.id)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateClosed, closed.State)
	assert.NotNil(t, closed.ClosedAt)
}

func TestCancelOrder_FromOpen(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	order, err := f.svc.CancelOrder(f.ctx, created.id)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateCancelled, order.State)

	// Terminal: a second cancel is rejected.
	_, err = f.svc.CancelOrder(f.ctx, created.id)
	assert.ErrorIs(t, err, apperror.ErrOrderState)
}

func TestCancelOrder_RejectedAfterMoneyApplied(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	stored, err := f.orderRepo.GetByID(f.ctx, created.id)
	require.NoError(t, err)
	stored.AppliedTotal = dec("5.00")
	require.NoError(t, f.orderRepo.Update(f.ctx, stored))

	_, err = f.svc.CancelOrder(f.ctx, created.id)
	assert.ErrorIs(t, err, apperror.ErrOrderState)
}

func TestSetDiscount_FrozenAfterInvoicesApplied(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	order, err := f.svc.SetDiscount(f.ctx, created.id, dec("20"))
	require.NoError(t, err)
	assert.True(t, order.DiscountPct.Equal(dec("20")))

	stored, err := f.orderRepo.GetByID(f.ctx, created.id)
	require.NoError(t, err)
	stored.AppliedTotal = dec("5.00")
	require.NoError(t, f.orderRepo.Update(f.ctx, stored))

	_, err = f.svc.SetDiscount(f.ctx, created.id, dec("30"))
	assert.ErrorIs(t, err, apperror.ErrOrderState)
}

func TestRemoveItem_WhileMutable(t *testing.T) {
	f := newOrderFixture(t)
	created := f.createOrder(t)

	order, err := f.svc.GetOrder(f.ctx, created.id)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	require.NoError(t, f.svc.RemoveItem(f.ctx, created.id, order.Items[0].ID))

	order, err = f.svc.GetOrder(f.ctx, created.id)
	require.NoError(t, err)
	assert.Len(t, order.Items, 1)
}
