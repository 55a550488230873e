package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	infraRepo "github.com/gastrolink/mesa-api/internal/infrastructure/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/documents"
)

type invoiceFixture struct {
	ctx         context.Context
	svc         *InvoiceService
	orderRepo   *fakeOrderRepo
	invoiceRepo *fakeInvoiceRepo
	cashierID   uuid.UUID
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	orderRepo := newFakeOrderRepo()
	invoiceRepo := newFakeInvoiceRepo()
	uow := &fakeUnitOfWork{orders: orderRepo, invoices: invoiceRepo}
	return &invoiceFixture{
		ctx:         infraRepo.WithEstablishment(context.Background(), uuid.New()),
		svc:         NewInvoiceService(invoiceRepo, orderRepo, uow, documents.NewNullRenderer()),
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		cashierID:   uuid.New(),
	}
}

// closedOrder seeds a Closed order with a single line totalling the amount.
func (f *invoiceFixture) closedOrder(t *testing.T, amount string) uuid.UUID {
	t.Helper()
	order := &entity.Order{
		State:       enum.OrderStateClosed,
		DiscountPct: dec("0"),
		Version:     1,
		Items: []entity.OrderItem{
			{ProductID: uuid.New(), Name: "Tasting menu", Quantity: 1, UnitPrice: dec(amount), KitchenState: enum.KitchenStateReady},
		},
	}
	require.NoError(t, f.orderRepo.Create(f.ctx, order))
	return order.ID
}

func (f *invoiceFixture) apply(orderID uuid.UUID, amount string) (*entity.Invoice, error) {
	return f.svc.ApplyInvoice(f.ctx, &ApplyInvoiceInput{
		CashierID: f.cashierID,
		Applications: []InvoiceApplicationInput{
			{OrderID: orderID, Amount: dec(amount)},
		},
	})
}

func TestApplyInvoice_PartialThenCompletingThenRejected(t *testing.T) {
	f := newInvoiceFixture(t)
	orderID := f.closedOrder(t, "100.00")

	// $60 of $100: partial, order stays Closed.
	first, err := f.apply(orderID, "60.00")
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceKindPartial, first.Kind)

	order, err := f.orderRepo.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateClosed, order.State)
	assert.True(t, order.AppliedTotal.Equal(dec("60.00")))

	// The remaining $40 completes settlement and flips the order to Paid.
	_, err = f.apply(orderID, "40.00")
	require.NoError(t, err)

	order, err = f.orderRepo.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatePaid, order.State)
	assert.True(t, order.AppliedTotal.Equal(dec("100.00")))

	// A third application has nothing left to cover.
	_, err = f.apply(orderID, "10.00")
	assert.ErrorIs(t, err, apperror.ErrOverInvoicing)
}

func TestApplyInvoice_FullCoverageInOneCallIsTotal(t *testing.T) {
	f := newInvoiceFixture(t)
	orderID := f.closedOrder(t, "100.00")

	invoice, err := f.apply(orderID, "100.00")
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceKindTotal, invoice.Kind)

	order, err := f.orderRepo.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatePaid, order.State)
}

func TestApplyInvoice_RejectsExceedingAmountOutright(t *testing.T) {
	f := newInvoiceFixture(t)
	orderID := f.closedOrder(t, "50.00")

	_, err := f.apply(orderID, "50.02")
	assert.ErrorIs(t, err, apperror.ErrOverInvoicing)

	// Nothing was recorded for the rejected invoice.
	invoices, err := f.svc.GetOrderInvoices(f.ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestApplyInvoice_RejectsSingleCentPastFullCoverage(t *testing.T) {
	f := newInvoiceFixture(t)
	orderID := f.closedOrder(t, "100.00")

	_, err := f.apply(orderID, "100.00")
	require.NoError(t, err)

	// The ceiling gives no tolerance: a cent past full coverage is still
	// over-invoicing, and the applied total stays at the payable.
	_, err = f.apply(orderID, "0.01")
	assert.ErrorIs(t, err, apperror.ErrOverInvoicing)

	order, err := f.orderRepo.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatePaid, order.State)
	assert.True(t, order.AppliedTotal.Equal(dec("100.00")))
}

func TestApplyInvoice_LostWriteUnwindsTheInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	orderID := f.closedOrder(t, "35.00")
	f.orderRepo.failConflicts = 1

	_, err := f.apply(orderID, "35.00")
	assert.ErrorIs(t, err, apperror.ErrConcurrencyConflict)

	// The invoice row created before the conflicting order write is gone.
	invoices, err := f.svc.GetOrderInvoices(f.ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	order, err := f.orderRepo.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateClosed, order.State)
	assert.True(t, order.AppliedTotal.IsZero())
}

func TestApplyInvoice_TipRidesOnTotalNotCoverage(t *testing.T) {
	f := newInvoiceFixture(t)
	orderID := f.closedOrder(t, "100.00")

	invoice, err := f.svc.ApplyInvoice(f.ctx, &ApplyInvoiceInput{
		CashierID: f.cashierID,
		Tip:       dec("10.00"),
		Applications: []InvoiceApplicationInput{
			{OrderID: orderID, Amount: dec("60.00")},
		},
	})
	require.NoError(t, err)
	assert.True(t, invoice.Subtotal.Equal(dec("60.00")))
	assert.True(t, invoice.Total.Equal(dec("70.00")))

	// Coverage moved by the subtotal only.
	order, err := f.orderRepo.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.True(t, order.AppliedTotal.Equal(dec("60.00")))
}

func TestApplyInvoice_MultipleOrdersAtomically(t *testing.T) {
	f := newInvoiceFixture(t)
	firstID := f.closedOrder(t, "30.00")
	secondID := f.closedOrder(t, "45.00")

	invoice, err := f.svc.ApplyInvoice(f.ctx, &ApplyInvoiceInput{
		CashierID: f.cashierID,
		Applications: []InvoiceApplicationInput{
			{OrderID: firstID, Amount: dec("30.00")},
			{OrderID: secondID, Amount: dec("45.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceKindTotal, invoice.Kind)
	assert.True(t, invoice.Subtotal.Equal(dec("75.00")))
	require.Len(t, invoice.Applications, 2)

	for _, id := range []uuid.UUID{firstID, secondID} {
		order, err := f.orderRepo.GetByID(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, enum.OrderStatePaid, order.State)
	}
}

func TestApplyInvoice_RejectsTerminalOrders(t *testing.T) {
	f := newInvoiceFixture(t)
	orderID := f.closedOrder(t, "20.00")

	order, err := f.orderRepo.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	order.State = enum.OrderStateCancelled
	require.NoError(t, f.orderRepo.Update(f.ctx, order))

	_, err = f.apply(orderID, "20.00")
	assert.ErrorIs(t, err, apperror.ErrOrderState)
}

func TestSubmitDocument_FailureRecordedAndRetried(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	invoiceRepo := newFakeInvoiceRepo()
	ctx := infraRepo.WithEstablishment(context.Background(), uuid.New())

	failing := NewInvoiceService(invoiceRepo, orderRepo, &fakeUnitOfWork{}, &failingRenderer{})

	order := &entity.Order{
		State:   enum.OrderStateClosed,
		Version: 1,
		Items:   []entity.OrderItem{{ProductID: uuid.New(), Name: "Soup", Quantity: 1, UnitPrice: dec("12.00")}},
	}
	require.NoError(t, orderRepo.Create(ctx, order))

	invoice, err := failing.ApplyInvoice(ctx, &ApplyInvoiceInput{
		CashierID:    uuid.New(),
		Applications: []InvoiceApplicationInput{{OrderID: order.ID, Amount: dec("12.00")}},
	})
	require.NoError(t, err)

	// The failed render marks the invoice, it does not fail the call.
	require.NoError(t, failing.SubmitDocument(ctx, invoice))
	stored, err := failing.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.SubmissionStateFailed, stored.SubmissionState)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, 1, stored.RetryCount)

	// Same store, working renderer: the retry pass sends it.
	working := NewInvoiceService(invoiceRepo, orderRepo, &fakeUnitOfWork{}, documents.NewNullRenderer())
	sent, err := working.RetryFailedSubmissions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	stored, err = working.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.SubmissionStateSent, stored.SubmissionState)
	assert.NotNil(t, stored.DocumentRef)
}
