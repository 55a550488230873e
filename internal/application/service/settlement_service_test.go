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
	"github.com/gastrolink/mesa-api/pkg/payments"
)

type settlementFixture struct {
	ctx               context.Context
	svc               *SettlementService
	orderRepo         *fakeOrderRepo
	divisionRepo      *fakeDivisionRepo
	shiftRepo         *fakeShiftRepo
	invoiceRepo       *fakeInvoiceRepo
	establishmentRepo *fakeEstablishmentRepo
	shiftService      *CashShiftService
	establishmentID   uuid.UUID
	cashierID         uuid.UUID
}

func newSettlementFixture(t *testing.T, gateway payments.Gateway) *settlementFixture {
	t.Helper()

	orderRepo := newFakeOrderRepo()
	divisionRepo := &fakeDivisionRepo{}
	shiftRepo := newFakeShiftRepo()
	invoiceRepo := newFakeInvoiceRepo()
	establishmentRepo := newFakeEstablishmentRepo()
	uow := &fakeUnitOfWork{
		orders:    orderRepo,
		invoices:  invoiceRepo,
		divisions: divisionRepo,
		shifts:    shiftRepo,
	}

	establishment := &entity.Establishment{Name: "La Mesa", Slug: "la-mesa"}
	require.NoError(t, establishmentRepo.Create(context.Background(), establishment))

	invoiceService := NewInvoiceService(invoiceRepo, orderRepo, uow, documents.NewNullRenderer())
	shiftService := NewCashShiftService(shiftRepo)

	return &settlementFixture{
		ctx: infraRepo.WithEstablishment(context.Background(), establishment.ID),
		svc: NewSettlementService(
			orderRepo, divisionRepo, shiftRepo, establishmentRepo,
			invoiceService, shiftService, gateway, uow, 3,
		),
		orderRepo:         orderRepo,
		divisionRepo:      divisionRepo,
		shiftRepo:         shiftRepo,
		invoiceRepo:       invoiceRepo,
		establishmentRepo: establishmentRepo,
		shiftService:      shiftService,
		establishmentID:   establishment.ID,
		cashierID:         uuid.New(),
	}
}

// closedOrder seeds the $10x2 + $7.50 order at 10% discount: net $24.75.
func (f *settlementFixture) closedOrder(t *testing.T) *entity.Order {
	t.Helper()
	order := &entity.Order{
		EstablishmentID: f.establishmentID,
		State:           enum.OrderStateClosed,
		DiscountPct:     dec("10"),
		Version:         1,
		Items: []entity.OrderItem{
			{ProductID: uuid.New(), Name: "Margherita", Quantity: 2, UnitPrice: dec("10.00"), KitchenState: enum.KitchenStateReady},
			{ProductID: uuid.New(), Name: "Lemonade", Quantity: 1, UnitPrice: dec("7.50"), KitchenState: enum.KitchenStateReady},
		},
	}
	require.NoError(t, f.orderRepo.Create(f.ctx, order))
	return order
}

func (f *settlementFixture) openShift(t *testing.T) *entity.CashShift {
	t.Helper()
	shift, err := f.shiftService.OpenShift(f.ctx, f.cashierID, entity.DenominationMap{"100": 5}, "")
	require.NoError(t, err)
	return shift
}

func TestSettleOrder_SplitCashAndElectronic(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)
	shift := f.openShift(t)

	override := dec("10.00")
	result, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{
			Spec:          DivisionSpec{OverrideAmount: &override},
			PayerName:     "Ana",
			Method:        enum.PaymentMethodCash,
			Denominations: entity.DenominationMap{"10": 1},
		},
		{
			Spec:       DivisionSpec{Proportional: true},
			PayerName:  "Berta",
			Method:     enum.PaymentMethodElectronic,
			AccountRef: "tok_123",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, enum.OrderStatePaid, result.Order.State)
	assert.True(t, result.Order.AppliedTotal.Equal(dec("24.75")))

	require.Len(t, result.Divisions, 2)
	assert.True(t, result.Divisions[0].BaseAmount.Equal(dec("10.00")))
	assert.True(t, result.Divisions[1].BaseAmount.Equal(dec("14.75")))
	for _, d := range result.Divisions {
		assert.NotNil(t, d.InvoiceID, "each division is frozen onto its invoice")
	}

	require.Len(t, result.Invoices, 2)
	for _, inv := range result.Invoices {
		stored, err := f.invoiceRepo.GetByID(f.ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, enum.SubmissionStateSent, stored.SubmissionState)
		assert.NotNil(t, stored.DocumentRef)
	}

	stored, err := f.shiftRepo.GetByID(f.ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, stored.CashSales.Equal(dec("10.00")))
	assert.True(t, stored.ElectronicSales.Equal(dec("14.75")))
	assert.True(t, stored.NetSales.Equal(dec("24.75")))

	movements, err := f.shiftRepo.GetMovements(f.ctx, shift.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestSettleOrder_TipOnTopOfDiscountedBase(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)
	shift := f.openShift(t)

	result, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{
			Spec:          DivisionSpec{Proportional: true, TipEnabled: true, TipPct: dec("10")},
			Method:        enum.PaymentMethodCash,
			Denominations: entity.DenominationMap{"20": 1, "10": 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Divisions, 1)
	assert.True(t, result.Divisions[0].BaseAmount.Equal(dec("24.75")))
	assert.True(t, result.Divisions[0].TipAmount.Equal(dec("2.48")))
	assert.True(t, result.Divisions[0].TotalAmount.Equal(dec("27.23")))

	// Coverage counts the base only; the tip lands on the invoice total
	// and the shift's tip bucket.
	assert.True(t, result.Order.AppliedTotal.Equal(dec("24.75")))
	assert.Equal(t, enum.OrderStatePaid, result.Order.State)
	assert.True(t, result.Invoices[0].Total.Equal(dec("27.23")))

	stored, err := f.shiftRepo.GetByID(f.ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, stored.CashSales.Equal(dec("27.23")))
	assert.True(t, stored.Tips.Equal(dec("2.48")))
	assert.True(t, stored.NetSales.Equal(dec("24.75")))
}

func TestSettleOrder_PartialOverrideThenRemainder(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)
	f.openShift(t)

	override := dec("10.00")
	result, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{
			Spec:          DivisionSpec{OverrideAmount: &override},
			Method:        enum.PaymentMethodCash,
			Denominations: entity.DenominationMap{"10": 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateClosed, result.Order.State)
	assert.True(t, result.Order.AppliedTotal.Equal(dec("10.00")))
	assert.Equal(t, enum.InvoiceKindPartial, result.Invoices[0].Kind)

	result, err = f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{
			Spec:          DivisionSpec{Proportional: true},
			Method:        enum.PaymentMethodCash,
			Denominations: entity.DenominationMap{"10": 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatePaid, result.Order.State)
	assert.True(t, result.Order.AppliedTotal.Equal(dec("24.75")))
	assert.True(t, result.Divisions[0].BaseAmount.Equal(dec("14.75")))
}

func TestSettleOrder_DeclinedChargeLeavesNoTrace(t *testing.T) {
	f := newSettlementFixture(t, &decliningGateway{})
	order := f.closedOrder(t)
	shift := f.openShift(t)

	_, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{
			Spec:       DivisionSpec{Proportional: true},
			Method:     enum.PaymentMethodElectronic,
			AccountRef: "tok_declined",
		},
	})
	assert.ErrorIs(t, err, apperror.ErrExternalPayment)

	stored, err := f.orderRepo.GetByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateClosed, stored.State)
	assert.True(t, stored.AppliedTotal.IsZero())

	divisions, err := f.divisionRepo.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, divisions)

	invoices, _, err := f.invoiceRepo.List(f.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	shiftStored, err := f.shiftRepo.GetByID(f.ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, shiftStored.CashSales.IsZero())
	assert.True(t, shiftStored.ElectronicSales.IsZero())
}

func TestSettleOrder_RequiresOpenShift(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)

	_, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{Spec: DivisionSpec{Proportional: true}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"25": 1}},
	})
	assert.ErrorIs(t, err, apperror.ErrNoOpenShift)
}

func TestSettleOrder_EarlySettlementGatedBySettings(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	f.openShift(t)

	order := &entity.Order{
		EstablishmentID: f.establishmentID,
		State:           enum.OrderStateOpen,
		Version:         1,
		Items: []entity.OrderItem{
			{ProductID: uuid.New(), Name: "Espresso", Quantity: 1, UnitPrice: dec("3.00")},
		},
	}
	require.NoError(t, f.orderRepo.Create(f.ctx, order))

	inputs := []SettleDivisionInput{
		{Spec: DivisionSpec{Proportional: true}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"3": 1}},
	}

	_, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, inputs)
	assert.ErrorIs(t, err, apperror.ErrOrderState)

	establishment, err := f.establishmentRepo.GetByID(f.ctx, f.establishmentID)
	require.NoError(t, err)
	establishment.Settings.AllowEarlySettlement = true
	require.NoError(t, f.establishmentRepo.Update(f.ctx, establishment))

	result, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, inputs)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatePaid, result.Order.State)
	assert.NotNil(t, result.Order.ClosedAt)
}

func TestSettleOrder_RetriesLostOptimisticWrites(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)
	f.openShift(t)
	f.orderRepo.failConflicts = 1

	result, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{Spec: DivisionSpec{Proportional: true}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"25": 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatePaid, result.Order.State)

	// The first attempt rolled back; only the winning attempt's rows remain.
	divisions, err := f.divisionRepo.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, divisions, 1)
	invoices, err := f.invoiceRepo.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestSettleOrder_RetryConfirmsChargeOnlyOnce(t *testing.T) {
	gateway := &countingGateway{}
	f := newSettlementFixture(t, gateway)
	order := f.closedOrder(t)
	f.openShift(t)
	f.orderRepo.failConflicts = 1

	result, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{Spec: DivisionSpec{Proportional: true}, Method: enum.PaymentMethodElectronic, AccountRef: "tok_once"},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatePaid, result.Order.State)

	// The lost optimistic write retried only persistence; the payer was
	// charged a single time.
	assert.Equal(t, 1, gateway.confirms)
}

func TestSettleOrder_FailedDivisionSetLeavesNoResidue(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)
	shift := f.openShift(t)

	// Two overrides summing past the payable: the first invoice applies,
	// the second over-invoices mid-set, and the whole settlement unwinds.
	first, second := dec("20.00"), dec("10.00")
	_, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{Spec: DivisionSpec{OverrideAmount: &first}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"20": 1}},
		{Spec: DivisionSpec{OverrideAmount: &second}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"10": 1}},
	})
	assert.ErrorIs(t, err, apperror.ErrOverInvoicing)

	stored, err := f.orderRepo.GetByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStateClosed, stored.State)
	assert.True(t, stored.AppliedTotal.IsZero())

	divisions, err := f.divisionRepo.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, divisions)
	invoices, err := f.invoiceRepo.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	shiftStored, err := f.shiftRepo.GetByID(f.ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, shiftStored.CashSales.IsZero())
	movements, err := f.shiftRepo.GetMovements(f.ctx, shift.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestSettleOrder_GivesUpAfterBoundedRetries(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)
	f.openShift(t)
	f.orderRepo.failConflicts = 100

	_, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{Spec: DivisionSpec{Proportional: true}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"25": 1}},
	})
	assert.ErrorIs(t, err, apperror.ErrConcurrencyConflict)
}

func TestSettleOrder_PaidOrderRejected(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	order := f.closedOrder(t)
	f.openShift(t)

	inputs := []SettleDivisionInput{
		{Spec: DivisionSpec{Proportional: true}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"25": 1}},
	}
	_, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, inputs)
	require.NoError(t, err)

	_, err = f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, inputs)
	assert.ErrorIs(t, err, apperror.ErrOrderState)
}

func TestCancelledOrder_LeavesNoSettlementResidue(t *testing.T) {
	f := newSettlementFixture(t, payments.NewApproveAllGateway())
	shift := f.openShift(t)

	order := &entity.Order{
		EstablishmentID: f.establishmentID,
		State:           enum.OrderStateCancelled,
		Version:         1,
		Items: []entity.OrderItem{
			{ProductID: uuid.New(), Name: "Flan", Quantity: 1, UnitPrice: dec("6.00")},
		},
	}
	require.NoError(t, f.orderRepo.Create(f.ctx, order))

	_, err := f.svc.SettleOrder(f.ctx, f.cashierID, order.ID, []SettleDivisionInput{
		{Spec: DivisionSpec{Proportional: true}, Method: enum.PaymentMethodCash, Denominations: entity.DenominationMap{"6": 1}},
	})
	assert.ErrorIs(t, err, apperror.ErrOrderState)

	divisions, err := f.divisionRepo.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, divisions)
	invoices, err := f.invoiceRepo.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, invoices)
	movements, err := f.shiftRepo.GetMovements(f.ctx, shift.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}
