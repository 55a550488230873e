package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/internal/domain/repository"
	infraRepo "github.com/gastrolink/mesa-api/internal/infrastructure/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/money"
)

// CashShiftService manages cash drawer sessions: open with a counted float,
// book sales and expenses against the running totals, close with a counted
// balance and reconcile the variance.
type CashShiftService struct {
	shiftRepo repository.CashShiftRepository
}

// NewCashShiftService creates a new cash shift service
func NewCashShiftService(shiftRepo repository.CashShiftRepository) *CashShiftService {
	return &CashShiftService{shiftRepo: shiftRepo}
}

// SaleAmounts breaks one settled division into the buckets the shift
// totals track. Amount is the money that actually moved (base plus tip).
type SaleAmounts struct {
	Amount   decimal.Decimal
	Method   enum.PaymentMethod
	Tip      decimal.Decimal
	Discount decimal.Decimal
	Net      decimal.Decimal
}

// OpenShift opens a drawer session for the cashier. The opening balance is
// derived from the counted denominations, never passed in directly.
func (s *CashShiftService) OpenShift(ctx context.Context, cashierID uuid.UUID, denominations entity.DenominationMap, notes string) (*entity.CashShift, error) {
	establishmentID, ok := infraRepo.GetEstablishmentID(ctx)
	if !ok {
		return nil, apperror.ErrForbidden
	}

	opening, err := denominations.Total()
	if err != nil {
		return nil, apperror.ErrInvalidDenomination
	}

	existing, err := s.shiftRepo.GetOpen(ctx, establishmentID, cashierID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrShiftAlreadyOpen
	}

	shift := &entity.CashShift{
		EstablishmentID:      establishmentID,
		CashierID:            cashierID,
		State:                enum.ShiftStateOpen,
		OpenedAt:             time.Now(),
		OpeningDenominations: denominations,
		OpeningBalance:       opening,
		CashSales:            decimal.Zero,
		ElectronicSales:      decimal.Zero,
		Expenses:             decimal.Zero,
		GrossSales:           decimal.Zero,
		Discounts:            decimal.Zero,
		Tips:                 decimal.Zero,
		NetSales:             decimal.Zero,
		Notes:                notes,
	}
	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// GetShift retrieves a shift with its movement ledger
func (s *CashShiftService) GetShift(ctx context.Context, id uuid.UUID) (*entity.CashShift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNotFoundError("Cash shift")
	}
	movements, err := s.shiftRepo.GetMovements(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	shift.Movements = movements
	return shift, nil
}

// GetOpenShift returns the cashier's open shift, or ErrNoOpenShift.
func (s *CashShiftService) GetOpenShift(ctx context.Context, cashierID uuid.UUID) (*entity.CashShift, error) {
	establishmentID, ok := infraRepo.GetEstablishmentID(ctx)
	if !ok {
		return nil, apperror.ErrForbidden
	}
	shift, err := s.shiftRepo.GetOpen(ctx, establishmentID, cashierID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.ErrNoOpenShift
	}
	return shift, nil
}

// ListShifts retrieves shifts with filtering and pagination
func (s *CashShiftService) ListShifts(ctx context.Context, params *repository.ShiftFilterParams) ([]entity.CashShift, int64, error) {
	return s.shiftRepo.List(ctx, params)
}

// RecordSale books one settled division onto the shift: bumps the cash or
// electronic total, the gross/discount/tip/net buckets, and appends an
// immutable sale movement referencing the invoice.
func (s *CashShiftService) RecordSale(ctx context.Context, shiftID uuid.UUID, sale *SaleAmounts, referenceID *uuid.UUID) error {
	deltas := entity.ShiftTotals{
		GrossSales: sale.Net.Add(sale.Discount),
		Discounts:  sale.Discount,
		Tips:       sale.Tip,
		NetSales:   sale.Net,
	}
	if sale.Method == enum.PaymentMethodCash {
		deltas.CashSales = sale.Amount
	} else {
		deltas.ElectronicSales = sale.Amount
	}
	if err := s.shiftRepo.IncrementTotals(ctx, shiftID, deltas); err != nil {
		return err
	}

	method := sale.Method
	return s.shiftRepo.AppendMovement(ctx, &entity.CashMovement{
		ShiftID:     shiftID,
		Kind:        entity.MovementKindSale,
		Method:      &method,
		Amount:      sale.Amount,
		ReferenceID: referenceID,
	})
}

// RecordExpense books a cash outflow against the cashier's open shift.
func (s *CashShiftService) RecordExpense(ctx context.Context, cashierID uuid.UUID, amount decimal.Decimal, description string) (*entity.CashMovement, error) {
	if amount.Sign() <= 0 {
		return nil, apperror.NewBadRequestError("Expense amount must be positive")
	}
	shift, err := s.GetOpenShift(ctx, cashierID)
	if err != nil {
		return nil, err
	}

	if err := s.shiftRepo.IncrementTotals(ctx, shift.ID, entity.ShiftTotals{Expenses: amount}); err != nil {
		return nil, err
	}

	movement := &entity.CashMovement{
		ShiftID:     shift.ID,
		Kind:        entity.MovementKindExpense,
		Amount:      amount,
		Description: description,
	}
	if err := s.shiftRepo.AppendMovement(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// CloseShift counts the drawer down and freezes the shift. The expected
// balance is opening + cash sales - expenses; the variance is counted
// minus expected, positive for an overage, negative for a shortage.
func (s *CashShiftService) CloseShift(ctx context.Context, shiftID uuid.UUID, denominations entity.DenominationMap, notes string) (*entity.CashShift, error) {
	shift, err := s.shiftRepo.GetByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.NewNotFoundError("Cash shift")
	}
	if !shift.IsOpen() {
		return nil, apperror.ErrShiftAlreadyClosed
	}

	counted, err := denominations.Total()
	if err != nil {
		return nil, apperror.ErrInvalidDenomination
	}

	expected := money.Round(shift.OpeningBalance.Add(shift.CashSales).Sub(shift.Expenses))
	variance := counted.Sub(expected)
	now := time.Now()

	shift.ClosedAt = &now
	shift.ClosingDenominations = denominations
	shift.CountedBalance = &counted
	shift.ExpectedBalance = &expected
	shift.Variance = &variance
	if notes != "" {
		shift.Notes = notes
	}

	if err := s.shiftRepo.Close(ctx, shift); err != nil {
		return nil, err
	}
	shift.State = enum.ShiftStateClosed
	return shift, nil
}
