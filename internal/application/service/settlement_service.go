package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/internal/domain/repository"
	infraRepo "github.com/gastrolink/mesa-api/internal/infrastructure/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/payments"
)

// SettlementService coordinates the payment of an order: it runs the
// division engine, confirms electronic charges, books cash onto the open
// shift, applies invoices and submits their documents. Everything between
// charge confirmation and document submission commits atomically.
type SettlementService struct {
	orderRepo         repository.OrderRepository
	divisionRepo      repository.DivisionRepository
	shiftRepo         repository.CashShiftRepository
	establishmentRepo repository.EstablishmentRepository
	invoiceService    *InvoiceService
	shiftService      *CashShiftService
	gateway           payments.Gateway
	uow               repository.UnitOfWork
	maxRetries        int
}

// NewSettlementService creates a new settlement coordinator
func NewSettlementService(
	orderRepo repository.OrderRepository,
	divisionRepo repository.DivisionRepository,
	shiftRepo repository.CashShiftRepository,
	establishmentRepo repository.EstablishmentRepository,
	invoiceService *InvoiceService,
	shiftService *CashShiftService,
	gateway payments.Gateway,
	uow repository.UnitOfWork,
	maxRetries int,
) *SettlementService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &SettlementService{
		orderRepo:         orderRepo,
		divisionRepo:      divisionRepo,
		shiftRepo:         shiftRepo,
		establishmentRepo: establishmentRepo,
		invoiceService:    invoiceService,
		shiftService:      shiftService,
		gateway:           gateway,
		uow:               uow,
		maxRetries:        maxRetries,
	}
}

// SettleDivisionInput is one payer's division spec plus how they pay.
type SettleDivisionInput struct {
	Spec DivisionSpec

	PayerName      string
	PayerTaxID     string
	PayerDocType   string
	PayerDocNumber string

	Method        enum.PaymentMethod
	Denominations entity.DenominationMap
	AccountRef    string
	Taxes         decimal.Decimal
}

// SettlementResult is what one settlement run produced.
type SettlementResult struct {
	Order     *entity.Order
	Divisions []entity.Division
	Invoices  []entity.Invoice
}

// SettleOrder settles an order against the given division set. Electronic
// charges are confirmed exactly once, before any persistence; a lost
// optimistic write on the order restarts only the transactional section,
// a bounded number of times, so a retry never re-charges the payer.
func (s *SettlementService) SettleOrder(ctx context.Context, cashierID, orderID uuid.UUID, inputs []SettleDivisionInput) (*SettlementResult, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewBadRequestError("At least one division is required")
	}
	establishmentID, ok := infraRepo.GetEstablishmentID(ctx)
	if !ok {
		return nil, apperror.ErrForbidden
	}

	order, err := s.orderRepo.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if err := s.checkSettleable(ctx, order); err != nil {
		return nil, err
	}

	specs := make([]DivisionSpec, len(inputs))
	for i := range inputs {
		specs[i] = inputs[i].Spec
	}
	confirmed, err := ComputeDivisions(order, specs)
	if err != nil {
		return nil, err
	}

	// Every settlement books onto the cashier's open shift, cash and
	// electronic alike. Validate payment details up front so no charge is
	// attempted for a division set that cannot be booked.
	shift, err := s.shiftRepo.GetOpen(ctx, establishmentID, cashierID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, apperror.ErrNoOpenShift
	}
	for i := range inputs {
		if inputs[i].Method == enum.PaymentMethodCash {
			if _, err := inputs[i].Denominations.Total(); err != nil {
				return nil, apperror.ErrInvalidDenomination
			}
		}
	}

	// External confirmation runs once, outside the transaction and outside
	// the retry loop. A declined or timed-out charge aborts before any
	// state has changed.
	for i := range inputs {
		if inputs[i].Method != enum.PaymentMethodElectronic {
			continue
		}
		if err := s.gateway.Confirm(ctx, confirmed[i].TotalAmount, inputs[i].AccountRef); err != nil {
			return nil, apperror.ErrExternalPayment.WithMessagef("electronic payment failed: %v", err)
		}
	}

	var result *SettlementResult
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result, err = s.persistSettlement(ctx, cashierID, orderID, shift, inputs, specs, confirmed)
		if !errors.Is(err, apperror.ErrConcurrencyConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	// Document submission happens after the money has committed; a render
	// failure marks the invoice for retry instead of unwinding anything.
	for i := range result.Invoices {
		if subErr := s.invoiceService.SubmitDocument(ctx, &result.Invoices[i]); subErr != nil {
			return result, subErr
		}
	}
	return result, nil
}

func (s *SettlementService) persistSettlement(
	ctx context.Context,
	cashierID, orderID uuid.UUID,
	shift *entity.CashShift,
	inputs []SettleDivisionInput,
	specs []DivisionSpec,
	confirmed []DivisionResult,
) (*SettlementResult, error) {
	result := &SettlementResult{}
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		// Recheck under the transaction; a concurrent cancel or settlement
		// surfaces here as a state or version conflict.
		order, err := s.orderRepo.GetWithItems(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if err := s.checkSettleable(ctx, order); err != nil {
			return err
		}
		results, err := ComputeDivisions(order, specs)
		if err != nil {
			return err
		}

		// The charge already went through on the confirmed amounts. If a
		// concurrent write shifted an electronic division's total, booking
		// would no longer match the charge; abort instead.
		for i := range inputs {
			if inputs[i].Method == enum.PaymentMethodElectronic && !results[i].TotalAmount.Equal(confirmed[i].TotalAmount) {
				return apperror.ErrExternalPayment.WithMessagef(
					"confirmed charge of %s no longer matches the computed division of %s",
					confirmed[i].TotalAmount.StringFixed(2), results[i].TotalAmount.StringFixed(2))
			}
		}

		divisions := make([]entity.Division, len(inputs))
		for i := range inputs {
			divisions[i] = entity.Division{
				OrderID:        order.ID,
				ItemIDs:        inputs[i].Spec.ItemIDs,
				Proportional:   inputs[i].Spec.Proportional,
				DiscountPct:    order.DiscountPct,
				TipPct:         inputs[i].Spec.TipPct,
				TipEnabled:     inputs[i].Spec.TipEnabled,
				OverrideAmount: inputs[i].Spec.OverrideAmount,
				PayerName:      inputs[i].PayerName,
				PayerTaxID:     inputs[i].PayerTaxID,
				PayerDocType:   inputs[i].PayerDocType,
				PayerDocNumber: inputs[i].PayerDocNumber,
				Method:         inputs[i].Method,
				Denominations:  inputs[i].Denominations,
				AccountRef:     inputs[i].AccountRef,
				BaseAmount:     results[i].BaseAmount,
				TipAmount:      results[i].TipAmount,
				TotalAmount:    results[i].TotalAmount,
			}
		}
		if err := s.divisionRepo.CreateBatch(ctx, divisions); err != nil {
			return err
		}

		invoices := make([]entity.Invoice, 0, len(inputs))
		for i := range inputs {
			invoice, err := s.invoiceService.ApplyInvoice(ctx, &ApplyInvoiceInput{
				CashierID:  cashierID,
				ShiftID:    &shift.ID,
				PayerName:  inputs[i].PayerName,
				PayerTaxID: inputs[i].PayerTaxID,
				Tip:        results[i].TipAmount,
				Taxes:      inputs[i].Taxes,
				Discounts:  results[i].DiscountAmount,
				Applications: []InvoiceApplicationInput{
					{OrderID: order.ID, Amount: results[i].BaseAmount},
				},
			})
			if err != nil {
				return err
			}
			if err := s.divisionRepo.LinkInvoice(ctx, []uuid.UUID{divisions[i].ID}, invoice.ID); err != nil {
				return err
			}
			divisions[i].InvoiceID = &invoice.ID

			if err := s.shiftService.RecordSale(ctx, shift.ID, &SaleAmounts{
				Amount:   results[i].TotalAmount,
				Method:   inputs[i].Method,
				Tip:      results[i].TipAmount,
				Discount: results[i].DiscountAmount,
				Net:      results[i].BaseAmount,
			}, &invoice.ID); err != nil {
				return err
			}
			invoices = append(invoices, *invoice)
		}

		settled, err := s.orderRepo.GetWithItems(ctx, orderID)
		if err != nil {
			return err
		}
		result.Order = settled
		result.Divisions = divisions
		result.Invoices = invoices
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkSettleable rejects settlement for orders not in a payable state.
// Closed is the normal entry point; earlier states are allowed only when
// the establishment opted into early settlement.
func (s *SettlementService) checkSettleable(ctx context.Context, order *entity.Order) error {
	switch order.State {
	case enum.OrderStateClosed:
		return nil
	case enum.OrderStatePaid, enum.OrderStateCancelled:
		return apperror.ErrOrderState.WithMessagef("order is %s", order.State)
	default:
		establishment, err := s.establishmentRepo.GetByID(ctx, order.EstablishmentID)
		if err != nil {
			return err
		}
		if establishment == nil || !establishment.Settings.AllowEarlySettlement {
			return apperror.ErrOrderState.WithMessagef("order must be Closed before settlement")
		}
		return nil
	}
}
