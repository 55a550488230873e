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
	"github.com/gastrolink/mesa-api/pkg/documents"
	"github.com/gastrolink/mesa-api/pkg/money"
	"github.com/gastrolink/mesa-api/pkg/utils"
)

// InvoiceService is the invoice accumulator: it applies invoice amounts
// against orders, enforces the over-invoicing ceiling, flips orders to
// Paid at full coverage, and manages document submission.
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
	uow         repository.UnitOfWork
	renderer    documents.Renderer
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	uow repository.UnitOfWork,
	renderer documents.Renderer,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		uow:         uow,
		renderer:    renderer,
	}
}

// InvoiceApplicationInput names one order and the amount to settle on it.
type InvoiceApplicationInput struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
}

// ApplyInvoiceInput carries everything needed to record one invoice.
type ApplyInvoiceInput struct {
	CashierID    uuid.UUID
	ShiftID      *uuid.UUID
	PayerName    string
	PayerTaxID   string
	Tip          decimal.Decimal
	Taxes        decimal.Decimal
	Discounts    decimal.Decimal
	Applications []InvoiceApplicationInput
}

// ApplyInvoice records an invoice and applies its amounts to the named
// orders atomically. An amount that would push any order's applied total
// past its net payable rejects the whole invoice. Orders reaching full
// coverage flip to Paid inside the same transaction. The tip rides on the
// invoice total but never counts toward order coverage.
func (s *InvoiceService) ApplyInvoice(ctx context.Context, input *ApplyInvoiceInput) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.applyInvoice(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) applyInvoice(ctx context.Context, input *ApplyInvoiceInput) (*entity.Invoice, error) {
	establishmentID, ok := infraRepo.GetEstablishmentID(ctx)
	if !ok {
		return nil, apperror.ErrForbidden
	}
	if len(input.Applications) == 0 {
		return nil, apperror.NewBadRequestError("Invoice must apply to at least one order")
	}

	subtotal := decimal.Zero
	kind := enum.InvoiceKindTotal
	orders := make([]*entity.Order, len(input.Applications))

	for i, app := range input.Applications {
		if app.Amount.Sign() <= 0 {
			return nil, apperror.NewBadRequestError("Applied amount must be positive")
		}
		order, err := s.orderRepo.GetWithItems(ctx, app.OrderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, apperror.NewNotFoundError("Order")
		}
		// Paid orders fall through to the ceiling check below, which has
		// nothing left to grant; only cancellation is a state problem.
		if order.State == enum.OrderStateCancelled {
			return nil, apperror.ErrOrderState.WithMessagef("order %s is cancelled", order.ID)
		}

		// The ceiling is strict: applied totals never exceed the payable,
		// not even by a tolerated cent. Epsilon only decides equality for
		// the Paid transition below.
		payable := order.NetPayable()
		newApplied := order.AppliedTotal.Add(app.Amount)
		if newApplied.GreaterThan(payable) {
			return nil, apperror.ErrOverInvoicing.WithMessagef(
				"order %s: %s applied + %s requested exceeds payable %s",
				order.ID, order.AppliedTotal.StringFixed(2), app.Amount.StringFixed(2), payable.StringFixed(2))
		}

		// Total only when this single invoice covers the order in full.
		if !money.EqualWithin(app.Amount, payable) {
			kind = enum.InvoiceKindPartial
		}

		subtotal = subtotal.Add(app.Amount)
		orders[i] = order
	}

	invoice := &entity.Invoice{
		EstablishmentID: establishmentID,
		CashierID:       input.CashierID,
		ShiftID:         input.ShiftID,
		InvoiceNo:       utils.GenerateInvoiceNo("INV"),
		Kind:            kind,
		PayerName:       input.PayerName,
		PayerTaxID:      input.PayerTaxID,
		Subtotal:        subtotal,
		Taxes:           input.Taxes,
		Discounts:       input.Discounts,
		Tip:             input.Tip,
		Total:           subtotal.Add(input.Taxes).Add(input.Tip),
		SubmissionState: enum.SubmissionStatePending,
	}
	for i, app := range input.Applications {
		invoice.Applications = append(invoice.Applications, entity.InvoiceApplication{
			OrderID:       orders[i].ID,
			AmountApplied: app.Amount,
		})
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	for i, app := range input.Applications {
		order := orders[i]
		order.AppliedTotal = order.AppliedTotal.Add(app.Amount)
		if money.EqualWithin(order.AppliedTotal, order.NetPayable()) {
			if order.ClosedAt == nil {
				now := time.Now()
				order.ClosedAt = &now
			}
			order.State = enum.OrderStatePaid
		}
		if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
			return nil, err
		}
	}

	return invoice, nil
}

// GetInvoice retrieves an invoice with its applications
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithApplications(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices retrieves invoices with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return s.invoiceRepo.List(ctx, params)
}

// GetOrderInvoices returns every invoice applied to an order.
func (s *InvoiceService) GetOrderInvoices(ctx context.Context, orderID uuid.UUID) ([]entity.Invoice, error) {
	return s.invoiceRepo.GetByOrderID(ctx, orderID)
}

// SubmitDocument renders the invoice's external document. A render failure
// is recorded on the invoice and retried out of band; it never propagates
// as a settlement failure.
func (s *InvoiceService) SubmitDocument(ctx context.Context, invoice *entity.Invoice) error {
	handle, err := s.renderer.Render(ctx, buildDocument(invoice))
	if err != nil {
		msg := err.Error()
		invoice.SubmissionState = enum.SubmissionStateFailed
		invoice.LastError = &msg
		return s.invoiceRepo.UpdateSubmission(ctx, invoice.ID, enum.SubmissionStateFailed, nil, &msg)
	}

	invoice.SubmissionState = enum.SubmissionStateSent
	invoice.DocumentRef = &handle.ID
	invoice.LastError = nil
	return s.invoiceRepo.UpdateSubmission(ctx, invoice.ID, enum.SubmissionStateSent, &handle.ID, nil)
}

// RetryFailedSubmissions re-renders up to limit failed invoices and
// returns how many went through.
func (s *InvoiceService) RetryFailedSubmissions(ctx context.Context, limit int) (int, error) {
	failed, err := s.invoiceRepo.ListBySubmissionState(ctx, enum.SubmissionStateFailed, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range failed {
		invoice, err := s.invoiceRepo.GetWithApplications(ctx, failed[i].ID)
		if err != nil || invoice == nil {
			continue
		}
		if err := s.SubmitDocument(ctx, invoice); err != nil {
			return sent, err
		}
		if invoice.SubmissionState == enum.SubmissionStateSent {
			sent++
		}
	}
	return sent, nil
}

func buildDocument(invoice *entity.Invoice) *documents.InvoiceDocument {
	orderTotals := make(map[string]string, len(invoice.Applications))
	for i := range invoice.Applications {
		app := &invoice.Applications[i]
		orderTotals[app.OrderID.String()] = app.AmountApplied.StringFixed(2)
	}
	return &documents.InvoiceDocument{
		InvoiceID:   invoice.ID.String(),
		InvoiceNo:   invoice.InvoiceNo,
		Kind:        invoice.Kind.String(),
		PayerName:   invoice.PayerName,
		PayerTaxID:  invoice.PayerTaxID,
		Subtotal:    invoice.Subtotal.StringFixed(2),
		Taxes:       invoice.Taxes.StringFixed(2),
		Discounts:   invoice.Discounts.StringFixed(2),
		Tip:         invoice.Tip.StringFixed(2),
		Total:       invoice.Total.StringFixed(2),
		OrderTotals: orderTotals,
	}
}
