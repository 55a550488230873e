package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	domainRepo "github.com/gastrolink/mesa-api/internal/domain/repository"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	// Applications ride along via the association
	return dbFrom(ctx, r.db).WithContext(ctx).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(EstablishmentScope(ctx)).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetWithApplications(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(EstablishmentScope(ctx)).
		Preload("Applications").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Joins("JOIN invoice_applications ON invoice_applications.invoice_id = invoices.id").
		Where("invoice_applications.order_id = ?", orderID).
		Preload("Applications").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Invoice{}).Scopes(EstablishmentScope(ctx))

	if params.Kind != nil {
		query = query.Where("kind = ?", *params.Kind)
	}
	if params.SubmissionState != nil {
		query = query.Where("submission_state = ?", *params.SubmissionState)
	}
	if params.CashierID != nil {
		query = query.Where("cashier_id = ?", *params.CashierID)
	}
	if params.ShiftID != nil {
		query = query.Where("shift_id = ?", *params.ShiftID)
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Applications").
		Order("created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) UpdateSubmission(ctx context.Context, id uuid.UUID, state enum.SubmissionState, documentRef *string, lastError *string) error {
	updates := map[string]interface{}{
		"submission_state": state,
	}
	if documentRef != nil {
		updates["document_ref"] = *documentRef
	}
	if lastError != nil {
		updates["last_error"] = *lastError
		updates["retry_count"] = gorm.Expr("retry_count + 1")
	}
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *invoiceRepository) ListBySubmissionState(ctx context.Context, state enum.SubmissionState, limit int) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("submission_state = ?", state).
		Order("created_at ASC").
		Limit(limit).
		Preload("Applications").
		Find(&invoices).Error
	return invoices, err
}
