package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create persists the invoice together with its application rows.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetWithApplications(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// UpdateSubmission records the outcome of a document submission attempt.
	UpdateSubmission(ctx context.Context, id uuid.UUID, state enum.SubmissionState, documentRef *string, lastError *string) error
	ListBySubmissionState(ctx context.Context, state enum.SubmissionState, limit int) ([]entity.Invoice, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination      *pagination.PaginationParams
	Kind            *enum.InvoiceKind
	SubmissionState *enum.SubmissionState
	CashierID       *uuid.UUID
	ShiftID         *uuid.UUID
	StartDate       *time.Time
	EndDate         *time.Time
}
