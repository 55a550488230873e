package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/pkg/pagination"
)

// CashShiftRepository defines the interface for cash shift data operations
type CashShiftRepository interface {
	// Create inserts a new shift. A second open shift for the same
	// (establishment, cashier) pair must fail the underlying uniqueness
	// guard rather than both succeeding.
	Create(ctx context.Context, shift *entity.CashShift) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CashShift, error)
	// GetOpen returns the single open shift for the cashier, or nil.
	GetOpen(ctx context.Context, establishmentID, cashierID uuid.UUID) (*entity.CashShift, error)
	Update(ctx context.Context, shift *entity.CashShift) error
	// IncrementTotals atomically adds the deltas to the running totals of
	// an open shift. Booking against a closed shift affects no rows and
	// returns apperror.ErrShiftAlreadyClosed.
	IncrementTotals(ctx context.Context, shiftID uuid.UUID, deltas entity.ShiftTotals) error
	// Close marks the shift closed and freezes its derived balances.
	// Affects no rows (and fails) if the shift is already closed.
	Close(ctx context.Context, shift *entity.CashShift) error
	AppendMovement(ctx context.Context, movement *entity.CashMovement) error
	GetMovements(ctx context.Context, shiftID uuid.UUID) ([]entity.CashMovement, error)
	List(ctx context.Context, params *ShiftFilterParams) ([]entity.CashShift, int64, error)
}

// ShiftFilterParams contains filtering parameters for shift queries
type ShiftFilterParams struct {
	Pagination *pagination.PaginationParams
	CashierID  *uuid.UUID
	State      *enum.ShiftState
	StartDate  *time.Time
	EndDate    *time.Time
}
