package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	// UpdateWithVersion persists the order only if its stored version still
	// matches order.Version, then bumps the version. A lost race returns
	// apperror.ErrConcurrencyConflict.
	UpdateWithVersion(ctx context.Context, order *entity.Order) error
	UpdateState(ctx context.Context, id uuid.UUID, state enum.OrderState) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	ListWithCursor(ctx context.Context, params *OrderCursorFilterParams) ([]entity.Order, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination  *pagination.PaginationParams
	State       *enum.OrderState
	Fulfillment *enum.FulfillmentKind
	TableID     *uuid.UUID
	WaiterID    *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	SortBy      string
	SortOrder   string
}

// OrderCursorFilterParams contains cursor-based filtering for order queries
type OrderCursorFilterParams struct {
	Cursor      *pagination.CursorParams
	State       *enum.OrderState
	Fulfillment *enum.FulfillmentKind
	WaiterID    *uuid.UUID
}

// OrderItemRepository defines the interface for order item data operations
type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.OrderItem) error
	CreateBatch(ctx context.Context, items []entity.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error)
	Update(ctx context.Context, item *entity.OrderItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
}
