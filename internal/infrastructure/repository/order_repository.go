package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	domainRepo "github.com/gastrolink/mesa-api/internal/domain/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/pagination"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(EstablishmentScope(ctx)).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(EstablishmentScope(ctx)).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(order).Error
}

// UpdateWithVersion performs an optimistic compare-and-swap: the write
// lands only if the stored version still matches, and bumps it by one.
func (r *orderRepository) UpdateWithVersion(ctx context.Context, order *entity.Order) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"state":         order.State,
			"applied_total": order.AppliedTotal,
			"closed_at":     order.ClosedAt,
			"version":       gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrConcurrencyConflict
	}
	order.Version++
	return nil
}

func (r *orderRepository) UpdateState(ctx context.Context, id uuid.UUID, state enum.OrderState) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", id).
		Update("state", state).Error
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Order{}).Scopes(EstablishmentScope(ctx))

	if params.State != nil {
		query = query.Where("state = ?", *params.State)
	}
	if params.Fulfillment != nil {
		query = query.Where("fulfillment = ?", *params.Fulfillment)
	}
	if params.TableID != nil {
		query = query.Where("table_id = ?", *params.TableID)
	}
	if params.WaiterID != nil {
		query = query.Where("waiter_id = ?", *params.WaiterID)
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

	sortBy := "created_at"
	sortOrder := "DESC"
	if params.SortBy != "" {
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Order(sortBy + " " + sortOrder).
		Find(&orders).Error

	return orders, total, err
}

// ListWithCursor returns orders using cursor-based pagination
func (r *orderRepository) ListWithCursor(ctx context.Context, params *domainRepo.OrderCursorFilterParams) ([]entity.Order, error) {
	var orders []entity.Order

	params.Cursor.Validate()
	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Order{}).Scopes(EstablishmentScope(ctx))

	if params.State != nil {
		query = query.Where("state = ?", *params.State)
	}
	if params.Fulfillment != nil {
		query = query.Where("fulfillment = ?", *params.Fulfillment)
	}
	if params.WaiterID != nil {
		query = query.Where("waiter_id = ?", *params.WaiterID)
	}

	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	if cursor != nil {
		if params.Cursor.Direction == pagination.CursorDirectionNext {
			query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
		} else {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	err = query.Limit(params.Cursor.Limit + 1).
		Preload("Items").
		Order("created_at ASC, id ASC").
		Find(&orders).Error

	return orders, err
}

type orderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository creates a new order item repository
func NewOrderItemRepository(db *gorm.DB) domainRepo.OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(ctx context.Context, item *entity.OrderItem) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(item).Error
}

func (r *orderItemRepository) CreateBatch(ctx context.Context, items []entity.OrderItem) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(&items).Error
}

func (r *orderItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *orderItemRepository) Update(ctx context.Context, item *entity.OrderItem) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(item).Error
}

func (r *orderItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&entity.OrderItem{}, "id = ?", id).Error
}

func (r *orderItemRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&entity.OrderItem{}, "order_id = ?", orderID).Error
}
