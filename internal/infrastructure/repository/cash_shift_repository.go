package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	domainRepo "github.com/gastrolink/mesa-api/internal/domain/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
)

type cashShiftRepository struct {
	db *gorm.DB
}

// NewCashShiftRepository creates a new cash shift repository
func NewCashShiftRepository(db *gorm.DB) domainRepo.CashShiftRepository {
	return &cashShiftRepository{db: db}
}

func (r *cashShiftRepository) Create(ctx context.Context, shift *entity.CashShift) error {
	err := dbFrom(ctx, r.db).WithContext(ctx).Create(shift).Error
	// The partial unique index on open shifts turns a racing second open
	// into a duplicate-key error.
	if err != nil && strings.Contains(err.Error(), "uniq_open_shift") {
		return apperror.ErrShiftAlreadyOpen
	}
	return err
}

func (r *cashShiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CashShift, error) {
	var shift entity.CashShift
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(EstablishmentScope(ctx)).
		First(&shift, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shift, err
}

func (r *cashShiftRepository) GetOpen(ctx context.Context, establishmentID, cashierID uuid.UUID) (*entity.CashShift, error) {
	var shift entity.CashShift
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("establishment_id = ? AND cashier_id = ? AND state = ?",
			establishmentID, cashierID, enum.ShiftStateOpen).
		First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shift, err
}

func (r *cashShiftRepository) Update(ctx context.Context, shift *entity.CashShift) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(shift).Error
}

func (r *cashShiftRepository) IncrementTotals(ctx context.Context, shiftID uuid.UUID, deltas entity.ShiftTotals) error {
	// Guarded by state so a booking can never land on a closed shift.
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&entity.CashShift{}).
		Where("id = ? AND state = ?", shiftID, enum.ShiftStateOpen).
		Updates(map[string]interface{}{
			"cash_sales":       gorm.Expr("cash_sales + ?", deltas.CashSales),
			"electronic_sales": gorm.Expr("electronic_sales + ?", deltas.ElectronicSales),
			"expenses":         gorm.Expr("expenses + ?", deltas.Expenses),
			"gross_sales":      gorm.Expr("gross_sales + ?", deltas.GrossSales),
			"discounts":        gorm.Expr("discounts + ?", deltas.Discounts),
			"tips":             gorm.Expr("tips + ?", deltas.Tips),
			"net_sales":        gorm.Expr("net_sales + ?", deltas.NetSales),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrShiftAlreadyClosed
	}
	return nil
}

func (r *cashShiftRepository) Close(ctx context.Context, shift *entity.CashShift) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&entity.CashShift{}).
		Where("id = ? AND state = ?", shift.ID, enum.ShiftStateOpen).
		Updates(map[string]interface{}{
			"state":                 enum.ShiftStateClosed,
			"closed_at":             shift.ClosedAt,
			"closing_denominations": shift.ClosingDenominations,
			"counted_balance":       shift.CountedBalance,
			"expected_balance":      shift.ExpectedBalance,
			"variance":              shift.Variance,
			"notes":                 shift.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrShiftAlreadyClosed
	}
	return nil
}

func (r *cashShiftRepository) AppendMovement(ctx context.Context, movement *entity.CashMovement) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(movement).Error
}

func (r *cashShiftRepository) GetMovements(ctx context.Context, shiftID uuid.UUID) ([]entity.CashMovement, error) {
	var movements []entity.CashMovement
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *cashShiftRepository) List(ctx context.Context, params *domainRepo.ShiftFilterParams) ([]entity.CashShift, int64, error) {
	var shifts []entity.CashShift
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.CashShift{}).Scopes(EstablishmentScope(ctx))

	if params.CashierID != nil {
		query = query.Where("cashier_id = ?", *params.CashierID)
	}
	if params.State != nil {
		query = query.Where("state = ?", *params.State)
	}
	if params.StartDate != nil {
		query = query.Where("opened_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("opened_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("opened_at DESC").
		Find(&shifts).Error

	return shifts, total, err
}
