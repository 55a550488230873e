package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	domainRepo "github.com/gastrolink/mesa-api/internal/domain/repository"
)

type divisionRepository struct {
	db *gorm.DB
}

// NewDivisionRepository creates a new division repository
func NewDivisionRepository(db *gorm.DB) domainRepo.DivisionRepository {
	return &divisionRepository{db: db}
}

func (r *divisionRepository) Create(ctx context.Context, division *entity.Division) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(division).Error
}

func (r *divisionRepository) CreateBatch(ctx context.Context, divisions []entity.Division) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(&divisions).Error
}

func (r *divisionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Division, error) {
	var division entity.Division
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&division, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &division, err
}

func (r *divisionRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.Division, error) {
	var divisions []entity.Division
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&divisions).Error
	return divisions, err
}

func (r *divisionRepository) LinkInvoice(ctx context.Context, divisionIDs []uuid.UUID, invoiceID uuid.UUID) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Division{}).
		Where("id IN ?", divisionIDs).
		Update("invoice_id", invoiceID).Error
}
