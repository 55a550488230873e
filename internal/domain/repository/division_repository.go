package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
)

// DivisionRepository defines the interface for division data operations
type DivisionRepository interface {
	Create(ctx context.Context, division *entity.Division) error
	CreateBatch(ctx context.Context, divisions []entity.Division) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Division, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.Division, error)
	// LinkInvoice stamps the invoice onto the divisions, freezing them.
	LinkInvoice(ctx context.Context, divisionIDs []uuid.UUID, invoiceID uuid.UUID) error
}
