package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// EstablishmentIDKey is the context key for the establishment ID
	EstablishmentIDKey ctxKey = "establishment_id"
	// txKey carries the active transaction opened by the unit of work
	txKey ctxKey = "gorm_tx"
)

// EstablishmentScope returns a GORM scope that filters by establishment.
// Applied to every query over establishment-scoped entities. A missing
// establishment context yields no rows rather than cross-tenant data.
func EstablishmentScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		establishmentID, ok := ctx.Value(EstablishmentIDKey).(uuid.UUID)
		if !ok {
			return db.Where("1 = 0")
		}
		return db.Where("establishment_id = ?", establishmentID)
	}
}

// WithEstablishment adds the establishment ID to the context
func WithEstablishment(ctx context.Context, establishmentID uuid.UUID) context.Context {
	return context.WithValue(ctx, EstablishmentIDKey, establishmentID)
}

// GetEstablishmentID extracts the establishment ID from the context
func GetEstablishmentID(ctx context.Context) (uuid.UUID, bool) {
	establishmentID, ok := ctx.Value(EstablishmentIDKey).(uuid.UUID)
	return establishmentID, ok
}
