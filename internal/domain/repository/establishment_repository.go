package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
)

// EstablishmentRepository defines the interface for establishment data operations
type EstablishmentRepository interface {
	Create(ctx context.Context, establishment *entity.Establishment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Establishment, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Establishment, error)
	Update(ctx context.Context, establishment *entity.Establishment) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
