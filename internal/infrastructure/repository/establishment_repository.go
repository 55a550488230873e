package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	domainRepo "github.com/gastrolink/mesa-api/internal/domain/repository"
)

type establishmentRepository struct {
	db *gorm.DB
}

// NewEstablishmentRepository creates a new establishment repository
func NewEstablishmentRepository(db *gorm.DB) domainRepo.EstablishmentRepository {
	return &establishmentRepository{db: db}
}

func (r *establishmentRepository) Create(ctx context.Context, establishment *entity.Establishment) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(establishment).Error
}

func (r *establishmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Establishment, error) {
	var establishment entity.Establishment
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&establishment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &establishment, err
}

func (r *establishmentRepository) GetBySlug(ctx context.Context, slug string) (*entity.Establishment, error) {
	var establishment entity.Establishment
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&establishment, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &establishment, err
}

func (r *establishmentRepository) Update(ctx context.Context, establishment *entity.Establishment) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(establishment).Error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(user).Error
}
