package service

import (
	"context"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/repository"
	infraRepo "github.com/gastrolink/mesa-api/internal/infrastructure/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
)

// EstablishmentService manages the current establishment and its settings
type EstablishmentService struct {
	establishmentRepo repository.EstablishmentRepository
}

// NewEstablishmentService creates a new establishment service
func NewEstablishmentService(establishmentRepo repository.EstablishmentRepository) *EstablishmentService {
	return &EstablishmentService{establishmentRepo: establishmentRepo}
}

// GetCurrent returns the establishment bound to the request context.
func (s *EstablishmentService) GetCurrent(ctx context.Context) (*entity.Establishment, error) {
	establishmentID, ok := infraRepo.GetEstablishmentID(ctx)
	if !ok {
		return nil, apperror.ErrForbidden
	}
	establishment, err := s.establishmentRepo.GetByID(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	if establishment == nil {
		return nil, apperror.NewNotFoundError("Establishment")
	}
	return establishment, nil
}

// UpdateSettings replaces the establishment's behavior settings.
func (s *EstablishmentService) UpdateSettings(ctx context.Context, settings entity.EstablishmentSettings) (*entity.Establishment, error) {
	establishment, err := s.GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if settings.DefaultTipPercent < 0 || settings.DefaultTipPercent > 100 {
		return nil, apperror.NewBadRequestError("Default tip percent must be between 0 and 100")
	}
	establishment.Settings = settings
	if err := s.establishmentRepo.Update(ctx, establishment); err != nil {
		return nil, err
	}
	return establishment, nil
}
