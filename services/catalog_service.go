package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
)

// CatalogService управляет справочником платных услуг клуба. Услуги не
// удаляются: деактивация сохраняет их видимыми в исторических позициях.
type CatalogService interface {
	CreateService(ctx context.Context, input CreateServiceInput) (*models.Service, error)
	GetServiceByID(ctx context.Context, clubID, id int) (*models.Service, error)
	ListServices(ctx context.Context, filter repositories.ListServicesFilter) ([]models.Service, error)
	UpdateService(ctx context.Context, clubID, id int, input UpdateServiceInput) (*models.Service, error)
}

type CreateServiceInput struct {
	ClubID    int
	Name      string
	UnitPrice int64
	UnitLabel string
	TimeBased bool
}

type UpdateServiceInput struct {
	Name      string
	UnitPrice int64
	UnitLabel string
	Status    string
	TimeBased bool
}

type catalogService struct {
	serviceRepo repositories.ServiceRepository
}

func NewCatalogService(serviceRepo repositories.ServiceRepository) CatalogService {
	return &catalogService{serviceRepo: serviceRepo}
}

func (s *catalogService) CreateService(ctx context.Context, input CreateServiceInput) (*models.Service, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrServiceNameRequired
	}
	if input.UnitPrice < 0 {
		return nil, ErrNegativeUnitPrice
	}

	service := &models.Service{
		ClubID:    input.ClubID,
		Name:      name,
		UnitPrice: input.UnitPrice,
		UnitLabel: strings.TrimSpace(input.UnitLabel),
		Status:    models.ServiceStatusActive,
		TimeBased: input.TimeBased,
	}
	if err := s.serviceRepo.Create(ctx, service); err != nil {
		if errors.Is(err, repositories.ErrServiceNameConflict) {
			return nil, ErrServiceNameConflict
		}
		return nil, mapStoreError(err, "failed to create service")
	}
	return service, nil
}

func (s *catalogService) GetServiceByID(ctx context.Context, clubID, id int) (*models.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, clubID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to get service %d", id))
	}
	return service, nil
}

func (s *catalogService) ListServices(ctx context.Context, filter repositories.ListServicesFilter) ([]models.Service, error) {
	services, err := s.serviceRepo.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "failed to list services")
	}
	return services, nil
}

func (s *catalogService) UpdateService(ctx context.Context, clubID, id int, input UpdateServiceInput) (*models.Service, error) {
	current, err := s.serviceRepo.GetByID(ctx, clubID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to get service %d", id))
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrServiceNameRequired
	}
	if input.UnitPrice < 0 {
		return nil, ErrNegativeUnitPrice
	}
	status, err := models.ParseServiceStatus(input.Status)
	if err != nil {
		return nil, ErrInvalidServiceStatus
	}

	// Смена цены действует только вперёд: зафиксированные в позициях
	// цены уже проданных услуг не пересчитываются.
	service := &models.Service{
		ID:        id,
		ClubID:    current.ClubID,
		Name:      name,
		UnitPrice: input.UnitPrice,
		UnitLabel: strings.TrimSpace(input.UnitLabel),
		Status:    status,
		TimeBased: input.TimeBased,
	}
	if err := s.serviceRepo.Update(ctx, service); err != nil {
		switch {
		case errors.Is(err, repositories.ErrServiceNotFound):
			return nil, ErrServiceNotFound
		case errors.Is(err, repositories.ErrServiceNameConflict):
			return nil, ErrServiceNameConflict
		default:
			return nil, mapStoreError(err, fmt.Sprintf("failed to update service %d", id))
		}
	}
	return service, nil
}
