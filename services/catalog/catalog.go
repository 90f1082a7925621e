package catalog

import (
	"context"
	"time"

	serviceRepo "tajriba/database/repository/service"
	"tajriba/models"
	"tajriba/services/booking"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpsertServiceRequest is the host's input for creating or editing a
// service. Edits never touch existing bookings: each booking keeps the
// price snapshot taken at its creation.
type UpsertServiceRequest struct {
	Name            string                 `json:"name" binding:"required"`
	Description     string                 `json:"description"`
	Category        models.ServiceCategory `json:"category" binding:"required"`
	Price           models.Price           `json:"price" binding:"required"`
	Capacity        int                    `json:"capacity" binding:"required"`
	DurationMinutes int                    `json:"duration_minutes" binding:"required"`
	Location        models.Location        `json:"location"`
}

// CatalogService manages the services hosts offer.
type CatalogService interface {
	Create(ctx context.Context, host models.Principal, req UpsertServiceRequest) (*models.Service, error)
	Update(ctx context.Context, host models.Principal, id string, req UpsertServiceRequest) (*models.Service, error)
	Deactivate(ctx context.Context, host models.Principal, id string) error
	Get(ctx context.Context, id string) (*models.Service, error)
	ListActive(ctx context.Context, category models.ServiceCategory, city string) ([]models.Service, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Service, error)
}

// DefaultCatalogService is the production implementation.
type DefaultCatalogService struct {
	Repo     serviceRepo.ServiceRepository
	Currency string
	Logger   *zap.Logger
}

func (s *DefaultCatalogService) Create(ctx context.Context, host models.Principal, req UpsertServiceRequest) (*models.Service, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	svc := &models.Service{
		ID:              uuid.New().String(),
		HostID:          host.ID,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Price:           req.Price,
		Capacity:        req.Capacity,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if svc.Price.Currency == "" {
		svc.Price.Currency = s.Currency
	}
	if err := s.Repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.Logger.Info("service created", zap.String("service", svc.ID), zap.String("host", host.ID))
	return svc, nil
}

func (s *DefaultCatalogService) Update(ctx context.Context, host models.Principal, id string, req UpsertServiceRequest) (*models.Service, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if err == serviceRepo.ErrNotFound {
			return nil, booking.NewError(booking.CodeNotFound, "service %s not found", id)
		}
		return nil, err
	}
	if host.Role != models.RoleAdmin && existing.HostID != host.ID {
		return nil, booking.NewError(booking.CodeUnauthorized, "caller does not own service %s", id)
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = req.Category
	existing.Price = req.Price
	existing.Capacity = req.Capacity
	existing.DurationMinutes = req.DurationMinutes
	existing.Location = req.Location
	if existing.Price.Currency == "" {
		existing.Price.Currency = s.Currency
	}
	if err := s.Repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *DefaultCatalogService) Deactivate(ctx context.Context, host models.Principal, id string) error {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if err == serviceRepo.ErrNotFound {
			return booking.NewError(booking.CodeNotFound, "service %s not found", id)
		}
		return err
	}
	if host.Role != models.RoleAdmin && existing.HostID != host.ID {
		return booking.NewError(booking.CodeUnauthorized, "caller does not own service %s", id)
	}
	return s.Repo.Deactivate(ctx, existing.ID, existing.HostID)
}

func (s *DefaultCatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if err == serviceRepo.ErrNotFound {
			return nil, booking.NewError(booking.CodeNotFound, "service %s not found", id)
		}
		return nil, err
	}
	return svc, nil
}

func (s *DefaultCatalogService) ListActive(ctx context.Context, category models.ServiceCategory, city string) ([]models.Service, error) {
	return s.Repo.ListActive(ctx, category, city)
}

func (s *DefaultCatalogService) ListByHost(ctx context.Context, hostID string) ([]models.Service, error) {
	return s.Repo.ListByHost(ctx, hostID)
}

func validate(req UpsertServiceRequest) error {
	switch req.Category {
	case models.CategorySpace, models.CategorySkills, models.CategoryConnect:
	default:
		return booking.NewError(booking.CodeValidation, "unknown category %q", req.Category)
	}
	switch req.Price.Unit {
	case models.PricePerHour, models.PricePerDay, models.PriceFixed:
	default:
		return booking.NewError(booking.CodeValidation, "unknown price unit %q", req.Price.Unit)
	}
	if req.Price.Amount <= 0 {
		return booking.NewError(booking.CodeValidation, "price amount must be positive")
	}
	if req.Capacity < 1 {
		return booking.NewError(booking.CodeValidation, "capacity must be at least 1")
	}
	if req.DurationMinutes < 1 {
		return booking.NewError(booking.CodeValidation, "duration must be at least one minute")
	}
	return nil
}
