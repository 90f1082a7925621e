package serviceRepo

import (
	"context"
	"errors"

	"tajriba/models"
)

// ErrNotFound is returned when no service matches.
var ErrNotFound = errors.New("service not found")

// ServiceRepository defines data access for host services.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	// Update persists host-editable fields. Price edits take effect for new
	// bookings only; existing bookings keep their snapshot.
	Update(ctx context.Context, svc *models.Service) error
	Deactivate(ctx context.Context, id, hostID string) error
	ListActive(ctx context.Context, category models.ServiceCategory, city string) ([]models.Service, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Service, error)
}
