package bookingRepo

import (
	"context"
	"errors"
	"time"

	"tajriba/models"
)

// Storage-level sentinel errors. The service layer maps these onto its
// typed domain errors.
var (
	// ErrSlotConflict is returned when an active booking already overlaps
	// the requested window.
	ErrSlotConflict = errors.New("overlapping active booking exists")
	// ErrVersionMismatch is returned when a compare-and-swap transition
	// loses to a concurrent writer.
	ErrVersionMismatch = errors.New("booking was modified concurrently")
	// ErrNotFound is returned when no booking matches.
	ErrNotFound = errors.New("booking not found")
)

// BookingRepository defines data access for bookings. Status is only ever
// moved through TransitionStatus so the (status, version) compare-and-swap
// is the single serialization point for lifecycle changes.
type BookingRepository interface {
	// CreateWithConflictCheck atomically verifies that no active booking
	// overlaps the requested window and inserts the booking together with
	// its pending payment. Returns ErrSlotConflict without writing anything
	// when the window is taken.
	CreateWithConflictCheck(ctx context.Context, booking *models.Booking, payment *models.Payment) error

	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// CountOverlappingActive counts pending/confirmed bookings of the
	// service whose window overlaps [start, end).
	CountOverlappingActive(ctx context.Context, serviceID string, start, end time.Time) (int64, error)

	// ListActiveInRange returns active bookings of a service intersecting
	// [from, to), ordered by start time. Used for availability previews.
	ListActiveInRange(ctx context.Context, serviceID string, from, to time.Time) ([]models.Booking, error)

	// TransitionStatus moves a booking from one status to another iff both
	// the current status and version still match. Returns
	// ErrVersionMismatch when the CAS loses, ErrNotFound when the booking
	// does not exist.
	TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus, version int) error

	ListByTourist(ctx context.Context, touristID string) ([]models.Booking, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Booking, error)

	// ListPendingCreatedBefore returns pending bookings created before the
	// cutoff; the worker cancels these when the host acceptance SLA lapses.
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	// ListConfirmedEndedBefore returns confirmed bookings whose window
	// ended before the cutoff; the worker completes these and releases
	// escrow.
	ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}
