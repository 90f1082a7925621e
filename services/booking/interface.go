package booking

import (
	"context"
	"time"

	"tajriba/models"
)

// CreateBookingRequest is the tourist's input for a new booking. The window
// end is derived from the service duration; the server generates the id.
type CreateBookingRequest struct {
	ServiceID string    `json:"service_id" binding:"required"`
	Start     time.Time `json:"start" binding:"required"`
	Guests    int       `json:"guests" binding:"required"`
}

// BookingService drives the booking lifecycle. All status changes go
// through the escrow coordinator so a transition and its payment action
// commit together or not at all.
type BookingService interface {
	// Create runs the availability check, inserts the pending booking with
	// its payment, and authorizes the payment hold. A failed authorization
	// leaves no active booking behind.
	Create(ctx context.Context, tourist models.Principal, req CreateBookingRequest) (*models.Booking, error)

	Get(ctx context.Context, principal models.Principal, id string) (*models.Booking, error)
	ListMine(ctx context.Context, principal models.Principal) ([]models.Booking, error)

	// Confirm is the host accepting: capture into escrow + pending -> confirmed.
	Confirm(ctx context.Context, principal models.Principal, id string) (*models.Booking, error)
	// Cancel applies the refund policy and moves the booking to cancelled.
	// The returned amount is what was refunded to the tourist.
	Cancel(ctx context.Context, principal models.Principal, id string) (*models.Booking, float64, error)
	// Complete releases escrow minus commission: confirmed -> completed.
	Complete(ctx context.Context, principal models.Principal, id string) (*models.Booking, error)

	// Dispute freezes a booking for manual resolution; ResolveDispute moves
	// the held funds in the chosen direction. Both are admin operations.
	Dispute(ctx context.Context, principal models.Principal, id string) (*models.Booking, error)
	ResolveDispute(ctx context.Context, principal models.Principal, id string, favorTourist bool) (*models.Booking, error)

	Availability(ctx context.Context, serviceID string, from, to time.Time) ([]models.AvailableInterval, error)

	// Worker entry points.
	ExpirePendingBookings(ctx context.Context) (int, error)
	CompleteElapsedBookings(ctx context.Context) (int, error)
}
