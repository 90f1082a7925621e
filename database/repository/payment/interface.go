package paymentRepo

import (
	"context"
	"errors"

	"tajriba/models"
)

var (
	// ErrNotFound is returned when no payment matches.
	ErrNotFound = errors.New("payment not found")
	// ErrDuplicateOperation is returned when the (booking, op) ledger entry
	// already exists. Callers treat it as "already done".
	ErrDuplicateOperation = errors.New("operation already recorded")
)

// PaymentRepository defines data access for payments and the per-booking
// operation ledger. Payment rows are created inside the booking creation
// transaction (see the booking repository); this repository mutates them.
type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error)

	MarkAuthorized(ctx context.Context, id, gatewayRef string) error
	MarkCaptured(ctx context.Context, id string, amount float64) error
	MarkReleased(ctx context.Context, id string, payout, commission float64) error
	MarkRefunded(ctx context.Context, id string, amount float64) error
	MarkFailed(ctx context.Context, id, reason string) error

	// RecordOperation inserts a ledger entry, failing with
	// ErrDuplicateOperation when the (booking_id, op) pair exists.
	RecordOperation(ctx context.Context, op *models.PaymentOperation) error
	// GetOperation returns the recorded entry for (bookingID, op), or
	// (nil, nil) when the operation has never succeeded.
	GetOperation(ctx context.Context, bookingID, op string) (*models.PaymentOperation, error)
}
