package booking

import (
	"time"

	"tajriba/models"
)

// transitions is the legal transition table. Terminal states (completed,
// cancelled, disputed) have no outgoing edges.
var transitions = map[models.BookingStatus]map[models.BookingStatus]bool{
	models.BookingPending: {
		models.BookingConfirmed: true,
		models.BookingCancelled: true,
		models.BookingDisputed:  true,
	},
	models.BookingConfirmed: {
		models.BookingCompleted: true,
		models.BookingCancelled: true,
		models.BookingDisputed:  true,
	},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to models.BookingStatus) bool {
	return transitions[from][to]
}

// GuardTransition checks both the transition table and the time guards for
// moving the booking into the target status. It does not mutate anything.
func GuardTransition(b *models.Booking, to models.BookingStatus, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return NewError(CodeInvalidTransition, "cannot move booking %s from %s to %s", b.ID, b.Status, to)
	}
	switch to {
	case models.BookingCompleted:
		// Completion is only allowed at or after the booked end time.
		if now.Before(b.End) {
			return NewError(CodeInvalidTransition, "booking %s cannot complete before its end time", b.ID)
		}
	case models.BookingCancelled:
		// Cancellation is only allowed before the service starts.
		if !now.Before(b.Start) {
			return NewError(CodeInvalidTransition, "booking %s cannot be cancelled after the service start", b.ID)
		}
	}
	return nil
}
