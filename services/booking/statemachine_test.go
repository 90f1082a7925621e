package booking

import (
	"testing"
	"time"

	"tajriba/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.BookingPending, models.BookingConfirmed))
	assert.True(t, CanTransition(models.BookingPending, models.BookingCancelled))
	assert.True(t, CanTransition(models.BookingPending, models.BookingDisputed))
	assert.True(t, CanTransition(models.BookingConfirmed, models.BookingCompleted))
	assert.True(t, CanTransition(models.BookingConfirmed, models.BookingCancelled))
	assert.True(t, CanTransition(models.BookingConfirmed, models.BookingDisputed))

	// Completion requires confirmation first.
	assert.False(t, CanTransition(models.BookingPending, models.BookingCompleted))

	// Terminal states have no outgoing edges.
	for _, terminal := range []models.BookingStatus{
		models.BookingCompleted, models.BookingCancelled, models.BookingDisputed,
	} {
		for _, to := range []models.BookingStatus{
			models.BookingPending, models.BookingConfirmed,
			models.BookingCompleted, models.BookingCancelled, models.BookingDisputed,
		} {
			assert.False(t, CanTransition(terminal, to), "%s -> %s should be illegal", terminal, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, models.BookingPending.Terminal())
	assert.False(t, models.BookingConfirmed.Terminal())
	assert.True(t, models.BookingCompleted.Terminal())
	assert.True(t, models.BookingCancelled.Terminal())
	assert.True(t, models.BookingDisputed.Terminal())
}

func TestGuardTransition_TimeGuards(t *testing.T) {
	start := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	b := &models.Booking{
		ID:     "b1",
		Status: models.BookingConfirmed,
		Start:  start,
		End:    end,
	}

	// Completing before the window ends is rejected.
	err := GuardTransition(b, models.BookingCompleted, end.Add(-time.Minute))
	assert.True(t, IsCode(err, CodeInvalidTransition))

	// At or after the end it is allowed.
	assert.NoError(t, GuardTransition(b, models.BookingCompleted, end))
	assert.NoError(t, GuardTransition(b, models.BookingCompleted, end.Add(time.Hour)))

	// Cancelling after the start is rejected.
	err = GuardTransition(b, models.BookingCancelled, start)
	assert.True(t, IsCode(err, CodeInvalidTransition))

	assert.NoError(t, GuardTransition(b, models.BookingCancelled, start.Add(-time.Minute)))
}

func TestGuardTransition_IllegalEdge(t *testing.T) {
	b := &models.Booking{
		ID:     "b2",
		Status: models.BookingPending,
		Start:  time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC),
	}

	// A pending booking cannot jump straight to completed, even after end.
	err := GuardTransition(b, models.BookingCompleted, b.End.Add(time.Hour))
	assert.True(t, IsCode(err, CodeInvalidTransition))
}
