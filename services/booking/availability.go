package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bookingRepo "tajriba/database/repository/booking"
	"tajriba/models"

	"github.com/go-redis/redis/v8"
)

// AvailabilityChecker answers whether a service window is free and computes
// free-window previews. The authoritative conflict decision is the atomic
// check inside the creation transaction; EnsureAvailable exists for early
// rejection and previews.
type AvailabilityChecker interface {
	EnsureAvailable(ctx context.Context, serviceID string, start, end time.Time) error
	FreeWindows(ctx context.Context, serviceID string, from, to time.Time) ([]models.AvailableInterval, error)
}

// DefaultAvailabilityChecker implements AvailabilityChecker over the
// booking repository. Free-window previews are cached briefly in Redis when
// a cache client is set; EnsureAvailable always hits the database because a
// stale answer there would admit double bookings.
type DefaultAvailabilityChecker struct {
	Repo  bookingRepo.BookingRepository
	Cache *redis.Client
}

const freeWindowsCacheTTL = 30 * time.Second

func (c *DefaultAvailabilityChecker) EnsureAvailable(ctx context.Context, serviceID string, start, end time.Time) error {
	count, err := c.Repo.CountOverlappingActive(ctx, serviceID, start, end)
	if err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}
	if count > 0 {
		return NewError(CodeSlotUnavailable, "service %s is already booked between %s and %s",
			serviceID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// FreeWindows returns the gaps of [from, to) not covered by an active
// booking, in chronological order.
func (c *DefaultAvailabilityChecker) FreeWindows(ctx context.Context, serviceID string, from, to time.Time) ([]models.AvailableInterval, error) {
	cacheKey := fmt.Sprintf("availability:%s:%d:%d", serviceID, from.Unix(), to.Unix())
	if c.Cache != nil {
		if raw, err := c.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached []models.AvailableInterval
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	booked, err := c.Repo.ListActiveInRange(ctx, serviceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}

	windows := []models.AvailableInterval{}
	cursor := from
	for _, b := range booked {
		if b.Start.After(cursor) {
			windows = append(windows, models.AvailableInterval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(to) {
		windows = append(windows, models.AvailableInterval{Start: cursor, End: to})
	}

	if c.Cache != nil {
		if raw, err := json.Marshal(windows); err == nil {
			c.Cache.Set(ctx, cacheKey, raw, freeWindowsCacheTTL)
		}
	}
	return windows, nil
}
