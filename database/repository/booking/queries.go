package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"tajriba/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// activeOverlapFilter matches pending/confirmed bookings of the service
// whose window overlaps [start, end). Standard interval overlap:
// existing.start < end && existing.end > start.
func activeOverlapFilter(serviceID string, start, end time.Time) bson.M {
	return bson.M{
		"service_id": serviceID,
		"status":     bson.M{"$in": models.ActiveStatuses()},
		"start":      bson.M{"$lt": end},
		"end":        bson.M{"$gt": start},
	}
}

func (r *MongoBookingRepo) CountOverlappingActive(ctx context.Context, serviceID string, start, end time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.bookingColl.CountDocuments(ctx, activeOverlapFilter(serviceID, start, end))
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func (r *MongoBookingRepo) ListActiveInRange(ctx context.Context, serviceID string, from, to time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.bookingColl.Find(ctx, activeOverlapFilter(serviceID, from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode active bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.BookingPending,
		"created_at": bson.M{"$lt": cutoff},
	}
	cursor, err := r.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode expired pending bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status": models.BookingConfirmed,
		"end":    bson.M{"$lt": cutoff},
	}
	cursor, err := r.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list elapsed confirmed bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode elapsed confirmed bookings: %w", err)
	}
	return bookings, nil
}
