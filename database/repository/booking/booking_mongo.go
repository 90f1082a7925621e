package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"tajriba/database"
	"tajriba/models"
	"tajriba/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoBookingRepo implements BookingRepository using MongoDB. It also owns
// the payment collection handle so booking+payment creation can run in one
// multi-document transaction.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	paymentColl *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	repo := &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		paymentColl: db.Collection("payments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to ensure booking indexes", zap.Error(err))
	}
	return repo
}

func newContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// TransitionStatus performs the optimistic-concurrency state move: the
// filter pins both the expected status and version, the update bumps the
// version. MatchedCount == 0 with an existing document means a concurrent
// writer won.
func (r *MongoBookingRepo) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus, version int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      id,
		"status":  from,
		"version": version,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to transition booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a lost race from a missing document.
		if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Err(); err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return ErrVersionMismatch
	}
	return nil
}

func (r *MongoBookingRepo) ListByTourist(ctx context.Context, touristID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"tourist_id": touristID})
}

func (r *MongoBookingRepo) ListByHost(ctx context.Context, hostID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"host_id": hostID})
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: -1}})
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
