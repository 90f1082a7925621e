package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	paymentColl *mongo.Collection
	ledgerColl  *mongo.Collection
}

// NewMongoPaymentRepo creates a new instance of PaymentRepository using MongoDB.
func NewMongoPaymentRepo() PaymentRepository {
	db := database.DB()
	repo := &MongoPaymentRepo{
		paymentColl: db.Collection("payments"),
		ledgerColl:  db.Collection("payment_operations"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to ensure payment indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoPaymentRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	if err := r.paymentColl.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&payment); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment for booking %s: %w", bookingID, err)
	}
	return &payment, nil
}

func (r *MongoPaymentRepo) MarkAuthorized(ctx context.Context, id, gatewayRef string) error {
	return r.update(ctx, id, bson.M{
		"status":      models.PaymentAuthorized,
		"gateway_ref": gatewayRef,
	})
}

func (r *MongoPaymentRepo) MarkCaptured(ctx context.Context, id string, amount float64) error {
	return r.update(ctx, id, bson.M{
		"status":          models.PaymentCaptured,
		"escrow":          true,
		"captured_amount": amount,
	})
}

func (r *MongoPaymentRepo) MarkReleased(ctx context.Context, id string, payout, commission float64) error {
	return r.update(ctx, id, bson.M{
		"status":            models.PaymentReleased,
		"escrow":            false,
		"released_amount":   payout,
		"commission_amount": commission,
	})
}

func (r *MongoPaymentRepo) MarkRefunded(ctx context.Context, id string, amount float64) error {
	return r.update(ctx, id, bson.M{
		"status":          models.PaymentRefunded,
		"escrow":          false,
		"refunded_amount": amount,
	})
}

func (r *MongoPaymentRepo) MarkFailed(ctx context.Context, id, reason string) error {
	return r.update(ctx, id, bson.M{
		"status":         models.PaymentFailed,
		"failure_reason": reason,
	})
}

func (r *MongoPaymentRepo) update(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	res, err := r.paymentColl.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPaymentRepo) RecordOperation(ctx context.Context, op *models.PaymentOperation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.ledgerColl.InsertOne(ctx, op); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOperation
		}
		return fmt.Errorf("failed to record %s operation for booking %s: %w", op.Op, op.BookingID, err)
	}
	return nil
}

func (r *MongoPaymentRepo) GetOperation(ctx context.Context, bookingID, op string) (*models.PaymentOperation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.PaymentOperation
	err := r.ledgerColl.FindOne(ctx, bson.M{"booking_id": bookingID, "op": op}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s operation for booking %s: %w", op, bookingID, err)
	}
	return &entry, nil
}

// ensureIndexes creates the payment indexes. The unique (booking_id, op)
// index is what makes the ledger insert-once.
func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	paymentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.paymentColl.Indexes().CreateMany(ctx, paymentIndexes); err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}

	ledgerIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "op", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.ledgerColl.Indexes().CreateMany(ctx, ledgerIndexes); err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}
