package bookingRepo

import (
	"context"
	"fmt"

	"tajriba/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateWithConflictCheck runs the availability check and the booking +
// payment inserts inside one multi-document transaction so two concurrent
// requests for the same window cannot both pass the check and both insert.
func (r *MongoBookingRepo) CreateWithConflictCheck(ctx context.Context, booking *models.Booking, payment *models.Payment) error {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		count, err := r.bookingColl.CountDocuments(sc, activeOverlapFilter(booking.ServiceID, booking.Start, booking.End))
		if err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if count > 0 {
			return ErrSlotConflict
		}

		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		if _, err := r.paymentColl.InsertOne(sc, payment); err != nil {
			return fmt.Errorf("insert payment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrSlotConflict {
			return ErrSlotConflict
		}
		return fmt.Errorf("booking creation transaction failed: %w", err)
	}

	return nil
}
