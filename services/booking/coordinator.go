package booking

import (
	"context"
	"math"
	"time"

	bookingRepo "tajriba/database/repository/booking"
	paymentRepo "tajriba/database/repository/payment"
	userRepo "tajriba/database/repository/user"
	"tajriba/models"
	"tajriba/services/notification"
	"tajriba/services/payment"

	"go.uber.org/zap"
)

// EscrowCoordinator orchestrates payment actions against the state machine.
// The invariant it protects: a booking is never left confirmed without a
// captured payment, nor cancelled with an un-refunded one. Ordering is
// gateway call first, state transition second — a gateway failure leaves
// the booking status untouched, and the per-(booking, op) ledger makes
// every operation replay-safe.
type EscrowCoordinator struct {
	Bookings bookingRepo.BookingRepository
	Payments paymentRepo.PaymentRepository
	Users    userRepo.UserRepository
	Gateway  payment.Gateway

	Policy         *RefundPolicy
	CommissionRate float64

	Notifier notification.NotificationService
	Logger   *zap.Logger

	// Now is overridable for tests; defaults to time.Now UTC.
	Now func() time.Time
}

func (c *EscrowCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}

// opKey derives the idempotency key handed to the gateway. One key per
// (booking, operation) pair, stable across retries.
func opKey(bookingID, op string) string {
	return bookingID + ":" + op
}

func round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Authorize places the payment hold for a freshly created pending booking.
// On gateway failure the booking is rolled back to cancelled and the
// payment marked failed, so no active booking survives without a hold.
func (c *EscrowCoordinator) Authorize(ctx context.Context, b *models.Booking, p *models.Payment, customerID string) error {
	if entry, err := c.Payments.GetOperation(ctx, b.ID, models.OpAuthorize); err != nil {
		return err
	} else if entry != nil {
		return nil // hold already placed
	}

	res, err := c.Gateway.Authorize(ctx, payment.AuthorizeRequest{
		CustomerID:     customerID,
		Amount:         b.TotalPrice,
		Currency:       p.Currency,
		Description:    "tajriba booking " + b.ID,
		IdempotencyKey: opKey(b.ID, models.OpAuthorize),
	})
	if err != nil {
		c.Logger.Warn("authorization failed, rolling back booking",
			zap.String("booking", b.ID), zap.Error(err))
		if terr := c.Bookings.TransitionStatus(ctx, b.ID, b.Status, models.BookingCancelled, b.Version); terr != nil {
			c.Logger.Error("failed to roll back booking after authorization failure",
				zap.String("booking", b.ID), zap.Error(terr))
		}
		if perr := c.Payments.MarkFailed(ctx, p.ID, err.Error()); perr != nil {
			c.Logger.Error("failed to mark payment failed",
				zap.String("payment", p.ID), zap.Error(perr))
		}
		return NewError(CodePaymentFailed, "payment authorization declined: %v", err)
	}

	if err := c.Payments.RecordOperation(ctx, &models.PaymentOperation{
		BookingID:   b.ID,
		Op:          models.OpAuthorize,
		Key:         opKey(b.ID, models.OpAuthorize),
		GatewayRef:  res.Ref,
		Amount:      b.TotalPrice,
		SucceededAt: c.now(),
	}); err != nil && err != paymentRepo.ErrDuplicateOperation {
		return err
	}
	if err := c.Payments.MarkAuthorized(ctx, p.ID, res.Ref); err != nil {
		return err
	}
	return nil
}

// Confirm captures the hold into escrow and moves pending -> confirmed.
// Calling it on an already confirmed booking is a no-op.
func (c *EscrowCoordinator) Confirm(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if b.Status == models.BookingConfirmed {
		return b, nil
	}
	if err := GuardTransition(b, models.BookingConfirmed, c.now()); err != nil {
		return nil, err
	}

	p, err := c.Payments.GetByBookingID(ctx, b.ID)
	if err != nil {
		return nil, mapPaymentErr(err, b.ID)
	}
	if p.Status == models.PaymentFailed || p.Status == models.PaymentPending {
		return nil, NewError(CodePaymentFailed, "booking %s has no captured-capable hold (payment is %s)", b.ID, p.Status)
	}

	entry, err := c.Payments.GetOperation(ctx, b.ID, models.OpCapture)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		res, gerr := c.Gateway.Capture(ctx, p.GatewayRef, b.TotalPrice, opKey(b.ID, models.OpCapture))
		if gerr != nil {
			// Gateway failures never mutate booking status.
			return nil, NewError(CodePaymentFailed, "capture failed for booking %s: %v", b.ID, gerr)
		}
		if err := c.Payments.RecordOperation(ctx, &models.PaymentOperation{
			BookingID:   b.ID,
			Op:          models.OpCapture,
			Key:         opKey(b.ID, models.OpCapture),
			GatewayRef:  res.Ref,
			Amount:      b.TotalPrice,
			SucceededAt: c.now(),
		}); err != nil && err != paymentRepo.ErrDuplicateOperation {
			return nil, err
		}
	}

	if err := c.transition(ctx, b, models.BookingConfirmed); err != nil {
		return nil, err
	}
	if err := c.Payments.MarkCaptured(ctx, p.ID, b.TotalPrice); err != nil {
		return nil, err
	}

	c.notify(b, "Booking confirmed", "Your booking was accepted by the host.")
	return b, nil
}

// Cancel applies the refund policy and moves the booking to cancelled. An
// uncaptured hold is voided in full regardless of the tier — money that was
// never charged is always returned whole.
func (c *EscrowCoordinator) Cancel(ctx context.Context, b *models.Booking) (float64, error) {
	return c.cancel(ctx, b, false)
}

// Expire cancels a pending booking whose host acceptance SLA lapsed. The
// hold is released in full; the policy tiers do not apply to a booking the
// host never accepted.
func (c *EscrowCoordinator) Expire(ctx context.Context, b *models.Booking) (float64, error) {
	return c.cancel(ctx, b, true)
}

func (c *EscrowCoordinator) cancel(ctx context.Context, b *models.Booking, expiry bool) (float64, error) {
	if b.Status == models.BookingCancelled {
		p, err := c.Payments.GetByBookingID(ctx, b.ID)
		if err != nil {
			return 0, mapPaymentErr(err, b.ID)
		}
		return p.RefundedAmount, nil
	}
	if expiry {
		// Expiry skips the before-start time guard: a pending booking the
		// host ignored must still be released after the window passes.
		if !CanTransition(b.Status, models.BookingCancelled) {
			return 0, NewError(CodeInvalidTransition, "cannot move booking %s from %s to %s",
				b.ID, b.Status, models.BookingCancelled)
		}
	} else if err := GuardTransition(b, models.BookingCancelled, c.now()); err != nil {
		return 0, err
	}

	p, err := c.Payments.GetByBookingID(ctx, b.ID)
	if err != nil {
		return 0, mapPaymentErr(err, b.ID)
	}

	refund := c.Policy.RefundAmount(c.now(), b.Start, b.TotalPrice)
	if expiry {
		refund = b.TotalPrice
	}

	entry, err := c.Payments.GetOperation(ctx, b.ID, models.OpRefund)
	if err != nil {
		return 0, err
	}
	if entry != nil {
		refund = entry.Amount
	} else {
		ref := ""
		switch p.Status {
		case models.PaymentCaptured:
			refund = round2(refund)
			if refund > 0 {
				res, gerr := c.Gateway.Refund(ctx, p.GatewayRef, refund, opKey(b.ID, models.OpRefund))
				if gerr != nil {
					return 0, NewError(CodePaymentFailed, "refund failed for booking %s: %v", b.ID, gerr)
				}
				ref = res.Ref
			}
		case models.PaymentAuthorized:
			// Never captured: void the hold in full.
			res, gerr := c.Gateway.Void(ctx, p.GatewayRef, opKey(b.ID, models.OpRefund))
			if gerr != nil {
				return 0, NewError(CodePaymentFailed, "hold release failed for booking %s: %v", b.ID, gerr)
			}
			ref = res.Ref
			refund = b.TotalPrice
		default:
			// Nothing was ever held or charged.
			refund = 0
		}
		if err := c.Payments.RecordOperation(ctx, &models.PaymentOperation{
			BookingID:   b.ID,
			Op:          models.OpRefund,
			Key:         opKey(b.ID, models.OpRefund),
			GatewayRef:  ref,
			Amount:      refund,
			SucceededAt: c.now(),
		}); err != nil && err != paymentRepo.ErrDuplicateOperation {
			return 0, err
		}
	}

	if err := c.transition(ctx, b, models.BookingCancelled); err != nil {
		return 0, err
	}
	// A declined payment keeps its failed status; only payments that held
	// money are relabelled refunded.
	if p.Status != models.PaymentFailed {
		if err := c.Payments.MarkRefunded(ctx, p.ID, refund); err != nil {
			return 0, err
		}
	}

	c.notify(b, "Booking cancelled", "The booking was cancelled.")
	return refund, nil
}

// Complete releases escrowed funds minus the platform commission to the
// host and moves confirmed -> completed.
func (c *EscrowCoordinator) Complete(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if b.Status == models.BookingCompleted {
		return b, nil
	}
	if err := GuardTransition(b, models.BookingCompleted, c.now()); err != nil {
		return nil, err
	}

	p, err := c.Payments.GetByBookingID(ctx, b.ID)
	if err != nil {
		return nil, mapPaymentErr(err, b.ID)
	}
	if p.Status != models.PaymentCaptured {
		return nil, NewError(CodePaymentFailed, "booking %s has no escrowed funds to release (payment is %s)", b.ID, p.Status)
	}

	commission := round2(p.CapturedAmount * c.CommissionRate)
	payout := round2(p.CapturedAmount - commission)

	entry, err := c.Payments.GetOperation(ctx, b.ID, models.OpRelease)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		payout = entry.Amount
	} else {
		host, herr := c.Users.GetByID(ctx, b.HostID)
		if herr != nil {
			return nil, NewError(CodeNotFound, "host %s not found", b.HostID)
		}
		if host.GatewayAccountID == "" {
			return nil, NewError(CodePaymentFailed, "host %s has no payout account", b.HostID)
		}
		res, gerr := c.Gateway.Release(ctx, host.GatewayAccountID, payout, p.Currency, opKey(b.ID, models.OpRelease))
		if gerr != nil {
			return nil, NewError(CodePaymentFailed, "escrow release failed for booking %s: %v", b.ID, gerr)
		}
		if err := c.Payments.RecordOperation(ctx, &models.PaymentOperation{
			BookingID:   b.ID,
			Op:          models.OpRelease,
			Key:         opKey(b.ID, models.OpRelease),
			GatewayRef:  res.Ref,
			Amount:      payout,
			SucceededAt: c.now(),
		}); err != nil && err != paymentRepo.ErrDuplicateOperation {
			return nil, err
		}
	}

	if err := c.transition(ctx, b, models.BookingCompleted); err != nil {
		return nil, err
	}
	if err := c.Payments.MarkReleased(ctx, p.ID, payout, commission); err != nil {
		return nil, err
	}

	c.notify(b, "Booking completed", "The experience is complete and the host has been paid.")
	return b, nil
}

// Dispute freezes a booking for manual resolution. Funds stay where they
// are until ResolveDispute moves them.
func (c *EscrowCoordinator) Dispute(ctx context.Context, b *models.Booking) error {
	if b.Status == models.BookingDisputed {
		return nil
	}
	if !CanTransition(b.Status, models.BookingDisputed) {
		return NewError(CodeInvalidTransition, "cannot move booking %s from %s to %s",
			b.ID, b.Status, models.BookingDisputed)
	}
	if err := c.transition(ctx, b, models.BookingDisputed); err != nil {
		return err
	}
	c.notify(b, "Booking disputed", "The booking is under review.")
	return nil
}

// ResolveDispute settles a disputed booking's funds: tourist favor refunds
// the captured amount (or voids the hold), host favor releases escrow minus
// commission. The booking stays disputed; only the money moves.
func (c *EscrowCoordinator) ResolveDispute(ctx context.Context, b *models.Booking, favorTourist bool) error {
	if b.Status != models.BookingDisputed {
		return NewError(CodeInvalidTransition, "booking %s is not disputed", b.ID)
	}

	p, err := c.Payments.GetByBookingID(ctx, b.ID)
	if err != nil {
		return mapPaymentErr(err, b.ID)
	}

	if favorTourist {
		entry, err := c.Payments.GetOperation(ctx, b.ID, models.OpRefund)
		if err != nil {
			return err
		}
		refund := p.CapturedAmount
		if entry != nil {
			refund = entry.Amount
		} else {
			ref := ""
			switch p.Status {
			case models.PaymentCaptured:
				res, gerr := c.Gateway.Refund(ctx, p.GatewayRef, refund, opKey(b.ID, models.OpRefund))
				if gerr != nil {
					return NewError(CodePaymentFailed, "dispute refund failed for booking %s: %v", b.ID, gerr)
				}
				ref = res.Ref
			case models.PaymentAuthorized:
				res, gerr := c.Gateway.Void(ctx, p.GatewayRef, opKey(b.ID, models.OpRefund))
				if gerr != nil {
					return NewError(CodePaymentFailed, "dispute hold release failed for booking %s: %v", b.ID, gerr)
				}
				ref = res.Ref
				refund = b.TotalPrice
			default:
				refund = 0
			}
			if err := c.Payments.RecordOperation(ctx, &models.PaymentOperation{
				BookingID: b.ID, Op: models.OpRefund, Key: opKey(b.ID, models.OpRefund),
				GatewayRef: ref, Amount: refund, SucceededAt: c.now(),
			}); err != nil && err != paymentRepo.ErrDuplicateOperation {
				return err
			}
		}
		if err := c.Payments.MarkRefunded(ctx, p.ID, refund); err != nil {
			return err
		}
		c.notify(b, "Dispute resolved", "The dispute was resolved in the tourist's favor.")
		return nil
	}

	if p.Status != models.PaymentCaptured {
		return NewError(CodePaymentFailed, "booking %s has no escrowed funds to release (payment is %s)", b.ID, p.Status)
	}
	commission := round2(p.CapturedAmount * c.CommissionRate)
	payout := round2(p.CapturedAmount - commission)

	entry, err := c.Payments.GetOperation(ctx, b.ID, models.OpRelease)
	if err != nil {
		return err
	}
	if entry != nil {
		payout = entry.Amount
	} else {
		host, herr := c.Users.GetByID(ctx, b.HostID)
		if herr != nil {
			return NewError(CodeNotFound, "host %s not found", b.HostID)
		}
		if host.GatewayAccountID == "" {
			return NewError(CodePaymentFailed, "host %s has no payout account", b.HostID)
		}
		res, gerr := c.Gateway.Release(ctx, host.GatewayAccountID, payout, p.Currency, opKey(b.ID, models.OpRelease))
		if gerr != nil {
			return NewError(CodePaymentFailed, "dispute release failed for booking %s: %v", b.ID, gerr)
		}
		if err := c.Payments.RecordOperation(ctx, &models.PaymentOperation{
			BookingID: b.ID, Op: models.OpRelease, Key: opKey(b.ID, models.OpRelease),
			GatewayRef: res.Ref, Amount: payout, SucceededAt: c.now(),
		}); err != nil && err != paymentRepo.ErrDuplicateOperation {
			return err
		}
	}
	if err := c.Payments.MarkReleased(ctx, p.ID, payout, commission); err != nil {
		return err
	}
	c.notify(b, "Dispute resolved", "The dispute was resolved in the host's favor.")
	return nil
}

// transition performs the CAS status move and updates the in-memory copy on
// success so callers can return it without re-fetching.
func (c *EscrowCoordinator) transition(ctx context.Context, b *models.Booking, to models.BookingStatus) error {
	err := c.Bookings.TransitionStatus(ctx, b.ID, b.Status, to, b.Version)
	switch err {
	case nil:
		b.Status = to
		b.Version++
		b.UpdatedAt = c.now()
		return nil
	case bookingRepo.ErrVersionMismatch:
		return NewError(CodeConcurrentModification, "booking %s was modified concurrently", b.ID)
	case bookingRepo.ErrNotFound:
		return NewError(CodeNotFound, "booking %s not found", b.ID)
	default:
		return err
	}
}

// notify fans out a transition push to both parties. Fire-and-forget: a
// failed push never affects the transition that triggered it.
func (c *EscrowCoordinator) notify(b *models.Booking, title, body string) {
	if c.Notifier == nil {
		return
	}
	data := map[string]string{"booking_id": b.ID, "status": string(b.Status)}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, userID := range []string{b.TouristID, b.HostID} {
			if err := c.Notifier.NotifyBookingEvent(ctx, userID, title, body, data); err != nil {
				c.Logger.Warn("push notification failed",
					zap.String("booking", b.ID), zap.String("user", userID), zap.Error(err))
			}
		}
	}()
}

func mapPaymentErr(err error, bookingID string) error {
	if err == paymentRepo.ErrNotFound {
		return NewError(CodeNotFound, "payment for booking %s not found", bookingID)
	}
	return err
}
