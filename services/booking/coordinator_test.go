package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "tajriba/database/repository/booking"
	"tajriba/models"
	"tajriba/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func fixedNow() time.Time {
	return time.Date(2026, 5, 8, 12, 0, 0, 0, time.UTC)
}

func newTestCoordinator(bookings *MockBookingRepository, payments *MockPaymentRepository, users *MockUserRepository, gateway *MockGateway) *EscrowCoordinator {
	policy, _ := NewRefundPolicy(defaultTiers())
	return &EscrowCoordinator{
		Bookings:       bookings,
		Payments:       payments,
		Users:          users,
		Gateway:        gateway,
		Policy:         policy,
		CommissionRate: 0.20,
		Logger:         zap.NewNop(),
		Now:            fixedNow,
	}
}

func pendingBooking() *models.Booking {
	start := fixedNow().Add(30 * time.Hour)
	return &models.Booking{
		ID:         "bk-1",
		ServiceID:  "svc-1",
		TouristID:  "tourist-1",
		HostID:     "host-1",
		Start:      start,
		End:        start.Add(3 * time.Hour),
		Guests:     1,
		TotalPrice: 280,
		Status:     models.BookingPending,
		PaymentID:  "pay-1",
		Version:    1,
	}
}

func authorizedPayment() *models.Payment {
	return &models.Payment{
		ID:         "pay-1",
		BookingID:  "bk-1",
		Amount:     280,
		Currency:   "MAD",
		GatewayRef: "pi_123",
		Status:     models.PaymentAuthorized,
	}
}

func capturedPayment() *models.Payment {
	p := authorizedPayment()
	p.Status = models.PaymentCaptured
	p.Escrow = true
	p.CapturedAmount = 280
	return p
}

func TestEscrowCoordinator_Authorize_Success(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	p := &models.Payment{ID: "pay-1", BookingID: b.ID, Amount: 280, Currency: "MAD", Status: models.PaymentPending}

	payments.On("GetOperation", ctx, b.ID, models.OpAuthorize).Return(nil, nil).Once()
	gateway.On("Authorize", ctx, payment.AuthorizeRequest{
		CustomerID:     "cus_9",
		Amount:         280,
		Currency:       "MAD",
		Description:    "tajriba booking bk-1",
		IdempotencyKey: "bk-1:authorize",
	}).Return(&payment.Result{Ref: "pi_123"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.AnythingOfType("*models.PaymentOperation")).Return(nil).Once()
	payments.On("MarkAuthorized", ctx, "pay-1", "pi_123").Return(nil).Once()

	err := coord.Authorize(ctx, b, p, "cus_9")

	assert.NoError(t, err)
	gateway.AssertExpectations(t)
	payments.AssertExpectations(t)
	bookings.AssertNotCalled(t, "TransitionStatus")
}

func TestEscrowCoordinator_Authorize_ReplaySkipsGateway(t *testing.T) {
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(&MockBookingRepository{}, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	p := &models.Payment{ID: "pay-1", BookingID: b.ID, Status: models.PaymentAuthorized}

	payments.On("GetOperation", ctx, b.ID, models.OpAuthorize).Return(&models.PaymentOperation{
		BookingID: b.ID, Op: models.OpAuthorize, GatewayRef: "pi_123", Amount: 280,
	}, nil).Once()

	err := coord.Authorize(ctx, b, p, "cus_9")

	assert.NoError(t, err)
	gateway.AssertNotCalled(t, "Authorize")
	payments.AssertNotCalled(t, "RecordOperation")
}

func TestEscrowCoordinator_Authorize_FailureRollsBackBooking(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	p := &models.Payment{ID: "pay-1", BookingID: b.ID, Status: models.PaymentPending}

	payments.On("GetOperation", ctx, b.ID, models.OpAuthorize).Return(nil, nil).Once()
	gateway.On("Authorize", ctx, mock.AnythingOfType("payment.AuthorizeRequest")).
		Return(nil, errors.New("card declined")).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingPending, models.BookingCancelled, 1).Return(nil).Once()
	payments.On("MarkFailed", ctx, "pay-1", "card declined").Return(nil).Once()

	err := coord.Authorize(ctx, b, p, "cus_9")

	assert.True(t, IsCode(err, CodePaymentFailed))
	bookings.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestEscrowCoordinator_Confirm_CapturesOnce(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()

	payments.On("GetByBookingID", ctx, b.ID).Return(authorizedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpCapture).Return(nil, nil).Once()
	gateway.On("Capture", ctx, "pi_123", 280.0, "bk-1:capture").
		Return(&payment.Result{Ref: "pi_123"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.AnythingOfType("*models.PaymentOperation")).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingPending, models.BookingConfirmed, 1).Return(nil).Once()
	payments.On("MarkCaptured", ctx, "pay-1", 280.0).Return(nil).Once()

	confirmed, err := coord.Confirm(ctx, b)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	assert.Equal(t, 2, confirmed.Version)

	// Confirming again is a no-op: no second gateway call, no second CAS.
	again, err := coord.Confirm(ctx, confirmed)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, again.Status)

	gateway.AssertNumberOfCalls(t, "Capture", 1)
	bookings.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestEscrowCoordinator_Confirm_LedgerReplaySkipsGateway(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()

	// The capture succeeded on a previous attempt that died before the CAS.
	payments.On("GetByBookingID", ctx, b.ID).Return(authorizedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpCapture).Return(&models.PaymentOperation{
		BookingID: b.ID, Op: models.OpCapture, GatewayRef: "pi_123", Amount: 280,
	}, nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingPending, models.BookingConfirmed, 1).Return(nil).Once()
	payments.On("MarkCaptured", ctx, "pay-1", 280.0).Return(nil).Once()

	confirmed, err := coord.Confirm(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	gateway.AssertNotCalled(t, "Capture")
}

func TestEscrowCoordinator_Confirm_GatewayFailureLeavesStatusUntouched(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()

	payments.On("GetByBookingID", ctx, b.ID).Return(authorizedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpCapture).Return(nil, nil).Once()
	gateway.On("Capture", ctx, "pi_123", 280.0, "bk-1:capture").
		Return(nil, errors.New("gateway timeout")).Once()

	_, err := coord.Confirm(ctx, b)

	assert.True(t, IsCode(err, CodePaymentFailed))
	assert.Equal(t, models.BookingPending, b.Status)
	bookings.AssertNotCalled(t, "TransitionStatus")
	payments.AssertNotCalled(t, "MarkCaptured")
}

func TestEscrowCoordinator_Confirm_ConcurrentLoss(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()

	payments.On("GetByBookingID", ctx, b.ID).Return(authorizedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpCapture).Return(nil, nil).Once()
	gateway.On("Capture", ctx, "pi_123", 280.0, "bk-1:capture").
		Return(&payment.Result{Ref: "pi_123"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.Anything).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingPending, models.BookingConfirmed, 1).
		Return(bookingRepo.ErrVersionMismatch).Once()

	_, err := coord.Confirm(ctx, b)

	assert.True(t, IsCode(err, CodeConcurrentModification))
	payments.AssertNotCalled(t, "MarkCaptured")
}

func TestEscrowCoordinator_Cancel_PartialRefundAt30Hours(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	b.Status = models.BookingConfirmed
	b.Version = 2

	// 30h lead falls in the 24h tier: 50% of 280 = 140.
	payments.On("GetByBookingID", ctx, b.ID).Return(capturedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRefund).Return(nil, nil).Once()
	gateway.On("Refund", ctx, "pi_123", 140.0, "bk-1:refund").
		Return(&payment.Result{Ref: "re_1"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.AnythingOfType("*models.PaymentOperation")).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingConfirmed, models.BookingCancelled, 2).Return(nil).Once()
	payments.On("MarkRefunded", ctx, "pay-1", 140.0).Return(nil).Once()

	refund, err := coord.Cancel(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, 140.0, refund)
	assert.Equal(t, models.BookingCancelled, b.Status)
	gateway.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestEscrowCoordinator_Cancel_VoidsUncapturedHoldInFull(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	// 30h lead would be the 50% tier, but an uncaptured hold is voided whole.
	payments.On("GetByBookingID", ctx, b.ID).Return(authorizedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRefund).Return(nil, nil).Once()
	gateway.On("Void", ctx, "pi_123", "bk-1:refund").
		Return(&payment.Result{Ref: "pi_123"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.Anything).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingPending, models.BookingCancelled, 1).Return(nil).Once()
	payments.On("MarkRefunded", ctx, "pay-1", 280.0).Return(nil).Once()

	refund, err := coord.Cancel(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, 280.0, refund)
	gateway.AssertNotCalled(t, "Refund")
}

func TestEscrowCoordinator_Cancel_ZeroRefundSkipsGateway(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	b.Status = models.BookingConfirmed
	b.Version = 2
	b.Start = fixedNow().Add(2 * time.Hour) // inside the 0% tier
	b.End = b.Start.Add(3 * time.Hour)

	payments.On("GetByBookingID", ctx, b.ID).Return(capturedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRefund).Return(nil, nil).Once()
	payments.On("RecordOperation", ctx, mock.Anything).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingConfirmed, models.BookingCancelled, 2).Return(nil).Once()
	payments.On("MarkRefunded", ctx, "pay-1", 0.0).Return(nil).Once()

	refund, err := coord.Cancel(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, refund)
	gateway.AssertNotCalled(t, "Refund")
	gateway.AssertNotCalled(t, "Void")
}

func TestEscrowCoordinator_Cancel_DeclinedPaymentStaysFailed(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()

	p := authorizedPayment()
	p.Status = models.PaymentFailed
	p.GatewayRef = ""

	payments.On("GetByBookingID", ctx, b.ID).Return(p, nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRefund).Return(nil, nil).Once()
	payments.On("RecordOperation", ctx, mock.Anything).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingPending, models.BookingCancelled, 1).Return(nil).Once()

	refund, err := coord.Cancel(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, refund)
	gateway.AssertNotCalled(t, "Refund")
	gateway.AssertNotCalled(t, "Void")
	payments.AssertNotCalled(t, "MarkRefunded", mock.Anything, mock.Anything, mock.Anything)
}

func TestEscrowCoordinator_Cancel_AlreadyCancelledReturnsRecordedRefund(t *testing.T) {
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(&MockBookingRepository{}, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	b.Status = models.BookingCancelled

	p := capturedPayment()
	p.Status = models.PaymentRefunded
	p.RefundedAmount = 140
	payments.On("GetByBookingID", ctx, b.ID).Return(p, nil).Once()

	refund, err := coord.Cancel(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, 140.0, refund)
	gateway.AssertNotCalled(t, "Refund")
}

func TestEscrowCoordinator_Expire_SkipsTimeGuardAndRefundsFull(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	// The window already started; a plain cancel would be rejected.
	b.Start = fixedNow().Add(-2 * time.Hour)
	b.End = b.Start.Add(3 * time.Hour)

	payments.On("GetByBookingID", ctx, b.ID).Return(authorizedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRefund).Return(nil, nil).Once()
	gateway.On("Void", ctx, "pi_123", "bk-1:refund").
		Return(&payment.Result{Ref: "pi_123"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.Anything).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingPending, models.BookingCancelled, 1).Return(nil).Once()
	payments.On("MarkRefunded", ctx, "pay-1", 280.0).Return(nil).Once()

	refund, err := coord.Expire(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, 280.0, refund)
}

func TestEscrowCoordinator_Complete_ReleasesPayoutMinusCommission(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	users := &MockUserRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, users, gateway)

	ctx := context.Background()
	b := pendingBooking()
	b.Status = models.BookingConfirmed
	b.Version = 2
	b.Start = fixedNow().Add(-5 * time.Hour)
	b.End = fixedNow().Add(-2 * time.Hour)

	// 280 captured, 20% commission: 56 kept, 224 to the host.
	payments.On("GetByBookingID", ctx, b.ID).Return(capturedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRelease).Return(nil, nil).Once()
	users.On("GetByID", ctx, "host-1").Return(&models.User{
		ID: "host-1", Role: models.RoleHost, GatewayAccountID: "acct_7",
	}, nil).Once()
	gateway.On("Release", ctx, "acct_7", 224.0, "MAD", "bk-1:release").
		Return(&payment.Result{Ref: "tr_1"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.Anything).Return(nil).Once()
	bookings.On("TransitionStatus", ctx, b.ID, models.BookingConfirmed, models.BookingCompleted, 2).Return(nil).Once()
	payments.On("MarkReleased", ctx, "pay-1", 224.0, 56.0).Return(nil).Once()

	completed, err := coord.Complete(ctx, b)

	assert.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, completed.Status)
	gateway.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestEscrowCoordinator_Complete_RequiresPayoutAccount(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	users := &MockUserRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, users, gateway)

	ctx := context.Background()
	b := pendingBooking()
	b.Status = models.BookingConfirmed
	b.End = fixedNow().Add(-time.Hour)
	b.Start = b.End.Add(-3 * time.Hour)

	payments.On("GetByBookingID", ctx, b.ID).Return(capturedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRelease).Return(nil, nil).Once()
	users.On("GetByID", ctx, "host-1").Return(&models.User{ID: "host-1", Role: models.RoleHost}, nil).Once()

	_, err := coord.Complete(ctx, b)

	assert.True(t, IsCode(err, CodePaymentFailed))
	gateway.AssertNotCalled(t, "Release")
	bookings.AssertNotCalled(t, "TransitionStatus")
}

func TestEscrowCoordinator_ResolveDispute_TouristFavorRefundsEscrow(t *testing.T) {
	bookings := &MockBookingRepository{}
	payments := &MockPaymentRepository{}
	gateway := &MockGateway{}
	coord := newTestCoordinator(bookings, payments, &MockUserRepository{}, gateway)

	ctx := context.Background()
	b := pendingBooking()
	b.Status = models.BookingDisputed

	payments.On("GetByBookingID", ctx, b.ID).Return(capturedPayment(), nil).Once()
	payments.On("GetOperation", ctx, b.ID, models.OpRefund).Return(nil, nil).Once()
	gateway.On("Refund", ctx, "pi_123", 280.0, "bk-1:refund").
		Return(&payment.Result{Ref: "re_2"}, nil).Once()
	payments.On("RecordOperation", ctx, mock.Anything).Return(nil).Once()
	payments.On("MarkRefunded", ctx, "pay-1", 280.0).Return(nil).Once()

	err := coord.ResolveDispute(ctx, b, true)

	assert.NoError(t, err)
	// The booking stays disputed; only the money moved.
	assert.Equal(t, models.BookingDisputed, b.Status)
	bookings.AssertNotCalled(t, "TransitionStatus")
}

func TestEscrowCoordinator_ResolveDispute_RequiresDisputedStatus(t *testing.T) {
	coord := newTestCoordinator(&MockBookingRepository{}, &MockPaymentRepository{}, &MockUserRepository{}, &MockGateway{})

	b := pendingBooking()
	err := coord.ResolveDispute(context.Background(), b, true)

	assert.True(t, IsCode(err, CodeInvalidTransition))
}
