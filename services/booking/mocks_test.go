package booking

import (
	"context"
	"time"

	"tajriba/models"
	"tajriba/services/payment"

	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateWithConflictCheck(ctx context.Context, booking *models.Booking, payment *models.Payment) error {
	args := m.Called(ctx, booking, payment)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountOverlappingActive(ctx context.Context, serviceID string, start, end time.Time) (int64, error) {
	args := m.Called(ctx, serviceID, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) ListActiveInRange(ctx context.Context, serviceID string, from, to time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, serviceID, from, to)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepository) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus, version int) error {
	args := m.Called(ctx, id, from, to, version)
	return args.Error(0)
}

func (m *MockBookingRepository) ListByTourist(ctx context.Context, touristID string) ([]models.Booking, error) {
	args := m.Called(ctx, touristID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByHost(ctx context.Context, hostID string) ([]models.Booking, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]models.Booking), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkAuthorized(ctx context.Context, id, gatewayRef string) error {
	args := m.Called(ctx, id, gatewayRef)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkCaptured(ctx context.Context, id string, amount float64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkReleased(ctx context.Context, id string, payout, commission float64) error {
	args := m.Called(ctx, id, payout, commission)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkRefunded(ctx context.Context, id string, amount float64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkFailed(ctx context.Context, id, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockPaymentRepository) RecordOperation(ctx context.Context, op *models.PaymentOperation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetOperation(ctx context.Context, bookingID, op string) (*models.PaymentOperation, error) {
	args := m.Called(ctx, bookingID, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentOperation), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFCMToken(ctx context.Context, id, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateGatewayIDs(ctx context.Context, id, customerID, accountID string) error {
	args := m.Called(ctx, id, customerID, accountID)
	return args.Error(0)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, svc *models.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

func (m *MockServiceRepository) Deactivate(ctx context.Context, id, hostID string) error {
	args := m.Called(ctx, id, hostID)
	return args.Error(0)
}

func (m *MockServiceRepository) ListActive(ctx context.Context, category models.ServiceCategory, city string) ([]models.Service, error) {
	args := m.Called(ctx, category, city)
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *MockServiceRepository) ListByHost(ctx context.Context, hostID string) ([]models.Service, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).([]models.Service), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Authorize(ctx context.Context, req payment.AuthorizeRequest) (*payment.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

func (m *MockGateway) Capture(ctx context.Context, ref string, amount float64, idempotencyKey string) (*payment.Result, error) {
	args := m.Called(ctx, ref, amount, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

func (m *MockGateway) Void(ctx context.Context, ref string, idempotencyKey string) (*payment.Result, error) {
	args := m.Called(ctx, ref, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, ref string, amount float64, idempotencyKey string) (*payment.Result, error) {
	args := m.Called(ctx, ref, amount, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

func (m *MockGateway) Release(ctx context.Context, accountID string, amount float64, currency, idempotencyKey string) (*payment.Result, error) {
	args := m.Called(ctx, accountID, amount, currency, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}
