package booking

import (
	"context"
	"time"

	bookingRepo "tajriba/database/repository/booking"
	serviceRepo "tajriba/database/repository/service"
	userRepo "tajriba/database/repository/user"
	"tajriba/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService. It owns input
// validation and principal checks; all money movement and status changes
// are delegated to the escrow coordinator.
type DefaultBookingService struct {
	Services serviceRepo.ServiceRepository
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository

	Availability AvailabilityChecker
	Coordinator  *EscrowCoordinator

	// PendingSLA is how long a host has to accept before the worker expires
	// the booking with a full refund of the hold.
	PendingSLA time.Duration

	Logger *zap.Logger
	Now    func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) Create(ctx context.Context, tourist models.Principal, req CreateBookingRequest) (*models.Booking, error) {
	if tourist.Role != models.RoleTourist {
		return nil, NewError(CodeUnauthorized, "only tourists can create bookings")
	}
	if req.Guests < 1 {
		return nil, NewError(CodeValidation, "guest count must be at least 1")
	}
	now := s.now()
	if !req.Start.After(now) {
		return nil, NewError(CodeValidation, "booking start must be in the future")
	}

	svc, err := s.Services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if err == serviceRepo.ErrNotFound {
			return nil, NewError(CodeNotFound, "service %s not found", req.ServiceID)
		}
		return nil, err
	}
	if !svc.Active {
		return nil, NewError(CodeNotFound, "service %s is no longer offered", req.ServiceID)
	}
	if req.Guests > svc.Capacity {
		return nil, NewError(CodeValidation, "guest count %d exceeds service capacity %d", req.Guests, svc.Capacity)
	}

	user, err := s.Users.GetByID(ctx, tourist.ID)
	if err != nil {
		return nil, NewError(CodeNotFound, "tourist %s not found", tourist.ID)
	}
	if user.GatewayCustomerID == "" {
		return nil, NewError(CodePaymentFailed, "no payment method on file")
	}

	start := req.Start.UTC()
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	total := CalculateTotalPrice(svc.Price, svc.DurationMinutes, req.Guests)

	// Fast-path rejection before paying the transaction cost; the
	// authoritative check re-runs inside the insert transaction.
	if err := s.Availability.EnsureAvailable(ctx, svc.ID, start, end); err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:            uuid.New().String(),
		ServiceID:     svc.ID,
		TouristID:     tourist.ID,
		HostID:        svc.HostID,
		Start:         start,
		End:           end,
		Guests:        req.Guests,
		PriceSnapshot: svc.Price,
		TotalPrice:    total,
		Status:        models.BookingPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p := &models.Payment{
		ID:        uuid.New().String(),
		BookingID: b.ID,
		Amount:    total,
		Currency:  svc.Price.Currency,
		Status:    models.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.PaymentID = p.ID

	if err := s.Bookings.CreateWithConflictCheck(ctx, b, p); err != nil {
		if err == bookingRepo.ErrSlotConflict {
			return nil, NewError(CodeSlotUnavailable, "service %s is already booked for that window", svc.ID)
		}
		return nil, err
	}

	if err := s.Coordinator.Authorize(ctx, b, p, user.GatewayCustomerID); err != nil {
		return nil, err
	}

	s.Logger.Info("booking created",
		zap.String("booking", b.ID), zap.String("service", svc.ID),
		zap.Float64("total", total))
	return b, nil
}

func (s *DefaultBookingService) Get(ctx context.Context, principal models.Principal, id string) (*models.Booking, error) {
	b, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(principal, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DefaultBookingService) ListMine(ctx context.Context, principal models.Principal) ([]models.Booking, error) {
	switch principal.Role {
	case models.RoleHost:
		return s.Bookings.ListByHost(ctx, principal.ID)
	default:
		return s.Bookings.ListByTourist(ctx, principal.ID)
	}
}

func (s *DefaultBookingService) Confirm(ctx context.Context, principal models.Principal, id string) (*models.Booking, error) {
	b, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.Role != models.RoleAdmin && principal.ID != b.HostID {
		return nil, NewError(CodeUnauthorized, "only the booking's host can confirm it")
	}
	return s.Coordinator.Confirm(ctx, b)
}

func (s *DefaultBookingService) Cancel(ctx context.Context, principal models.Principal, id string) (*models.Booking, float64, error) {
	b, err := s.fetch(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if err := requireParticipant(principal, b); err != nil {
		return nil, 0, err
	}
	refund, err := s.Coordinator.Cancel(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	return b, refund, nil
}

func (s *DefaultBookingService) Complete(ctx context.Context, principal models.Principal, id string) (*models.Booking, error) {
	b, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.Role != models.RoleAdmin && principal.ID != b.HostID {
		return nil, NewError(CodeUnauthorized, "only the booking's host can complete it")
	}
	return s.Coordinator.Complete(ctx, b)
}

func (s *DefaultBookingService) Dispute(ctx context.Context, principal models.Principal, id string) (*models.Booking, error) {
	if principal.Role != models.RoleAdmin {
		return nil, NewError(CodeUnauthorized, "only admins can open disputes")
	}
	b, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Coordinator.Dispute(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DefaultBookingService) ResolveDispute(ctx context.Context, principal models.Principal, id string, favorTourist bool) (*models.Booking, error) {
	if principal.Role != models.RoleAdmin {
		return nil, NewError(CodeUnauthorized, "only admins can resolve disputes")
	}
	b, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Coordinator.ResolveDispute(ctx, b, favorTourist); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DefaultBookingService) Availability(ctx context.Context, serviceID string, from, to time.Time) ([]models.AvailableInterval, error) {
	if !to.After(from) {
		return nil, NewError(CodeValidation, "availability range end must be after start")
	}
	if _, err := s.Services.GetByID(ctx, serviceID); err != nil {
		if err == serviceRepo.ErrNotFound {
			return nil, NewError(CodeNotFound, "service %s not found", serviceID)
		}
		return nil, err
	}
	return s.Availability.FreeWindows(ctx, serviceID, from, to)
}

// ExpirePendingBookings cancels pending bookings whose host acceptance SLA
// lapsed, releasing their holds in full. Called by the background worker.
func (s *DefaultBookingService) ExpirePendingBookings(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.PendingSLA)
	expired, err := s.Bookings.ListPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range expired {
		if _, err := s.Coordinator.Expire(ctx, &expired[i]); err != nil {
			s.Logger.Warn("failed to expire pending booking",
				zap.String("booking", expired[i].ID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// CompleteElapsedBookings releases escrow for confirmed bookings whose
// window has ended. Called by the background worker.
func (s *DefaultBookingService) CompleteElapsedBookings(ctx context.Context) (int, error) {
	elapsed, err := s.Bookings.ListConfirmedEndedBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range elapsed {
		if _, err := s.Coordinator.Complete(ctx, &elapsed[i]); err != nil {
			s.Logger.Warn("failed to complete elapsed booking",
				zap.String("booking", elapsed[i].ID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

func (s *DefaultBookingService) fetch(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == bookingRepo.ErrNotFound {
			return nil, NewError(CodeNotFound, "booking %s not found", id)
		}
		return nil, err
	}
	return b, nil
}

// requireParticipant re-validates that the caller is the booking's tourist,
// its host, or an admin. The identity layer is trusted for authentication
// only.
func requireParticipant(principal models.Principal, b *models.Booking) error {
	if principal.Role == models.RoleAdmin {
		return nil
	}
	if principal.ID == b.TouristID || principal.ID == b.HostID {
		return nil
	}
	return NewError(CodeUnauthorized, "caller is not a participant of booking %s", b.ID)
}
