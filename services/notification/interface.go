package notification

import (
	"context"
	"fmt"

	userRepo "tajriba/database/repository/user"
	"tajriba/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService defines methods for sending FCM pushes. Delivery is
// fire-and-forget: a failed push is logged by the caller, never propagated
// into a booking transition.
type NotificationService interface {
	NotifyBookingEvent(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users  userRepo.UserRepository
	Logger *zap.Logger
}

// NotifyBookingEvent looks up the recipient's FCM token and sends a push.
// It is a no-op when pushes are disabled or the user has no token.
func (s *DefaultNotificationService) NotifyBookingEvent(ctx context.Context, userID, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		return nil
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message to %s: %w", userID, err)
	}
	s.Logger.Debug("push sent", zap.String("user", userID), zap.String("title", title))
	return nil
}
