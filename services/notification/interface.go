package notification

import (
	"context"
	"fmt"

	"slotify/utils"

	deviceRepo "slotify/database/repository/device"

	"firebase.google.com/go/v4/messaging"
)

// PushSender defines the outbound push capability. Callers treat it as
// fire-and-forget with respect to their own HTTP responses.
type PushSender interface {
	SendPush(ctx context.Context, recipientID, title, body string, data map[string]string) error
}

// DefaultNotificationService sends FCM pushes to customer devices.
type DefaultNotificationService struct {
	Devices deviceRepo.DeviceRepository
}

// SendPush looks up the recipient's FCM token and sends one push message.
func (s *DefaultNotificationService) SendPush(ctx context.Context, recipientID, title, body string, data map[string]string) error {
	token, err := s.Devices.GetToken(recipientID)
	if err != nil {
		return fmt.Errorf("SendPush: could not resolve device for %s: %w", recipientID, err)
	}
	if token == "" {
		return fmt.Errorf("SendPush: customer %s has no registered device token", recipientID)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendPush: failed to send FCM message to %s: %w", recipientID, err)
	}
	return nil
}
