// internal/notification/push.go

package notifications

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

// PushService delivers push notifications to devices
type PushService interface {
	SendPush(ctx context.Context, notification *PushNotification) error
}

// FCMPushService implements push notifications using Firebase Cloud Messaging
type FCMPushService struct {
	client *messaging.Client
	log    *logger.Logger
}

// NewFCMPushService creates a new FCM push service from a credentials file or inline JSON
func NewFCMPushService(ctx context.Context, credentialsFile, credentialsJSON string, log *logger.Logger) (*FCMPushService, error) {
	var opt option.ClientOption
	switch {
	case credentialsFile != "":
		opt = option.WithCredentialsFile(credentialsFile)
	case credentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	default:
		return nil, errors.New("FCM_CREDENTIALS_FILE or FCM_CREDENTIALS_JSON must be set")
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMPushService{client: client, log: log.With("component", "fcm")}, nil
}

// SendPush sends a push notification to every token
func (s *FCMPushService) SendPush(ctx context.Context, notification *PushNotification) error {
	if len(notification.Tokens) == 0 {
		return errors.New("no tokens provided")
	}

	data := make(map[string]string, len(notification.Data)+1)
	for k, v := range notification.Data {
		data[k] = v
	}
	data["click_action"] = "FLUTTER_NOTIFICATION_CLICK"

	androidConfig := &messaging.AndroidConfig{
		Priority:    mapPriority(notification.Priority),
		CollapseKey: notification.CollapseKey,
		Notification: &messaging.AndroidNotification{
			Sound: notification.Sound,
		},
	}
	apnsConfig := &messaging.APNSConfig{
		Headers: map[string]string{"apns-priority": apnsPriority(notification.Priority)},
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{Sound: notification.Sound},
		},
	}

	messages := make([]*messaging.Message, 0, len(notification.Tokens))
	for _, token := range notification.Tokens {
		messages = append(messages, &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: notification.Title,
				Body:  notification.Body,
			},
			Data:    data,
			Android: androidConfig,
			APNS:    apnsConfig,
		})
	}

	resp, err := s.client.SendEach(ctx, messages)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	if resp.FailureCount > 0 {
		for idx, r := range resp.Responses {
			if r.Error != nil {
				s.log.Warn("push delivery failed", "token_index", idx, "error", r.Error.Error())
			}
		}
	}
	return nil
}

func mapPriority(priority Priority) string {
	if priority == PriorityLow {
		return "normal"
	}
	return "high"
}

func apnsPriority(priority Priority) string {
	if priority == PriorityLow {
		return "5"
	}
	return "10"
}

// MockPushService records pushes instead of sending them
type MockPushService struct {
	log  *logger.Logger
	Sent []*PushNotification
}

func NewMockPushService(log *logger.Logger) *MockPushService {
	return &MockPushService{log: log}
}

func (m *MockPushService) SendPush(_ context.Context, notification *PushNotification) error {
	m.Sent = append(m.Sent, notification)
	m.log.Debug("mock push", "title", notification.Title, "tokens", len(notification.Tokens))
	return nil
}
