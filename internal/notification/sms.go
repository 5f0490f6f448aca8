// internal/notification/sms.go

package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

// SMSService delivers text messages
type SMSService interface {
	SendSMS(ctx context.Context, notification *SMSNotification) error
}

// TwilioSMSService implements SMS notifications using Twilio
type TwilioSMSService struct {
	client *twilio.RestClient
	from   string
	log    *logger.Logger
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, from string, log *logger.Logger) (*TwilioSMSService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("incomplete Twilio configuration")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSMSService{client: client, from: from, log: log.With("component", "twilio")}, nil
}

// SendSMS sends a single SMS
func (s *TwilioSMSService) SendSMS(_ context.Context, notification *SMSNotification) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(notification.To)
	params.SetFrom(s.from)
	params.SetBody(notification.Message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if resp.Sid != nil {
		s.log.Debug("sms sent", "sid", *resp.Sid)
	}
	return nil
}

// MockSMSService keeps sent messages in memory
type MockSMSService struct {
	mu   sync.Mutex
	log  *logger.Logger
	Sent []*SMSNotification
}

func NewMockSMSService(log *logger.Logger) *MockSMSService {
	return &MockSMSService{log: log}
}

func (m *MockSMSService) SendSMS(_ context.Context, notification *SMSNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, notification)
	m.log.Debug("mock sms", "phone", notification.To)
	return nil
}

// Last returns the most recent message, or nil
func (m *MockSMSService) Last() *SMSNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}
