// internal/notification/email.go

package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

// EmailService delivers transactional email
type EmailService interface {
	SendEmail(ctx context.Context, notification *EmailNotification) error
}

// SendGridEmailService implements EmailService using SendGrid
type SendGridEmailService struct {
	client *sendgrid.Client
	from   string
}

// NewSendGridEmailService creates a new SendGrid email service
func NewSendGridEmailService(apiKey, from string) *SendGridEmailService {
	return &SendGridEmailService{client: sendgrid.NewSendClient(apiKey), from: from}
}

// SendEmail sends a single email
func (s *SendGridEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	from := mail.NewEmail("Kiekky", s.from)
	to := mail.NewEmail("", notification.To)
	message := mail.NewSingleEmail(from, notification.Subject, to, notification.Body, notification.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// MockEmailService logs instead of sending
type MockEmailService struct {
	log  *logger.Logger
	Sent []*EmailNotification
}

func NewMockEmailService(log *logger.Logger) *MockEmailService {
	return &MockEmailService{log: log}
}

func (m *MockEmailService) SendEmail(_ context.Context, notification *EmailNotification) error {
	m.Sent = append(m.Sent, notification)
	m.log.Debug("mock email", "subject", notification.Subject)
	return nil
}
