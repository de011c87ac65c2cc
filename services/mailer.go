package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendTimeout bounds a single SendGrid call so one stalled send cannot
// hold up the daily reminder run.
const sendTimeout = 15 * time.Second

// Mailer is the single capability the notifier needs from an email
// provider. Tests substitute a fake.
type Mailer interface {
	Send(to, subject, plainText, htmlContent string) error
}

type SendgridMailer struct {
	apiKey    string
	fromEmail string
}

func NewSendgridMailer(apiKey, fromEmail string) *SendgridMailer {
	return &SendgridMailer{apiKey: apiKey, fromEmail: fromEmail}
}

func (m *SendgridMailer) Send(to, subject, plainText, htmlContent string) error {
	from := mail.NewEmail("SubTrack", m.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)
	client := sendgrid.NewSendClient(m.apiKey)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	return nil
}
