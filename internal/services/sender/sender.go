// Package sender consumes the notification queues and delivers emails over
// SMTP: trial expiry notices, premium lapse notices and password reset links.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/lib/smtp"
	"github.com/selah-app/selah-backend/internal/models"
)

// SenderService renders and delivers notification emails.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService creates a SenderService on top of an SMTP transport.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendTrialExpiring delivers the trial expiry notice for one queued event.
func (s *SenderService) SendTrialExpiring(body []byte) error {
	var event models.TrialExpiringEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your Selah trial has ended"
	bodyText := fmt.Sprintf("Hi %s,\n\n"+
		"Your free trial ended on %s. Your prayer journal and reading progress are safe, "+
		"but premium features are paused until you subscribe.\n\n"+
		"Open the app to continue your journey.",
		event.Username, event.TrialEnd)

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

// SendPremiumLapsed delivers the lapse notice for one queued event.
func (s *SenderService) SendPremiumLapsed(body []byte) error {
	var event models.PremiumLapsedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your Selah subscription has lapsed"
	bodyText := fmt.Sprintf("Hi %s,\n\n"+
		"We could not confirm the renewal of your %s subscription after %s. "+
		"Premium features are paused until the payment goes through.\n\n"+
		"You can restore your subscription from the app settings.",
		event.Username, event.Plan, event.PeriodEnd)

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

// SendPasswordReset delivers the reset token for one queued event.
func (s *SenderService) SendPasswordReset(body []byte) error {
	var event models.PasswordResetEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Reset your Selah password"
	bodyText := fmt.Sprintf("Hi %s,\n\n"+
		"We received a request to reset your password. Use this code in the app:\n\n"+
		"    %s\n\n"+
		"The code expires in one hour. If you did not request a reset, you can ignore this email.",
		event.Username, event.Token)

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.From(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.From()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.From(), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", "to", to)
	return nil
}
