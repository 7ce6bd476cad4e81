// Package sender turns notification events from RabbitMQ into outgoing
// e-mails: subscription welcomes and visit confirmations.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/lib/smtp"
	"github.com/greenspire/plant-rental/internal/models"
)

// SenderService consumes notification events and mails them out.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService creates a new SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionCreated mails the welcome letter for a new subscription.
func (s *SenderService) SendSubscriptionCreated(body []byte) error {
	var event models.NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Welcome to your GreenSpire plant subscription"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour %s subscription #%d is active.\n"+
		"Your plants will be delivered tomorrow and the first maintenance visit is scheduled for %s.",
		event.Name, event.PackageName, event.SubscriptionID, formatDate(event))

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

// SendVisitConfirmed mails the confirmation receipt after a customer signs
// off a visit.
func (s *SenderService) SendVisitConfirmed(body []byte) error {
	var event models.NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your service visit is confirmed"
	bodyText := fmt.Sprintf("Hello, %s!\n\nThank you for confirming visit #%d of your %s subscription.\n"+
		"Your next maintenance visit is scheduled for %s.",
		event.Name, event.VisitID, event.PackageName, formatDate(event))

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

// Send mails a single plain-text message. It is used directly for contact
// replies, outside the queue flow.
func (s *SenderService) Send(to, subject, body string) error {
	return s.sendEmail([]string{to}, subject, body)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
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
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
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

	s.log.Info("email sent", slog.Any("to", to))
	return nil
}

func formatDate(event models.NotificationEvent) string {
	if event.NextMaintenanceDate == nil {
		return "soon"
	}
	return event.NextMaintenanceDate.Format("02 Jan 2006")
}
