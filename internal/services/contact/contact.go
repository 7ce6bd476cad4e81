// Package contact implements the support inbox: public form submissions and
// admin replies delivered by e-mail.
package contact

import (
	"context"
	"log/slog"

	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/storage"
)

// ErrNotFound marks a missing contact message.
var ErrNotFound = storage.ErrNotFound

// ContactRepository defines the storage methods used by the service.
type ContactRepository interface {
	CreateContactMessage(ctx context.Context, msg models.ContactMessage) (int, error)
	ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error)
	ReplyContactMessage(ctx context.Context, id int, reply string) (*models.ContactMessage, error)
}

// Mailer sends the reply to the customer's address.
type Mailer interface {
	Send(to, subject, body string) error
}

// ContactService carries the support-inbox business logic.
type ContactService struct {
	repo   ContactRepository
	mailer Mailer
	log    *slog.Logger
}

// NewContactService creates a new ContactService.
func NewContactService(repo ContactRepository, mailer Mailer, log *slog.Logger) *ContactService {
	return &ContactService{
		repo:   repo,
		mailer: mailer,
		log:    log,
	}
}

// Submit stores a contact form submission and returns its id.
func (s *ContactService) Submit(ctx context.Context, req *models.DummyContact) (int, error) {
	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	id, err := s.repo.CreateContactMessage(ctx, msg)
	if err != nil {
		return 0, err
	}
	s.log.Info("contact message received", slog.Int("message_id", id))
	return id, nil
}

// List returns the inbox, newest first.
func (s *ContactService) List(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	return s.repo.ListContactMessages(ctx, limit, offset)
}

// Reply stores the admin reply and mails it to the sender. A mail failure is
// logged but does not undo the stored reply.
func (s *ContactService) Reply(ctx context.Context, id int, reply string) error {
	msg, err := s.repo.ReplyContactMessage(ctx, id, reply)
	if err != nil {
		return err
	}
	if s.mailer != nil {
		if err := s.mailer.Send(msg.Email, "Re: your message to GreenSpire", reply); err != nil {
			s.log.Warn("failed to mail contact reply", sl.Err(err))
		}
	}
	s.log.Info("contact message replied", slog.Int("message_id", id))
	return nil
}
