package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/greenspire/plant-rental/internal/models"
)

// CreateContactMessage stores a contact form submission and returns its id.
func (s *Storage) CreateContactMessage(ctx context.Context, msg models.ContactMessage) (int, error) {
	const op = "storage.CreateContactMessage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO contact_messages (name, email, message)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, msg.Name, msg.Email, msg.Message).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListContactMessages returns the inbox, newest first.
func (s *Storage) ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	const op = "storage.ListContactMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, message, reply, replied_at, created_at
			  FROM contact_messages
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		var reply sql.NullString
		var repliedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &reply, &repliedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if reply.Valid {
			m.Reply = &reply.String
		}
		if repliedAt.Valid {
			m.RepliedAt = &repliedAt.Time
		}
		result = append(result, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplyContactMessage records the admin reply on a message and returns the
// message for mail delivery. ErrNotFound when the id is absent.
func (s *Storage) ReplyContactMessage(ctx context.Context, id int, reply string) (*models.ContactMessage, error) {
	const op = "storage.ReplyContactMessage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE contact_messages
			  SET reply = $1, replied_at = NOW()
			  WHERE id = $2
			  RETURNING id, name, email, message, reply, replied_at, created_at`
	var m models.ContactMessage
	var replyOut sql.NullString
	var repliedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, reply, id).Scan(
		&m.ID, &m.Name, &m.Email, &m.Message, &replyOut, &repliedAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if replyOut.Valid {
		m.Reply = &replyOut.String
	}
	if repliedAt.Valid {
		m.RepliedAt = &repliedAt.Time
	}
	return &m, nil
}
