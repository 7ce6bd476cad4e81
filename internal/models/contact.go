package models

import "time"

// ContactMessage is a support-inbox entry with an optional admin reply.
// It has no relation to subscriptions or visits.
type ContactMessage struct {
	ID        int
	Name      string
	Email     string
	Message   string
	Reply     *string
	RepliedAt *time.Time
	CreatedAt time.Time
}

// DummyContact receives a contact form submission from a JSON request.
type DummyContact struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10"`
}
