// Package models contains the domain structures of the plant-rental backend:
// users, catalog plants, subscriptions, service visits and contact messages.
package models

import "time"

// Roles a user account can carry. Role is only changed through explicit
// admin promotion.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleWorker   = "worker"
)

// User represents a registered account.
type User struct {
	UID          string    // Unique identifier of the user
	Name         string    // Display name
	Email        string    // E-mail address (unique)
	PasswordHash string    // bcrypt hash of the password
	Role         string    // customer, admin or worker
	CreatedAt    time.Time
}
