package models

import "time"

// Routing keys for notification events on the notifications exchange.
const (
	RoutingSubscriptionCreated = "subscription.created"
	RoutingVisitConfirmed      = "visit.confirmed"
)

// NotificationEvent is the message published to RabbitMQ when a subscription
// is created or a visit is confirmed. The sender turns it into an e-mail.
type NotificationEvent struct {
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	PackageName         string     `json:"package_name"`
	SubscriptionID      int        `json:"subscription_id"`
	VisitID             int        `json:"visit_id,omitempty"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date,omitempty"`
}
