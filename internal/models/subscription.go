package models

import "time"

// Subscription statuses. A subscription is never deleted, only transitioned.
const (
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Maintenance cadences and the matching interval in days.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiWeekly = "bi-weekly"
	FrequencyMonthly  = "monthly"
)

// Subscription represents a recurring plant-rental commitment of one user.
type Subscription struct {
	ID                  int
	UserUID             string    // Owning user, exclusive ownership
	PackageName         string
	PlantsCount         int
	Price               float64   // Monthly price
	PotSize             string
	Frequency           string    // weekly, bi-weekly or monthly
	Services            []string  // Included service types
	TasksChecklist      []string  // Task names seeded into every maintenance visit
	StartDate           time.Time
	NextBillingDate     time.Time
	NextMaintenanceDate time.Time
	Address             string
	City                string
	Pincode             string
	Phone               string
	Status              string
	CreatedAt           time.Time
}

// DummyAddress receives the delivery address from a JSON request.
type DummyAddress struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Pincode string `json:"pincode" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

// DummySchedule receives the maintenance schedule from a JSON request.
type DummySchedule struct {
	Frequency string   `json:"frequency" validate:"required,oneof=weekly bi-weekly monthly"`
	Services  []string `json:"services" validate:"required,min=1,dive,oneof=watering pruning health-check pest-control fertilizing plant-rotation"`
}

// DummySubscription receives subscription data from a JSON request before
// conversion to Subscription.
type DummySubscription struct {
	PackageName         string        `json:"package_name" validate:"required"`
	PlantsCount         int           `json:"plants_count" validate:"required,gt=0"`
	Price               float64       `json:"price" validate:"required,gt=0"`
	PotSize             string        `json:"pot_size" validate:"required"`
	MaintenanceSchedule DummySchedule `json:"maintenance_schedule" validate:"required"`
	TasksChecklist      []string      `json:"tasks_checklist" validate:"required,min=1,dive,required"`
	DeliveryAddress     DummyAddress  `json:"delivery_address" validate:"required"`
}
