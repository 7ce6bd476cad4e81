// Package schedule computes the visit and billing dates of a subscription.
package schedule

import (
	"time"

	"github.com/greenspire/plant-rental/internal/models"
)

// Generator output: one delivery visit the day after checkout plus four
// weekly maintenance visits.
const (
	DeliveryOffsetDays    = 1
	MaintenanceVisitCount = 4
	MaintenanceStepDays   = 7
)

// NextMaintenance returns now shifted by the interval of the given cadence:
// 7 days for weekly, 14 for bi-weekly, 30 for monthly. Unknown cadences fall
// back to monthly.
func NextMaintenance(now time.Time, frequency string) time.Time {
	switch frequency {
	case models.FrequencyWeekly:
		return now.AddDate(0, 0, 7)
	case models.FrequencyBiWeekly:
		return now.AddDate(0, 0, 14)
	default:
		return now.AddDate(0, 0, 30)
	}
}

// NextBilling returns the billing date one month after now.
func NextBilling(now time.Time) time.Time {
	return now.AddDate(0, 1, 0)
}

// FirstMaintenance returns the maintenance date set at subscription creation.
// It is a fixed seven days out, independent of the cadence.
func FirstMaintenance(now time.Time) time.Time {
	return now.AddDate(0, 0, 7)
}

// VisitDates returns the five visit dates generated for a new subscription:
// index 0 is the delivery visit, the rest are the weekly maintenance visits.
func VisitDates(now time.Time) []time.Time {
	dates := make([]time.Time, 0, MaintenanceVisitCount+1)
	dates = append(dates, now.AddDate(0, 0, DeliveryOffsetDays))
	for week := 1; week <= MaintenanceVisitCount; week++ {
		dates = append(dates, now.AddDate(0, 0, week*MaintenanceStepDays))
	}
	return dates
}

// DeliveryChecklist is the checklist seeded on the initial delivery visit.
func DeliveryChecklist() []models.ChecklistItem {
	return []models.ChecklistItem{
		{Task: "Deliver plants"},
		{Task: "Setup plants"},
	}
}

// MaintenanceChecklist builds the checklist of a maintenance visit from the
// task names chosen at checkout.
func MaintenanceChecklist(tasks []string) []models.ChecklistItem {
	items := make([]models.ChecklistItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, models.ChecklistItem{Task: task})
	}
	return items
}
