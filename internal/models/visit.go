package models

import "time"

// VisitStatus enumerates the states of a service visit.
type VisitStatus string

// The visit workflow: PENDING -> ASSIGNED -> COMPLETED_BY_WORKER and then
// either CONFIRMED_BY_CUSTOMER (terminal) or REQUIRES_REVISIT, from which an
// admin may reassign a worker, putting the visit back to ASSIGNED.
const (
	VisitPending           VisitStatus = "PENDING"
	VisitAssigned          VisitStatus = "ASSIGNED"
	VisitCompletedByWorker VisitStatus = "COMPLETED_BY_WORKER"
	VisitConfirmed         VisitStatus = "CONFIRMED_BY_CUSTOMER"
	VisitRequiresRevisit   VisitStatus = "REQUIRES_REVISIT"
)

// Valid reports whether s is one of the five enumerated statuses.
func (s VisitStatus) Valid() bool {
	switch s {
	case VisitPending, VisitAssigned, VisitCompletedByWorker, VisitConfirmed, VisitRequiresRevisit:
		return true
	}
	return false
}

// transitions maps an event to its required current state and resulting state.
// Every visit mutation checks this table before writing.
var transitions = map[VisitEvent]struct{ from, to VisitStatus }{
	EventAssign:      {VisitPending, VisitAssigned},
	EventSubmitWork:  {VisitAssigned, VisitCompletedByWorker},
	EventConfirm:     {VisitCompletedByWorker, VisitConfirmed},
	EventReportIssue: {VisitCompletedByWorker, VisitRequiresRevisit},
	EventReassign:    {VisitRequiresRevisit, VisitAssigned},
}

// VisitEvent names an action against the visit state machine.
type VisitEvent string

// Events accepted by the state machine.
const (
	EventAssign      VisitEvent = "assign"
	EventSubmitWork  VisitEvent = "submit-work"
	EventConfirm     VisitEvent = "confirm"
	EventReportIssue VisitEvent = "report-issue"
	EventReassign    VisitEvent = "reassign"
)

// Transition returns the target state for applying event in state current.
// The second result is false when the transition is illegal.
func Transition(current VisitStatus, event VisitEvent) (VisitStatus, bool) {
	t, ok := transitions[event]
	if !ok || t.from != current {
		return current, false
	}
	return t.to, true
}

// RequiredState returns the state an event demands before it may be applied.
func RequiredState(event VisitEvent) (VisitStatus, bool) {
	t, ok := transitions[event]
	if !ok {
		return "", false
	}
	return t.from, true
}

// ChecklistItem is one named task of a visit with its completion flag.
type ChecklistItem struct {
	Task      string `json:"task" validate:"required"`
	Completed bool   `json:"completed"`
}

// ServiceVisit is one scheduled or completed visit belonging to exactly one
// subscription. Visits are created in a batch by the generator and never deleted.
type ServiceVisit struct {
	ID             int
	SubscriptionID int
	VisitDate      time.Time
	WorkerUID      *string // nil until a worker is assigned
	Checklist      []ChecklistItem
	Photos         []string
	Notes          string
	Status         VisitStatus
	ConfirmedAt    *time.Time
	CreatedAt      time.Time
}

// VisitUpdate is one append-only record of a worker submission on a visit.
type VisitUpdate struct {
	ID        int
	VisitID   int
	WorkerUID string
	Notes     string
	Photos    []string
	CreatedAt time.Time
}

// VisitInfo is a visit joined with customer data, used by the admin and worker
// listings.
type VisitInfo struct {
	ServiceVisit
	CustomerName  string
	CustomerEmail string
	Address       string
}
