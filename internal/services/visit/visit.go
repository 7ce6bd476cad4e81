// Package visit implements the service-visit lifecycle: worker assignment,
// work submission, customer confirmation, issue reporting and reassignment
// after a revisit, each guarded by the visit state machine.
package visit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/storage"
)

// Service-level failures the handlers translate into HTTP statuses.
var (
	// ErrNotFound marks a missing visit, worker or subscription.
	ErrNotFound = storage.ErrNotFound
	// ErrInvalidTransition marks an event applied in the wrong visit state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrNotWorker marks an assignment target without the worker role.
	ErrNotWorker = errors.New("user is not a worker")
	// ErrNotOwner marks a customer acting on a visit of a foreign subscription.
	ErrNotOwner = errors.New("visit does not belong to caller")
	// ErrNotAssignedWorker marks a worker submitting on a visit assigned to
	// someone else.
	ErrNotAssignedWorker = errors.New("visit is assigned to another worker")
)

// VisitRepository defines the storage methods of the visit lifecycle.
type VisitRepository interface {
	GetVisit(ctx context.Context, id int) (*models.ServiceVisit, error)
	ListVisitsBySubscription(ctx context.Context, subscriptionID int) ([]*models.ServiceVisit, error)
	ListVisitsForWorker(ctx context.Context, workerUID string) ([]*models.VisitInfo, error)
	ListVisitsForUser(ctx context.Context, userUID string) ([]*models.VisitInfo, error)
	ListAllVisits(ctx context.Context, limit, offset int) ([]*models.VisitInfo, error)
	AssignWorker(ctx context.Context, visitID int, workerUID string, expected models.VisitStatus) (int, error)
	SubmitVisitWork(ctx context.Context, visitID int, workerUID string,
		checklist []models.ChecklistItem, photos []string, notes string) (int, error)
	ConfirmVisit(ctx context.Context, visitID int, now time.Time) (int, error)
	ReportVisitIssue(ctx context.Context, visitID int, comment string) (int, error)
	ListVisitUpdates(ctx context.Context, visitID int) ([]*models.VisitUpdate, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	GetSubscription(ctx context.Context, id int) (*models.Subscription, error)
}

// Notifier publishes notification events.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// VisitService carries the business logic of the visit state machine.
type VisitService struct {
	repo     VisitRepository
	notifier Notifier
	log      *slog.Logger
}

// NewVisitService creates a new VisitService.
func NewVisitService(repo VisitRepository, notifier Notifier, log *slog.Logger) *VisitService {
	return &VisitService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// AssignWorker moves a PENDING visit to ASSIGNED. The target user must exist
// and carry the worker role.
func (s *VisitService) AssignWorker(ctx context.Context, visitID int, workerUID string) error {
	worker, err := s.repo.GetUser(ctx, workerUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("worker %s: %w", workerUID, ErrNotFound)
		}
		return err
	}
	if worker.Role != models.RoleWorker {
		return ErrNotWorker
	}

	expected, _ := models.RequiredState(models.EventAssign)
	rows, err := s.repo.AssignWorker(ctx, visitID, workerUID, expected)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.rejectStale(ctx, visitID, models.EventAssign)
	}
	s.log.Info("worker assigned to visit",
		slog.Int("visit_id", visitID), slog.String("worker_uid", workerUID))
	return nil
}

// ReassignAfterRevisit moves a REQUIRES_REVISIT visit back to ASSIGNED with a
// (possibly different) worker. This is the only loop-back in the workflow.
func (s *VisitService) ReassignAfterRevisit(ctx context.Context, visitID int, workerUID string) error {
	worker, err := s.repo.GetUser(ctx, workerUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("worker %s: %w", workerUID, ErrNotFound)
		}
		return err
	}
	if worker.Role != models.RoleWorker {
		return ErrNotWorker
	}

	expected, _ := models.RequiredState(models.EventReassign)
	rows, err := s.repo.AssignWorker(ctx, visitID, workerUID, expected)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.rejectStale(ctx, visitID, models.EventReassign)
	}
	s.log.Info("worker reassigned after revisit",
		slog.Int("visit_id", visitID), slog.String("worker_uid", workerUID))
	return nil
}

// SubmitWork records a worker submission on an ASSIGNED visit: checklist,
// photos and notes replace the visit fields and a worker update is appended.
func (s *VisitService) SubmitWork(ctx context.Context, visitID int, workerUID string,
	checklist []models.ChecklistItem, photos []string, notes string) error {
	rows, err := s.repo.SubmitVisitWork(ctx, visitID, workerUID, checklist, photos, notes)
	if err != nil {
		return err
	}
	if rows == 0 {
		v, err := s.repo.GetVisit(ctx, visitID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("visit %d: %w", visitID, ErrNotFound)
			}
			return err
		}
		if v.Status == models.VisitAssigned && (v.WorkerUID == nil || *v.WorkerUID != workerUID) {
			return ErrNotAssignedWorker
		}
		return fmt.Errorf("visit %d in state %s: %w", visitID, v.Status, ErrInvalidTransition)
	}
	s.log.Info("worker submitted visit work", slog.Int("visit_id", visitID))
	return nil
}

// Confirm moves a COMPLETED_BY_WORKER visit to the terminal
// CONFIRMED_BY_CUSTOMER state. The caller must own the parent subscription.
// Confirmation advances the subscription's next maintenance date by the
// cadence interval while the subscription is active, and publishes a
// visit-confirmed notification event.
func (s *VisitService) Confirm(ctx context.Context, visitID int, userUID string) error {
	sub, err := s.ownedSubscription(ctx, visitID, userUID)
	if err != nil {
		return err
	}

	rows, err := s.repo.ConfirmVisit(ctx, visitID, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.rejectStale(ctx, visitID, models.EventConfirm)
	}

	s.log.Info("visit confirmed by customer", slog.Int("visit_id", visitID))
	s.publishConfirmed(ctx, visitID, sub)
	return nil
}

// ReportIssue moves a COMPLETED_BY_WORKER visit to REQUIRES_REVISIT and
// appends the issue comment to the visit notes. No worker is reassigned
// automatically; an admin follows up with ReassignAfterRevisit.
func (s *VisitService) ReportIssue(ctx context.Context, visitID int, userUID, comment string) error {
	if _, err := s.ownedSubscription(ctx, visitID, userUID); err != nil {
		return err
	}

	rows, err := s.repo.ReportVisitIssue(ctx, visitID, comment)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.rejectStale(ctx, visitID, models.EventReportIssue)
	}
	s.log.Info("issue reported on visit", slog.Int("visit_id", visitID))
	return nil
}

// ListBySubscription returns the visits of one subscription, ordered by date.
func (s *VisitService) ListBySubscription(ctx context.Context, subscriptionID int) ([]*models.ServiceVisit, error) {
	return s.repo.ListVisitsBySubscription(ctx, subscriptionID)
}

// ListForWorker returns the ASSIGNED and COMPLETED_BY_WORKER visits of one worker.
func (s *VisitService) ListForWorker(ctx context.Context, workerUID string) ([]*models.VisitInfo, error) {
	return s.repo.ListVisitsForWorker(ctx, workerUID)
}

// ListForUser returns the post-completion visits of one customer.
func (s *VisitService) ListForUser(ctx context.Context, userUID string) ([]*models.VisitInfo, error) {
	return s.repo.ListVisitsForUser(ctx, userUID)
}

// ListAll returns every visit with customer data for the admin dashboard.
func (s *VisitService) ListAll(ctx context.Context, limit, offset int) ([]*models.VisitInfo, error) {
	return s.repo.ListAllVisits(ctx, limit, offset)
}

// ListUpdates returns the append-only worker update log of a visit.
func (s *VisitService) ListUpdates(ctx context.Context, visitID int) ([]*models.VisitUpdate, error) {
	return s.repo.ListVisitUpdates(ctx, visitID)
}

// ownedSubscription loads the visit and its subscription and verifies the
// caller owns it.
func (s *VisitService) ownedSubscription(ctx context.Context, visitID int, userUID string) (*models.Subscription, error) {
	v, err := s.repo.GetVisit(ctx, visitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("visit %d: %w", visitID, ErrNotFound)
		}
		return nil, err
	}
	sub, err := s.repo.GetSubscription(ctx, v.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserUID != userUID {
		return nil, ErrNotOwner
	}
	return sub, nil
}

// rejectStale turns a zero-row conditional update into the proper error:
// the visit is either gone or not in the state the event requires.
func (s *VisitService) rejectStale(ctx context.Context, visitID int, event models.VisitEvent) error {
	v, err := s.repo.GetVisit(ctx, visitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("visit %d: %w", visitID, ErrNotFound)
		}
		return err
	}
	required, _ := models.RequiredState(event)
	return fmt.Errorf("event %s requires state %s, visit %d is %s: %w",
		event, required, visitID, v.Status, ErrInvalidTransition)
}

func (s *VisitService) publishConfirmed(ctx context.Context, visitID int, sub *models.Subscription) {
	if s.notifier == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, sub.UserUID)
	if err != nil {
		s.log.Warn("failed to load user for notification", sl.Err(err))
		return
	}
	next, err := s.repo.GetSubscription(ctx, sub.ID)
	if err != nil {
		s.log.Warn("failed to reload subscription for notification", sl.Err(err))
		return
	}
	event := models.NotificationEvent{
		Email:               user.Email,
		Name:                user.Name,
		PackageName:         sub.PackageName,
		SubscriptionID:      sub.ID,
		VisitID:             visitID,
		NextMaintenanceDate: &next.NextMaintenanceDate,
	}
	if err := s.notifier.Publish(models.RoutingVisitConfirmed, event); err != nil {
		s.log.Warn("failed to publish visit confirmed event", sl.Err(err))
	}
}
