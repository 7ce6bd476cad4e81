// Package subscription implements creation and maintenance of plant-care
// subscriptions, including the visit schedule generated for each new one.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenspire/plant-rental/internal/lib/schedule"
	"github.com/greenspire/plant-rental/internal/lib/sl"
	"github.com/greenspire/plant-rental/internal/models"
	"github.com/greenspire/plant-rental/internal/storage"
)

var (
	// ErrNotFound marks a missing subscription.
	ErrNotFound = storage.ErrNotFound
	// ErrNotOwner marks a caller acting on a foreign subscription.
	ErrNotOwner = errors.New("subscription does not belong to caller")
	// ErrInvalidStatus marks a status value outside the allowed set.
	ErrInvalidStatus = errors.New("invalid subscription status")
)

// SubscriptionRepository defines the storage methods used by the service.
type SubscriptionRepository interface {
	CreateSubscriptionWithVisits(ctx context.Context, sub models.Subscription,
		visits []models.ServiceVisit) (int, error)
	CreateVisitsIfAbsent(ctx context.Context, subscriptionID int,
		visits []models.ServiceVisit) (int, error)
	GetSubscription(ctx context.Context, id int) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error)
	ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// SubscriptionCache caches single subscriptions under their id key.
type SubscriptionCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Notifier publishes notification events.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// SubscriptionService carries the business logic around subscriptions.
type SubscriptionService struct {
	repo     SubscriptionRepository
	cache    SubscriptionCache
	notifier Notifier
	log      *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache SubscriptionCache,
	notifier Notifier, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

// Create persists a new subscription together with its full initial visit
// schedule in one transaction, so a subscription can never exist without
// visits. It returns the new subscription id.
func (s *SubscriptionService) Create(ctx context.Context, userUID string,
	req *models.DummySubscription) (int, error) {
	now := time.Now().UTC()

	sub := models.Subscription{
		UserUID:             userUID,
		PackageName:         req.PackageName,
		PlantsCount:         req.PlantsCount,
		Price:               req.Price,
		PotSize:             req.PotSize,
		Frequency:           req.MaintenanceSchedule.Frequency,
		Services:            req.MaintenanceSchedule.Services,
		TasksChecklist:      req.TasksChecklist,
		StartDate:           now,
		NextBillingDate:     schedule.NextBilling(now),
		NextMaintenanceDate: schedule.FirstMaintenance(now),
		Address:             req.DeliveryAddress.Address,
		City:                req.DeliveryAddress.City,
		Pincode:             req.DeliveryAddress.Pincode,
		Phone:               req.DeliveryAddress.Phone,
		Status:              models.SubscriptionActive,
	}

	visits := buildVisits(now, req.TasksChecklist)

	id, err := s.repo.CreateSubscriptionWithVisits(ctx, sub, visits)
	if err != nil {
		return 0, err
	}
	s.log.Info("subscription created",
		slog.Int("subscription_id", id), slog.String("user_uid", userUID))

	s.publishCreated(ctx, id, userUID, req.PackageName, sub.NextMaintenanceDate)
	return id, nil
}

// GenerateVisits creates the initial visit schedule for a subscription that
// has none yet. It is idempotent: calling it on a subscription that already
// has visits changes nothing and reports zero visits created.
func (s *SubscriptionService) GenerateVisits(ctx context.Context, id int) (int, error) {
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return 0, err
	}
	visits := buildVisits(time.Now().UTC(), sub.TasksChecklist)
	return s.repo.CreateVisitsIfAbsent(ctx, id, visits)
}

// Get returns a single subscription, checking ownership unless the caller is
// an admin. Results are cached.
func (s *SubscriptionService) Get(ctx context.Context, id int, userUID, role string) (*models.Subscription, error) {
	key := cacheKey(id)

	var cached models.Subscription
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		if role != models.RoleAdmin && cached.UserUID != userUID {
			return nil, ErrNotOwner
		}
		return &cached, nil
	}

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && sub.UserUID != userUID {
		return nil, ErrNotOwner
	}
	if err := s.cache.Set(key, sub, 5*time.Minute); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return sub, nil
}

// List returns the caller's subscriptions, newest first.
func (s *SubscriptionService) List(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, userUID)
}

// ListAll returns every subscription for the admin dashboard.
func (s *SubscriptionService) ListAll(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	return s.repo.ListAllSubscriptions(ctx, limit, offset)
}

// UpdateStatus moves a subscription into the given status. Customers may only
// pause or cancel their own subscriptions; admins may set any status.
func (s *SubscriptionService) UpdateStatus(ctx context.Context, id int,
	userUID, role, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	if role != models.RoleAdmin {
		if status != models.SubscriptionPaused && status != models.SubscriptionCancelled {
			return fmt.Errorf("%q not allowed for customer: %w", status, ErrInvalidStatus)
		}
		sub, err := s.repo.GetSubscription(ctx, id)
		if err != nil {
			return err
		}
		if sub.UserUID != userUID {
			return ErrNotOwner
		}
	}

	rows, err := s.repo.UpdateSubscriptionStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("subscription %d: %w", id, ErrNotFound)
	}
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("cache invalidate failed", sl.Err(err))
	}
	s.log.Info("subscription status updated",
		slog.Int("subscription_id", id), slog.String("status", status))
	return nil
}

// buildVisits lays out the initial schedule: one delivery visit the day after
// signup and four maintenance visits at weekly steps, seeded from the
// subscription's task checklist.
func buildVisits(now time.Time, tasks []string) []models.ServiceVisit {
	dates := schedule.VisitDates(now)

	visits := make([]models.ServiceVisit, 0, len(dates))
	visits = append(visits, models.ServiceVisit{
		VisitDate: dates[0],
		Status:    models.VisitPending,
		Checklist: schedule.DeliveryChecklist(),
	})
	for _, d := range dates[1:] {
		visits = append(visits, models.ServiceVisit{
			VisitDate: d,
			Status:    models.VisitPending,
			Checklist: schedule.MaintenanceChecklist(tasks),
		})
	}
	return visits
}

func (s *SubscriptionService) publishCreated(ctx context.Context, id int,
	userUID, packageName string, nextMaintenance time.Time) {
	if s.notifier == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to load user for notification", sl.Err(err))
		return
	}
	event := models.NotificationEvent{
		Email:               user.Email,
		Name:                user.Name,
		PackageName:         packageName,
		SubscriptionID:      id,
		NextMaintenanceDate: &nextMaintenance,
	}
	if err := s.notifier.Publish(models.RoutingSubscriptionCreated, event); err != nil {
		s.log.Warn("failed to publish subscription created event", sl.Err(err))
	}
}

func validStatus(status string) bool {
	switch status {
	case models.SubscriptionActive, models.SubscriptionPaused,
		models.SubscriptionCancelled, models.SubscriptionExpired:
		return true
	}
	return false
}

func cacheKey(id int) string {
	return fmt.Sprintf("subscription:%d", id)
}
