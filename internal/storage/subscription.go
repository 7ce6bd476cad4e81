package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/greenspire/plant-rental/internal/models"
)

const subscriptionColumns = `id, user_uid, package_name, plants_count, price, pot_size,
		frequency, services, tasks_checklist, start_date, next_billing_date, next_maintenance_date,
		address, city, pincode, phone, status, created_at`

func scanSubscription(row interface{ Scan(dest ...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	var services, tasks []byte
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.PackageName, &sub.PlantsCount, &sub.Price,
		&sub.PotSize, &sub.Frequency, &services, &tasks, &sub.StartDate, &sub.NextBillingDate,
		&sub.NextMaintenanceDate, &sub.Address, &sub.City, &sub.Pincode, &sub.Phone,
		&sub.Status, &sub.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(services, &sub.Services); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tasks, &sub.TasksChecklist); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscriptionWithVisits inserts a subscription together with its
// generated visit batch in one transaction, so a mid-sequence failure never
// leaves a subscription without visits or orphaned visits. Returns the new
// subscription id.
func (s *Storage) CreateSubscriptionWithVisits(ctx context.Context, sub models.Subscription, visits []models.ServiceVisit) (int, error) {
	const op = "storage.CreateSubscriptionWithVisits"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	services, err := json.Marshal(sub.Services)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	tasks, err := json.Marshal(sub.TasksChecklist)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO subscriptions (user_uid, package_name, plants_count, price, pot_size,
			      frequency, services, tasks_checklist, start_date, next_billing_date,
			      next_maintenance_date, address, city, pincode, phone, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			  RETURNING id`
	var newID int
	if err := tx.QueryRowContext(ctx, query,
		sub.UserUID, sub.PackageName, sub.PlantsCount, sub.Price, sub.PotSize,
		sub.Frequency, services, tasks, sub.StartDate, sub.NextBillingDate, sub.NextMaintenanceDate,
		sub.Address, sub.City, sub.Pincode, sub.Phone, sub.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := insertVisits(ctx, tx, newID, visits); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CreateVisitsIfAbsent inserts the visit batch for a subscription only when
// the subscription has no visits yet, making generation idempotent on the
// subscription id. Returns the number of visits inserted.
func (s *Storage) CreateVisitsIfAbsent(ctx context.Context, subscriptionID int, visits []models.ServiceVisit) (int, error) {
	const op = "storage.CreateVisitsIfAbsent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Lock the subscription row so concurrent generate calls serialize on the
	// existence check instead of both inserting.
	var lockedID int
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM subscriptions WHERE id = $1 FOR UPDATE`,
		subscriptionID).Scan(&lockedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM service_visits WHERE subscription_id = $1)`,
		subscriptionID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return 0, tx.Commit()
	}

	if err := insertVisits(ctx, tx, subscriptionID, visits); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(visits), nil
}

func insertVisits(ctx context.Context, tx *sql.Tx, subscriptionID int, visits []models.ServiceVisit) error {
	query := `INSERT INTO service_visits (subscription_id, visit_date, worker_uid, checklist,
			      photos, notes, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, v := range visits {
		checklist, err := json.Marshal(v.Checklist)
		if err != nil {
			return err
		}
		photos, err := json.Marshal(v.Photos)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			subscriptionID, v.VisitDate, v.WorkerUID, checklist, photos, v.Notes, v.Status); err != nil {
			return err
		}
	}
	return nil
}

// GetSubscription returns a subscription by id.
func (s *Storage) GetSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListSubscriptions returns the subscriptions of one user, newest first.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllSubscriptions returns every subscription, newest first, with pagination.
func (s *Storage) ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscriptionStatus transitions a subscription to a new status and
// returns the number of affected rows.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int, error) {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
