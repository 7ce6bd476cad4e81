package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/greenspire/plant-rental/internal/lib/schedule"
	"github.com/greenspire/plant-rental/internal/models"
)

const visitColumns = `id, subscription_id, visit_date, worker_uid, checklist, photos,
		notes, status, confirmed_at, created_at`

func scanVisit(row interface{ Scan(dest ...any) error }) (*models.ServiceVisit, error) {
	var v models.ServiceVisit
	var checklist, photos []byte
	var workerUID sql.NullString
	var confirmedAt sql.NullTime
	if err := row.Scan(&v.ID, &v.SubscriptionID, &v.VisitDate, &workerUID, &checklist,
		&photos, &v.Notes, &v.Status, &confirmedAt, &v.CreatedAt); err != nil {
		return nil, err
	}
	if workerUID.Valid {
		v.WorkerUID = &workerUID.String
	}
	if confirmedAt.Valid {
		v.ConfirmedAt = &confirmedAt.Time
	}
	if err := json.Unmarshal(checklist, &v.Checklist); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(photos, &v.Photos); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVisit returns a service visit by id.
func (s *Storage) GetVisit(ctx context.Context, id int) (*models.ServiceVisit, error) {
	const op = "storage.GetVisit"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + visitColumns + `
			  FROM service_visits WHERE id = $1`
	v, err := scanVisit(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// ListVisitsBySubscription returns the visits of one subscription ordered by
// visit date.
func (s *Storage) ListVisitsBySubscription(ctx context.Context, subscriptionID int) ([]*models.ServiceVisit, error) {
	const op = "storage.ListVisitsBySubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + visitColumns + `
			  FROM service_visits
			  WHERE subscription_id = $1
			  ORDER BY visit_date`
	rows, err := s.DB.QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ServiceVisit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListVisitsForWorker returns the visits assigned to one worker that are still
// in progress (ASSIGNED or COMPLETED_BY_WORKER), joined with the customer name
// and delivery address.
func (s *Storage) ListVisitsForWorker(ctx context.Context, workerUID string) ([]*models.VisitInfo, error) {
	const op = "storage.ListVisitsForWorker"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT v.id, v.subscription_id, v.visit_date, v.worker_uid, v.checklist, v.photos,
			      v.notes, v.status, v.confirmed_at, v.created_at, u.name, u.email, sub.address
			  FROM service_visits v
			  JOIN subscriptions sub ON v.subscription_id = sub.id
			  JOIN users u ON sub.user_uid = u.uid
			  WHERE v.worker_uid = $1
			    AND v.status IN ($2, $3)
			  ORDER BY v.visit_date`
	rows, err := s.DB.QueryContext(ctx, query, workerUID,
		models.VisitAssigned, models.VisitCompletedByWorker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectVisitInfos(rows, op)
}

// ListVisitsForUser returns the post-completion visits belonging to the
// subscriptions of one customer, newest first.
func (s *Storage) ListVisitsForUser(ctx context.Context, userUID string) ([]*models.VisitInfo, error) {
	const op = "storage.ListVisitsForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT v.id, v.subscription_id, v.visit_date, v.worker_uid, v.checklist, v.photos,
			      v.notes, v.status, v.confirmed_at, v.created_at, u.name, u.email, sub.address
			  FROM service_visits v
			  JOIN subscriptions sub ON v.subscription_id = sub.id
			  JOIN users u ON sub.user_uid = u.uid
			  WHERE sub.user_uid = $1
			    AND v.status IN ($2, $3, $4)
			  ORDER BY v.visit_date DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID,
		models.VisitCompletedByWorker, models.VisitConfirmed, models.VisitRequiresRevisit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectVisitInfos(rows, op)
}

// ListAllVisits returns every visit joined with customer data, ordered by
// visit date, for the admin dashboard.
func (s *Storage) ListAllVisits(ctx context.Context, limit, offset int) ([]*models.VisitInfo, error) {
	const op = "storage.ListAllVisits"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT v.id, v.subscription_id, v.visit_date, v.worker_uid, v.checklist, v.photos,
			      v.notes, v.status, v.confirmed_at, v.created_at, u.name, u.email, sub.address
			  FROM service_visits v
			  JOIN subscriptions sub ON v.subscription_id = sub.id
			  JOIN users u ON sub.user_uid = u.uid
			  ORDER BY v.visit_date
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectVisitInfos(rows, op)
}

func collectVisitInfos(rows *sql.Rows, op string) ([]*models.VisitInfo, error) {
	var result []*models.VisitInfo
	for rows.Next() {
		var vi models.VisitInfo
		var checklist, photos []byte
		var workerUID sql.NullString
		var confirmedAt sql.NullTime
		if err := rows.Scan(&vi.ID, &vi.SubscriptionID, &vi.VisitDate, &workerUID, &checklist,
			&photos, &vi.Notes, &vi.Status, &confirmedAt, &vi.CreatedAt,
			&vi.CustomerName, &vi.CustomerEmail, &vi.Address); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if workerUID.Valid {
			vi.WorkerUID = &workerUID.String
		}
		if confirmedAt.Valid {
			vi.ConfirmedAt = &confirmedAt.Time
		}
		if err := json.Unmarshal(checklist, &vi.Checklist); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(photos, &vi.Photos); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &vi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AssignWorker sets the worker of a visit and moves it to ASSIGNED, but only
// when the visit is still in the expected state. The state check in the WHERE
// clause is the optimistic guard against concurrent admin actions. Returns
// the number of affected rows: zero means the visit is missing or not in the
// expected state.
func (s *Storage) AssignWorker(ctx context.Context, visitID int, workerUID string, expected models.VisitStatus) (int, error) {
	const op = "storage.AssignWorker"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE service_visits
			  SET worker_uid = $1, status = $2
			  WHERE id = $3 AND status = $4`
	result, err := s.DB.ExecContext(ctx, query, workerUID, models.VisitAssigned, visitID, expected)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SubmitVisitWork stores the checklist, photos and notes of a worker
// submission, moves the visit to COMPLETED_BY_WORKER and appends a row to the
// append-only visit_updates log, all in one transaction. The status check is
// the optimistic guard. Returns the number of affected visit rows.
func (s *Storage) SubmitVisitWork(ctx context.Context, visitID int, workerUID string,
	checklist []models.ChecklistItem, photos []string, notes string) (int, error) {
	const op = "storage.SubmitVisitWork"
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

	checklistJSON, err := json.Marshal(checklist)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE service_visits
			  SET checklist = $1, photos = $2, notes = $3, status = $4
			  WHERE id = $5 AND status = $6 AND worker_uid = $7`
	result, err := tx.ExecContext(ctx, query,
		checklistJSON, photosJSON, notes, models.VisitCompletedByWorker,
		visitID, models.VisitAssigned, workerUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return 0, tx.Commit()
	}

	updateQuery := `INSERT INTO visit_updates (visit_id, worker_uid, notes, photos)
			  VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, updateQuery, visitID, workerUID, notes, photosJSON); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ConfirmVisit moves a COMPLETED_BY_WORKER visit to CONFIRMED_BY_CUSTOMER,
// stamps the confirmation time and, when the parent subscription is active,
// advances its next maintenance date by the cadence interval. Visit update and
// subscription update happen in one transaction. Returns the number of
// affected visit rows.
func (s *Storage) ConfirmVisit(ctx context.Context, visitID int, now time.Time) (int, error) {
	const op = "storage.ConfirmVisit"
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

	query := `UPDATE service_visits
			  SET status = $1, confirmed_at = $2
			  WHERE id = $3 AND status = $4
			  RETURNING subscription_id`
	var subscriptionID int
	err = tx.QueryRowContext(ctx, query,
		models.VisitConfirmed, now, visitID, models.VisitCompletedByWorker).Scan(&subscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, tx.Commit()
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var frequency, status string
	if err := tx.QueryRowContext(ctx,
		`SELECT frequency, status FROM subscriptions WHERE id = $1 FOR UPDATE`,
		subscriptionID).Scan(&frequency, &status); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if status == models.SubscriptionActive {
		next := schedule.NextMaintenance(now, frequency)
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET next_maintenance_date = $1 WHERE id = $2`,
			next, subscriptionID); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return 1, nil
}

// ReportVisitIssue moves a COMPLETED_BY_WORKER visit to REQUIRES_REVISIT and
// appends the issue comment to its notes. No worker is reassigned
// automatically. Returns the number of affected rows.
func (s *Storage) ReportVisitIssue(ctx context.Context, visitID int, comment string) (int, error) {
	const op = "storage.ReportVisitIssue"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE service_visits
			  SET status = $1,
			      notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END
			  WHERE id = $3 AND status = $4`
	result, err := s.DB.ExecContext(ctx, query,
		models.VisitRequiresRevisit, "Issue reported: "+comment,
		visitID, models.VisitCompletedByWorker)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListVisitUpdates returns the append-only worker update log of one visit,
// oldest first.
func (s *Storage) ListVisitUpdates(ctx context.Context, visitID int) ([]*models.VisitUpdate, error) {
	const op = "storage.ListVisitUpdates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, visit_id, worker_uid, notes, photos, created_at
			  FROM visit_updates
			  WHERE visit_id = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, visitID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.VisitUpdate
	for rows.Next() {
		var u models.VisitUpdate
		var photos []byte
		if err := rows.Scan(&u.ID, &u.VisitID, &u.WorkerUID, &u.Notes, &photos, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(photos, &u.Photos); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
