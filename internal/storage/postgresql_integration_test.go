package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenspire/plant-rental/internal/models"
)

func TestStorage_CreateSubscriptionWithVisits(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)

	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	sub := models.Subscription{
		UserUID:             userUID,
		PackageName:         "Green Office",
		PlantsCount:         6,
		Price:               1499,
		PotSize:             "medium",
		Frequency:           models.FrequencyWeekly,
		Services:            []string{"watering"},
		TasksChecklist:      []string{"watering"},
		StartDate:           now,
		NextBillingDate:     now.AddDate(0, 1, 0),
		NextMaintenanceDate: now.AddDate(0, 0, 7),
		Address:             "12 Garden Lane",
		City:                "Pune",
		Pincode:             "411001",
		Phone:               "+911234567890",
		Status:              models.SubscriptionActive,
	}
	visits := []models.ServiceVisit{
		{VisitDate: now.AddDate(0, 0, 1), Status: models.VisitPending,
			Checklist: []models.ChecklistItem{{Task: "Deliver plants"}}},
		{VisitDate: now.AddDate(0, 0, 7), Status: models.VisitPending,
			Checklist: []models.ChecklistItem{{Task: "watering"}}},
	}

	id, err := storage.CreateSubscriptionWithVisits(context.Background(), sub, visits)
	require.NoError(t, err)
	require.Greater(t, id, 0)

	got, err := storage.GetSubscription(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Green Office", got.PackageName)
	assert.Equal(t, userUID, got.UserUID)

	stored, err := storage.ListVisitsBySubscription(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, models.VisitPending, stored[0].Status)
	assert.Equal(t, "Deliver plants", stored[0].Checklist[0].Task)
}

func TestStorage_CreateVisitsIfAbsent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionActive)

	visits := []models.ServiceVisit{
		{VisitDate: time.Now().UTC(), Status: models.VisitPending},
		{VisitDate: time.Now().UTC().AddDate(0, 0, 7), Status: models.VisitPending},
	}

	count, err := storage.CreateVisitsIfAbsent(context.Background(), subID, visits)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = storage.CreateVisitsIfAbsent(context.Background(), subID, visits)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "second generation must not insert any rows")

	stored, err := storage.ListVisitsBySubscription(context.Background(), subID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	_, err = storage.CreateVisitsIfAbsent(context.Background(), 99999, visits)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_CreateVisitsIfAbsent_Concurrent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionActive)

	visits := []models.ServiceVisit{
		{VisitDate: time.Now().UTC(), Status: models.VisitPending},
		{VisitDate: time.Now().UTC().AddDate(0, 0, 7), Status: models.VisitPending},
	}

	const callers = 4
	counts := make(chan int, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for range callers {
		go func() {
			defer wg.Done()
			count, err := storage.CreateVisitsIfAbsent(context.Background(), subID, visits)
			assert.NoError(t, err)
			counts <- count
		}()
	}
	wg.Wait()
	close(counts)

	total := 0
	for count := range counts {
		total += count
	}
	assert.Equal(t, len(visits), total, "exactly one caller may insert")

	stored, err := storage.ListVisitsBySubscription(context.Background(), subID)
	require.NoError(t, err)
	assert.Len(t, stored, len(visits))
}

func TestStorage_AssignWorker(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	workerUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	factory.CreateUser(t, workerUID, "Ravi", "ravi@example.com", models.RoleWorker)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionActive)
	visitID := factory.CreateVisit(t, subID, nil, models.VisitPending, time.Now().UTC())

	rows, err := storage.AssignWorker(context.Background(), visitID, workerUID, models.VisitPending)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	visit, err := storage.GetVisit(context.Background(), visitID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitAssigned, visit.Status)
	require.NotNil(t, visit.WorkerUID)
	assert.Equal(t, workerUID, *visit.WorkerUID)

	// a second assignment finds no PENDING row
	rows, err = storage.AssignWorker(context.Background(), visitID, workerUID, models.VisitPending)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestStorage_SubmitVisitWork(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	workerUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	factory.CreateUser(t, workerUID, "Ravi", "ravi@example.com", models.RoleWorker)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionActive)
	visitID := factory.CreateVisit(t, subID, &workerUID, models.VisitAssigned, time.Now().UTC())

	checklist := []models.ChecklistItem{{Task: "watering", Completed: true}}
	photos := []string{"https://cdn.example.com/v1.jpg"}

	rows, err := storage.SubmitVisitWork(context.Background(), visitID, workerUID,
		checklist, photos, "all plants healthy")
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	visit, err := storage.GetVisit(context.Background(), visitID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitCompletedByWorker, visit.Status)
	assert.True(t, visit.Checklist[0].Completed)
	assert.Equal(t, "all plants healthy", visit.Notes)

	updates, err := storage.ListVisitUpdates(context.Background(), visitID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, workerUID, updates[0].WorkerUID)

	// a foreign worker finds no matching row
	rows, err = storage.SubmitVisitWork(context.Background(), visitID, newTestUID(),
		checklist, photos, "sneaky")
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestStorage_ConfirmVisit(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	workerUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	factory.CreateUser(t, workerUID, "Ravi", "ravi@example.com", models.RoleWorker)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionActive)
	visitID := factory.CreateVisit(t, subID, &workerUID, models.VisitCompletedByWorker, time.Now().UTC())

	before, err := storage.GetSubscription(context.Background(), subID)
	require.NoError(t, err)

	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	rows, err := storage.ConfirmVisit(context.Background(), visitID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	visit, err := storage.GetVisit(context.Background(), visitID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitConfirmed, visit.Status)
	require.NotNil(t, visit.ConfirmedAt)

	// weekly cadence moves the next maintenance date to now + 7 days
	after, err := storage.GetSubscription(context.Background(), subID)
	require.NoError(t, err)
	assert.False(t, after.NextMaintenanceDate.Equal(before.NextMaintenanceDate))
	assert.Equal(t, now.AddDate(0, 0, 7), after.NextMaintenanceDate.UTC())

	// confirming twice finds no COMPLETED_BY_WORKER row
	rows, err = storage.ConfirmVisit(context.Background(), visitID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestStorage_ConfirmVisit_PausedSubscriptionKeepsDate(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionPaused)
	visitID := factory.CreateVisit(t, subID, nil, models.VisitCompletedByWorker, time.Now().UTC())

	before, err := storage.GetSubscription(context.Background(), subID)
	require.NoError(t, err)

	rows, err := storage.ConfirmVisit(context.Background(), visitID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	after, err := storage.GetSubscription(context.Background(), subID)
	require.NoError(t, err)
	assert.True(t, after.NextMaintenanceDate.Equal(before.NextMaintenanceDate),
		"a paused subscription keeps its maintenance date")
}

func TestStorage_ReportVisitIssue(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionActive)
	visitID := factory.CreateVisit(t, subID, nil, models.VisitCompletedByWorker, time.Now().UTC())

	rows, err := storage.ReportVisitIssue(context.Background(), visitID, "leaves wilting")
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	visit, err := storage.GetVisit(context.Background(), visitID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitRequiresRevisit, visit.Status)
	assert.Contains(t, visit.Notes, "Issue reported: leaves wilting")
}

func TestStorage_UpdateSubscriptionStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := newTestUID()
	factory.CreateUser(t, userUID, "Asha", "asha@example.com", models.RoleCustomer)
	subID := factory.CreateSubscription(t, userUID, "Green Office",
		models.FrequencyWeekly, models.SubscriptionActive)

	rows, err := storage.UpdateSubscriptionStatus(context.Background(), subID, models.SubscriptionPaused)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	got, err := storage.GetSubscription(context.Background(), subID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionPaused, got.Status)

	rows, err = storage.UpdateSubscriptionStatus(context.Background(), 99999, models.SubscriptionPaused)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	uid := newTestUID()
	user := models.User{
		UID: uid, Name: "Asha", Email: "asha@example.com",
		PasswordHash: "hashedpassword", Role: models.RoleCustomer,
	}

	gotUID, err := storage.RegisterUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, uid, gotUID)

	byEmail, err := storage.GetUserByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, byEmail.UID)

	_, err = storage.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	rows, err := storage.UpdateUserRole(context.Background(), uid, models.RoleWorker)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	workers, err := storage.ListUsersByRole(context.Background(), models.RoleWorker)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, uid, workers[0].UID)
}

func TestStorage_Plants(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	activeID := factory.CreatePlant(t, "Monstera Deliciosa", "Indoor", "Large", true)
	factory.CreatePlant(t, "Retired Fern", "Indoor", "Small", false)

	plants, total, err := storage.ListPlants(context.Background(), models.PlantFilter{
		Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "inactive plants are not listed")
	require.Len(t, plants, 1)
	assert.Equal(t, activeID, plants[0].ID)

	got, err := storage.GetPlant(context.Background(), activeID)
	require.NoError(t, err)
	assert.Equal(t, "Monstera Deliciosa", got.Name)

	rows, err := storage.RemovePlant(context.Background(), activeID)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	_, err = storage.GetPlant(context.Background(), activeID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ContactMessages(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	id, err := storage.CreateContactMessage(context.Background(), models.ContactMessage{
		Name: "Asha", Email: "asha@example.com", Message: "My fern is dying",
	})
	require.NoError(t, err)
	require.Greater(t, id, 0)

	replied, err := storage.ReplyContactMessage(context.Background(), id, "water it less")
	require.NoError(t, err)
	require.NotNil(t, replied.Reply)
	assert.Equal(t, "water it less", *replied.Reply)
	assert.NotNil(t, replied.RepliedAt)

	msgs, err := storage.ListContactMessages(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	_, err = storage.ReplyContactMessage(context.Background(), 99999, "hello?")
	assert.ErrorIs(t, err, ErrNotFound)
}
