package watering

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/models"
	"github.com/AgboganEmmanuel/planty/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

// setupTestDB creates an in-memory SQLite database. Tables are created with
// raw SQL because the models carry PostgreSQL defaults like gen_random_uuid.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE plants (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			plant_name TEXT NOT NULL,
			species TEXT NOT NULL,
			image_url TEXT,
			additional_notes TEXT,
			information TEXT,
			identification_date DATETIME,
			last_watered DATETIME,
			next_watering_date DATETIME,
			watering_frequency INTEGER DEFAULT 7,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			plant_id TEXT,
			message TEXT NOT NULL,
			is_read INTEGER DEFAULT 0,
			created_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	return db
}

// recordingScheduler captures scheduled reminders
type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledReminder
}

type scheduledReminder struct {
	Title string
	Body  string
	At    time.Time
}

func (r *recordingScheduler) ScheduleAt(title, body string, at time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, scheduledReminder{Title: title, Body: body, At: at})
	return "reminder-1", nil
}

func (r *recordingScheduler) Cancel(id string) error { return nil }

func createPlant(t *testing.T, db *gorm.DB, id, userID string, freq int, next *time.Time) *models.Plant {
	plant := &models.Plant{
		ID:                 id,
		UserID:             userID,
		PlantName:          "Plant " + id,
		Species:            "Monstera deliciosa",
		IdentificationDate: time.Now().UTC(),
		WateringFrequency:  freq,
		NextWateringDate:   next,
	}
	require.NoError(t, db.Create(plant).Error)
	return plant
}

func countNotifications(t *testing.T, db *gorm.DB, plantID string, typ models.NotificationType) int64 {
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("plant_id = ? AND type = ?", plantID, typ).
		Count(&count).Error)
	return count
}

func TestRecordWatering(t *testing.T) {
	db := setupTestDB(t)
	scheduler := &recordingScheduler{}
	tracker := NewTracker(db, notify.NewService(db, nil), scheduler, 0)

	createPlant(t, db, "plant1", "user1", 7, nil)

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	plant, err := tracker.RecordWatering(context.Background(), "user1", "plant1", now)
	require.NoError(t, err)

	require.NotNil(t, plant.LastWatered)
	require.NotNil(t, plant.NextWateringDate)
	assert.Equal(t, now, plant.LastWatered.UTC())
	// Watering every 7 days lands exactly one week out
	assert.Equal(t, now.AddDate(0, 0, 7), plant.NextWateringDate.UTC())

	assert.EqualValues(t, 1, countNotifications(t, db, "plant1", models.NotificationWateringComplete))

	require.Len(t, scheduler.scheduled, 1)
	reminder := scheduler.scheduled[0]
	assert.Equal(t, "Time to Water Your Plant!", reminder.Title)
	assert.Contains(t, reminder.Body, "Plant plant1")
	assert.Equal(t, now.AddDate(0, 0, 7), reminder.At.UTC())
}

func TestRecordWatering_DefaultsFrequency(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, notify.NewService(db, nil), nil, 0)

	createPlant(t, db, "plant1", "user1", 0, nil)

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	plant, err := tracker.RecordWatering(context.Background(), "user1", "plant1", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 7), plant.NextWateringDate.UTC())
}

func TestRecordWatering_NotFound(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, notify.NewService(db, nil), nil, 0)

	createPlant(t, db, "plant1", "user1", 7, nil)

	_, err := tracker.RecordWatering(context.Background(), "user2", "plant1", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tracker.RecordWatering(context.Background(), "user1", "missing", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckWateringNotifications(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, notify.NewService(db, nil), nil, 0)

	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

	yesterday := now.AddDate(0, 0, -1)
	tonight := time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC)
	nextWeek := now.AddDate(0, 0, 7)

	createPlant(t, db, "p-overdue", "user1", 7, &yesterday)
	createPlant(t, db, "p-today", "user1", 7, &tonight)
	createPlant(t, db, "p-future", "user1", 7, &nextWeek)
	createPlant(t, db, "p-unscheduled", "user1", 7, nil)
	createPlant(t, db, "p-other-user", "user2", 7, &yesterday)

	outcomes, err := tracker.CheckWateringNotifications(context.Background(), "user1", now)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	byPlant := make(map[string]CheckOutcome, len(outcomes))
	for _, o := range outcomes {
		byPlant[o.PlantID] = o
	}

	assert.Equal(t, StatusOverdue, byPlant["p-overdue"].Status)
	assert.Equal(t, []models.NotificationType{models.NotificationWateringOverdue}, byPlant["p-overdue"].Notified)
	assert.Equal(t, StatusDueToday, byPlant["p-today"].Status)
	assert.Equal(t, []models.NotificationType{models.NotificationWateringDueToday}, byPlant["p-today"].Notified)
	assert.Equal(t, StatusNotDue, byPlant["p-future"].Status)
	assert.Empty(t, byPlant["p-future"].Notified)
	assert.Equal(t, StatusUnscheduled, byPlant["p-unscheduled"].Status)

	// Due yesterday is overdue only, never due-today
	assert.EqualValues(t, 1, countNotifications(t, db, "p-overdue", models.NotificationWateringOverdue))
	assert.EqualValues(t, 0, countNotifications(t, db, "p-overdue", models.NotificationWateringDueToday))
	assert.EqualValues(t, 1, countNotifications(t, db, "p-today", models.NotificationWateringDueToday))
	assert.EqualValues(t, 0, countNotifications(t, db, "p-other-user", models.NotificationWateringOverdue))
}

func TestCheckWateringNotifications_PassedEarlierTodayFiresBoth(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, notify.NewService(db, nil), nil, 0)

	// Due at 08:00, checked at 15:00: the date has passed and it is still
	// today, so overdue and due-today both fire in the same pass
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	thisMorning := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	createPlant(t, db, "p1", "user1", 7, &thisMorning)

	outcomes, err := tracker.CheckWateringNotifications(context.Background(), "user1", now)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusOverdue, outcomes[0].Status)
	assert.ElementsMatch(t,
		[]models.NotificationType{models.NotificationWateringOverdue, models.NotificationWateringDueToday},
		outcomes[0].Notified)

	assert.EqualValues(t, 1, countNotifications(t, db, "p1", models.NotificationWateringOverdue))
	assert.EqualValues(t, 1, countNotifications(t, db, "p1", models.NotificationWateringDueToday))
}

func TestCheckWateringNotifications_DueLaterTodayStillCounts(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, notify.NewService(db, nil), nil, 0)

	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	tonight := time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC)
	createPlant(t, db, "p1", "user1", 7, &tonight)

	outcomes, err := tracker.CheckWateringNotifications(context.Background(), "user1", now)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusDueToday, outcomes[0].Status)
}

func TestCheckWateringNotifications_DedupWindow(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, notify.NewService(db, nil), nil, time.Hour)

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)
	createPlant(t, db, "p1", "user1", 7, &yesterday)

	outcomes, err := tracker.CheckWateringNotifications(context.Background(), "user1", now)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusOverdue, outcomes[0].Status)
	assert.Equal(t, []models.NotificationType{models.NotificationWateringOverdue}, outcomes[0].Notified)

	// Second pass inside the window is suppressed
	outcomes, err = tracker.CheckWateringNotifications(context.Background(), "user1", now)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusDeduplicated, outcomes[0].Status)
	assert.Empty(t, outcomes[0].Notified)

	assert.EqualValues(t, 1, countNotifications(t, db, "p1", models.NotificationWateringOverdue))
}

func TestCheckWateringNotifications_ZeroWindowEmitsEveryPass(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, notify.NewService(db, nil), nil, 0)

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)
	createPlant(t, db, "p1", "user1", 7, &yesterday)

	for i := 0; i < 2; i++ {
		outcomes, err := tracker.CheckWateringNotifications(context.Background(), "user1", now)
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.NotEmpty(t, outcomes[0].Notified)
	}

	assert.EqualValues(t, 2, countNotifications(t, db, "p1", models.NotificationWateringOverdue))
}
