package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/models"
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
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			password_hash TEXT,
			full_name TEXT,
			avatar_url TEXT,
			last_active_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
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

func createTestUser(t *testing.T, db *gorm.DB, id string) *models.User {
	user := &models.User{
		ID:    id,
		Email: id + "@example.com",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPlant(t *testing.T, db *gorm.DB, id, userID, name string) *models.Plant {
	plant := &models.Plant{
		ID:                 id,
		UserID:             userID,
		PlantName:          name,
		Species:            "Monstera deliciosa",
		IdentificationDate: time.Now().UTC(),
	}
	require.NoError(t, db.Create(plant).Error)
	return plant
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	user := createTestUser(t, db, "user1")
	plant := createTestPlant(t, db, "plant1", user.ID, "Monstera")

	n, err := svc.Create(context.Background(), user.ID, models.NotificationPlantAdded, &plant.ID, "Monstera was added to your collection")
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, user.ID, n.UserID)
	assert.Equal(t, models.NotificationPlantAdded, n.Type)
	require.NotNil(t, n.PlantID)
	assert.Equal(t, plant.ID, *n.PlantID)
	assert.False(t, n.IsRead)
}

func TestListByUser_NewestFirstWithPlantNames(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	user := createTestUser(t, db, "user1")
	other := createTestUser(t, db, "user2")
	plant := createTestPlant(t, db, "plant1", user.ID, "Monstera")

	old := models.Notification{
		ID:        "n-old",
		UserID:    user.ID,
		Type:      models.NotificationPlantAdded,
		PlantID:   &plant.ID,
		Message:   "older",
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, db.Create(&old).Error)

	recent := models.Notification{
		ID:        "n-new",
		UserID:    user.ID,
		Type:      models.NotificationWateringOverdue,
		PlantID:   &plant.ID,
		Message:   "newer",
		CreatedAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&recent).Error)

	// Another user's notification must not leak into the list
	_, err := svc.Create(context.Background(), other.ID, models.NotificationPlantAdded, nil, "not yours")
	require.NoError(t, err)

	items, err := svc.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "n-new", items[0].ID)
	assert.Equal(t, "n-old", items[1].ID)
	assert.Equal(t, "Monstera", items[0].PlantName)
	assert.Equal(t, "Monstera", items[1].PlantName)
}

func TestHasRecent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	user := createTestUser(t, db, "user1")
	plant := createTestPlant(t, db, "plant1", user.ID, "Monstera")

	_, err := svc.Create(context.Background(), user.ID, models.NotificationWateringOverdue, &plant.ID, "overdue")
	require.NoError(t, err)

	recent, err := svc.HasRecent(context.Background(), user.ID, models.NotificationWateringOverdue, plant.ID, time.Hour)
	require.NoError(t, err)
	assert.True(t, recent)

	// A different type for the same plant does not count
	recent, err = svc.HasRecent(context.Background(), user.ID, models.NotificationWateringDueToday, plant.ID, time.Hour)
	require.NoError(t, err)
	assert.False(t, recent)

	// Outside the window nothing is found
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", user.ID).
		Update("created_at", time.Now().Add(-3*time.Hour)).Error)

	recent, err = svc.HasRecent(context.Background(), user.ID, models.NotificationWateringOverdue, plant.ID, time.Hour)
	require.NoError(t, err)
	assert.False(t, recent)
}

func TestMarkRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	user := createTestUser(t, db, "user1")
	other := createTestUser(t, db, "user2")

	n, err := svc.Create(context.Background(), user.ID, models.NotificationPlantAdded, nil, "hello")
	require.NoError(t, err)

	// Another user cannot mark it
	err = svc.MarkRead(context.Background(), other.ID, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), user.ID, n.ID))

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, "id = ?", n.ID).Error)
	assert.True(t, reloaded.IsRead)

	err = svc.MarkRead(context.Background(), user.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
