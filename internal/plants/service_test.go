package plants

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/models"
	"github.com/AgboganEmmanuel/planty/internal/notify"
	"github.com/AgboganEmmanuel/planty/internal/plantnet"
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

// stubEnricher returns a fixed description
type stubEnricher struct {
	text string
}

func (s stubEnricher) Describe(ctx context.Context, plantName, species string) string {
	return s.text
}

func newTestService(db *gorm.DB) *Service {
	return NewService(db, stubEnricher{text: "A hardy tropical plant."}, notify.NewService(db, nil))
}

func monsteraResult() *plantnet.Result {
	return &plantnet.Result{
		ScientificName: "Monstera deliciosa",
		Score:          0.91,
		CommonNames:    []string{"Swiss cheese plant", "Split-leaf philodendron"},
		Family:         "Araceae",
		Genus:          "Monstera",
		ImageURLs:      []string{"https://example.com/monstera.jpg"},
	}
}

func TestSaveIdentified(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	plant, err := svc.SaveIdentified(context.Background(), "user1", monsteraResult(), "https://example.com/upload.jpg")
	require.NoError(t, err)

	assert.NotEmpty(t, plant.ID)
	assert.Equal(t, "user1", plant.UserID)
	// First common name wins as the display name
	assert.Equal(t, "Swiss cheese plant", plant.PlantName)
	assert.Equal(t, "Monstera deliciosa", plant.Species)
	assert.Equal(t, "https://example.com/upload.jpg", plant.ImageURL)
	assert.Equal(t, "A hardy tropical plant.", plant.Information)
	assert.False(t, plant.IdentificationDate.IsZero())

	var notes models.IdentificationNotes
	require.NoError(t, json.Unmarshal([]byte(plant.AdditionalNotes), &notes))
	assert.Equal(t, 0.91, notes.Confidence)
	assert.Equal(t, "Araceae", notes.Family)
	assert.Equal(t, "Monstera", notes.Genus)

	// A plant_added notification was emitted
	var n models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", "user1", models.NotificationPlantAdded).First(&n).Error)
	require.NotNil(t, n.PlantID)
	assert.Equal(t, plant.ID, *n.PlantID)
	assert.Contains(t, n.Message, "Swiss cheese plant")
}

func TestSaveIdentified_FallsBackToScientificName(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	result := monsteraResult()
	result.CommonNames = nil

	plant, err := svc.SaveIdentified(context.Background(), "user1", result, "")
	require.NoError(t, err)
	assert.Equal(t, "Monstera deliciosa", plant.PlantName)
	// With no upload URL the identification image is used
	assert.Equal(t, "https://example.com/monstera.jpg", plant.ImageURL)
}

func TestSaveIdentified_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	_, err := svc.SaveIdentified(context.Background(), "", monsteraResult(), "")
	assert.ErrorIs(t, err, ErrNoUser)

	_, err = svc.SaveIdentified(context.Background(), "user1", nil, "")
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = svc.SaveIdentified(context.Background(), "user1", &plantnet.Result{}, "")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestListByUser_NewestIdentificationFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	for i, id := range []string{"p-old", "p-mid", "p-new"} {
		plant := models.Plant{
			ID:                 id,
			UserID:             "user1",
			PlantName:          "Plant " + id,
			Species:            "Species",
			IdentificationDate: time.Now().Add(time.Duration(i-3) * 24 * time.Hour),
		}
		require.NoError(t, db.Create(&plant).Error)
	}
	other := models.Plant{
		ID:                 "p-other",
		UserID:             "user2",
		PlantName:          "Not yours",
		Species:            "Species",
		IdentificationDate: time.Now(),
	}
	require.NoError(t, db.Create(&other).Error)

	list, err := svc.ListByUser(context.Background(), "user1")
	require.NoError(t, err)

	require.Len(t, list, 3)
	assert.Equal(t, "p-new", list[0].ID)
	assert.Equal(t, "p-mid", list[1].ID)
	assert.Equal(t, "p-old", list[2].ID)
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	saved, err := svc.SaveIdentified(context.Background(), "user1", monsteraResult(), "")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "user1", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)

	// Scoped to the owner
	_, err = svc.Get(context.Background(), "user2", saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "user1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_ScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	saved, err := svc.SaveIdentified(context.Background(), "user1", monsteraResult(), "")
	require.NoError(t, err)

	// Another user's delete must not touch the record
	err = svc.Delete(context.Background(), "user2", saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "user1", saved.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "user1", saved.ID))

	_, err = svc.Get(context.Background(), "user1", saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice reports not found
	err = svc.Delete(context.Background(), "user1", saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
