package seed

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/models"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// A small corpus of real species so seeded collections look plausible
var seedSpecies = []struct {
	Scientific string
	Common     string
	Family     string
	Genus      string
}{
	{"Monstera deliciosa", "Swiss cheese plant", "Araceae", "Monstera"},
	{"Ficus lyrata", "Fiddle-leaf fig", "Moraceae", "Ficus"},
	{"Sansevieria trifasciata", "Snake plant", "Asparagaceae", "Sansevieria"},
	{"Epipremnum aureum", "Golden pothos", "Araceae", "Epipremnum"},
	{"Spathiphyllum wallisii", "Peace lily", "Araceae", "Spathiphyllum"},
	{"Chlorophytum comosum", "Spider plant", "Asparagaceae", "Chlorophytum"},
	{"Zamioculcas zamiifolia", "ZZ plant", "Araceae", "Zamioculcas"},
	{"Calathea orbifolia", "Prayer plant", "Marantaceae", "Calathea"},
	{"Aloe vera", "Aloe", "Asphodelaceae", "Aloe"},
	{"Pilea peperomioides", "Chinese money plant", "Urticaceae", "Pilea"},
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(20)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating plants...")
	plants, err := s.seedPlants(users, 100)
	if err != nil {
		return fmt.Errorf("failed to seed plants: %w", err)
	}

	logger.Log.Info("Creating notifications...")
	if err := s.seedNotifications(plants); err != nil {
		return fmt.Errorf("failed to seed notifications: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", len(users)),
		zap.Int("plants", len(plants)),
	)
	return nil
}

// SeedTest seeds a minimal dataset for integration tests
func (s *Seeder) SeedTest() error {
	users, err := s.seedUsers(3)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if _, err := s.seedPlants(users, 9); err != nil {
		return fmt.Errorf("failed to seed plants: %w", err)
	}
	return nil
}

// Clean removes seeded rows (users with @example.com emails and their data)
func (s *Seeder) Clean() error {
	var users []models.User
	if err := s.db.Where("email LIKE '%@example.com'").Find(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		if err := s.db.Where("user_id = ?", u.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := s.db.Where("user_id = ?", u.ID).Unscoped().Delete(&models.Plant{}).Error; err != nil {
			return err
		}
		if err := s.db.Unscoped().Delete(&u).Error; err != nil {
			return err
		}
	}

	logger.Log.Info("Removed seed data", zap.Int("users", len(users)))
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	var seedUserCount int64
	s.db.Model(&models.User{}).Where("email LIKE '%@example.com'").Count(&seedUserCount)
	if seedUserCount >= int64(count) {
		var users []models.User
		if err := s.db.Where("email LIKE '%@example.com'").Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing seed users, skipping creation",
			zap.Int64("seed_users", seedUserCount))
		return users, nil
	}

	// Default dev password is "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var users []models.User
	for i := 0; i < count; i++ {
		username := gofakeit.Username()
		email := fmt.Sprintf("%s%d@example.com", username, i)

		user := models.User{
			Email:        email,
			PasswordHash: string(hashedPassword),
			FullName:     gofakeit.Name(),
			AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *Seeder) seedPlants(users []models.User, count int) ([]models.Plant, error) {
	var plants []models.Plant

	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		species := seedSpecies[rand.Intn(len(seedSpecies))]

		notes, _ := json.Marshal(models.IdentificationNotes{
			Confidence: 0.5 + rand.Float64()*0.5,
			Family:     species.Family,
			Genus:      species.Genus,
		})

		identified := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
		plant := models.Plant{
			UserID:             user.ID,
			PlantName:          species.Common,
			Species:            species.Scientific,
			ImageURL:           fmt.Sprintf("https://picsum.photos/seed/plant-%d/640/480", i),
			AdditionalNotes:    string(notes),
			Information:        gofakeit.Paragraph(1, 3, 12, " "),
			IdentificationDate: identified,
			WateringFrequency:  []int{3, 5, 7, 10, 14}[rand.Intn(5)],
		}

		// Most plants carry watering state; some were never watered
		if rand.Float64() < 0.8 {
			last := gofakeit.DateRange(identified, time.Now())
			next := last.AddDate(0, 0, plant.WateringFrequency)
			plant.LastWatered = &last
			plant.NextWateringDate = &next
		}

		if err := s.db.Create(&plant).Error; err != nil {
			return nil, err
		}
		plants = append(plants, plant)
	}

	return plants, nil
}

func (s *Seeder) seedNotifications(plants []models.Plant) error {
	for i := range plants {
		p := &plants[i]

		n := models.Notification{
			UserID:  p.UserID,
			Type:    models.NotificationPlantAdded,
			PlantID: &p.ID,
			Message: fmt.Sprintf("%s was added to your collection", p.PlantName),
			IsRead:  rand.Float64() < 0.6,
		}
		if err := s.db.Create(&n).Error; err != nil {
			return err
		}

		if p.NextWateringDate != nil && p.NextWateringDate.Before(time.Now()) {
			overdue := models.Notification{
				UserID:  p.UserID,
				Type:    models.NotificationWateringOverdue,
				PlantID: &p.ID,
				Message: fmt.Sprintf("Your %s is overdue for watering!", p.PlantName),
			}
			if err := s.db.Create(&overdue).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
