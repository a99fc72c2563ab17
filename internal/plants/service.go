package plants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/enrich"
	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/models"
	"github.com/AgboganEmmanuel/planty/internal/notify"
	"github.com/AgboganEmmanuel/planty/internal/plantnet"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a plant does not exist for the user
	ErrNotFound = errors.New("plant not found")
	// ErrNoResult is returned when saving without an identification result
	ErrNoResult = errors.New("no identification result to save")
	// ErrNoUser is returned when no authenticated user is supplied
	ErrNoUser = errors.New("no authenticated user")
)

// Enricher produces a botanical description for a plant; it never fails
type Enricher interface {
	Describe(ctx context.Context, plantName, species string) string
}

var _ Enricher = (*enrich.Client)(nil)

// Service owns the plants table: the identify-and-save workflow plus
// list/get/delete, all scoped to the owning user.
type Service struct {
	db       *gorm.DB
	enricher Enricher
	notify   *notify.Service
}

// NewService creates a plant service
func NewService(db *gorm.DB, enricher Enricher, notifier *notify.Service) *Service {
	return &Service{db: db, enricher: enricher, notify: notifier}
}

// SaveIdentified persists the top identification result as a plant owned by
// the user. The display name is the first common name, falling back to the
// scientific name; the record carries the enrichment description and a JSON
// notes blob with confidence/family/genus. A plant_added notification is
// emitted best-effort.
func (s *Service) SaveIdentified(ctx context.Context, userID string, result *plantnet.Result, imageURL string) (*models.Plant, error) {
	if userID == "" {
		logger.Log.Warn("Save requested without an authenticated user")
		return nil, ErrNoUser
	}
	if result == nil || result.ScientificName == "" {
		logger.Log.Warn("Save requested without an identification result", logger.WithUserID(userID))
		return nil, ErrNoResult
	}

	displayName := result.ScientificName
	if len(result.CommonNames) > 0 && result.CommonNames[0] != "" {
		displayName = result.CommonNames[0]
	}

	information := s.enricher.Describe(ctx, displayName, result.ScientificName)

	notes, err := json.Marshal(models.IdentificationNotes{
		Confidence: result.Score,
		Family:     result.Family,
		Genus:      result.Genus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize identification notes: %w", err)
	}

	if imageURL == "" && len(result.ImageURLs) > 0 {
		imageURL = result.ImageURLs[0]
	}

	plant := models.Plant{
		UserID:             userID,
		PlantName:          displayName,
		Species:            result.ScientificName,
		ImageURL:           imageURL,
		AdditionalNotes:    string(notes),
		Information:        information,
		IdentificationDate: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&plant).Error; err != nil {
		logger.Log.Error("Failed to save identified plant",
			logger.WithUserID(userID),
			zap.String("species", result.ScientificName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save plant: %w", err)
	}

	// Best-effort; a failed notification never rolls back the saved plant
	if s.notify != nil {
		_, err := s.notify.Create(ctx, userID, models.NotificationPlantAdded, &plant.ID,
			fmt.Sprintf("%s was added to your collection", plant.PlantName))
		if err != nil {
			logger.Log.Warn("Failed to create plant_added notification",
				logger.WithPlantID(plant.ID),
				zap.Error(err),
			)
		}
	}

	return &plant, nil
}

// ListByUser returns the user's plants, newest identification first
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Plant, error) {
	var plants []models.Plant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("identification_date DESC").
		Find(&plants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

// Get fetches one plant by id, scoped to the user
func (s *Service) Get(ctx context.Context, userID, plantID string) (*models.Plant, error) {
	var plant models.Plant
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", plantID, userID).
		First(&plant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch plant: %w", err)
	}
	return &plant, nil
}

// Delete removes one plant by id, scoped to the user. Other users' records
// are never affected.
func (s *Service) Delete(ctx context.Context, userID, plantID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", plantID, userID).
		Delete(&models.Plant{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete plant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
