package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/cache"
	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/metrics"
	"github.com/AgboganEmmanuel/planty/internal/middleware"
	"github.com/AgboganEmmanuel/planty/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a notification does not exist for the user
var ErrNotFound = errors.New("notification not found")

const plantNameCacheTTL = 10 * time.Minute

// Service creates and reads user notifications
type Service struct {
	db    *gorm.DB
	redis *cache.RedisClient
}

// NewService creates a notification service. redis may be nil; the plant-name
// cache is then skipped.
func NewService(db *gorm.DB, redis *cache.RedisClient) *Service {
	return &Service{db: db, redis: redis}
}

// Create inserts one unread notification for the user. plantID may be nil.
func (s *Service) Create(ctx context.Context, userID string, typ models.NotificationType, plantID *string, message string) (*models.Notification, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	n := models.Notification{
		UserID:  userID,
		Type:    typ,
		PlantID: plantID,
		Message: message,
		IsRead:  false,
	}

	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	metrics.Get().NotificationsEmittedTotal.WithLabelValues(string(typ)).Inc()
	return &n, nil
}

// HasRecent reports whether a notification of the given type exists for the
// plant within the window. Used by the watering check's dedup policy.
func (s *Service) HasRecent(ctx context.Context, userID string, typ models.NotificationType, plantID string, window time.Duration) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND plant_id = ? AND created_at > ?",
			userID, typ, plantID, time.Now().UTC().Add(-window)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check recent notifications: %w", err)
	}
	return count > 0, nil
}

// Item is a notification enriched with the related plant's display name
type Item struct {
	models.Notification
	PlantName string `json:"plant_name,omitempty"`
}

// ListByUser returns all of the user's notifications, newest first, each with
// the related plant's name resolved best-effort (a missing plant yields an
// empty name, not a failure).
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Item, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	items := make([]Item, 0, len(notifications))
	for _, n := range notifications {
		item := Item{Notification: n}
		if n.PlantID != nil {
			item.PlantName = s.resolvePlantName(ctx, *n.PlantID)
		}
		items = append(items, item)
	}
	return items, nil
}

// MarkRead flips is_read on one notification owned by the user
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// resolvePlantName looks up a plant's display name, going through Redis when
// available. Lookup failures are logged and yield an empty name.
func (s *Service) resolvePlantName(ctx context.Context, plantID string) string {
	cacheKey := "plant_name:" + plantID

	if s.redis != nil {
		if name, err := s.redis.Get(ctx, cacheKey); err == nil {
			middleware.RecordCacheHit("plant_name")
			return name
		}
		middleware.RecordCacheMiss("plant_name")
	}

	var plant models.Plant
	err := s.db.WithContext(ctx).Select("plant_name").Where("id = ?", plantID).First(&plant).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Warn("Failed to resolve plant name",
				logger.WithPlantID(plantID),
				zap.Error(err),
			)
		}
		return ""
	}

	if s.redis != nil {
		if err := s.redis.SetEx(ctx, cacheKey, plant.PlantName, plantNameCacheTTL); err != nil {
			logger.Log.Debug("Failed to cache plant name", zap.Error(err))
		}
	}

	return plant.PlantName
}
