package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType represents the kind of notification
type NotificationType string

const (
	NotificationPlantAdded       NotificationType = "plant_added"
	NotificationWateringComplete NotificationType = "watering_completed"
	NotificationWateringDueToday NotificationType = "watering_due_today"
	NotificationWateringOverdue  NotificationType = "watering_overdue"
)

// Notification represents a user-facing notification row.
// Rows are only ever inserted and flagged read, never deleted.
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Type NotificationType `gorm:"not null" json:"type"`

	// Optional related plant
	PlantID *string `gorm:"type:uuid;index" json:"plant_id,omitempty"`
	Plant   *Plant  `gorm:"foreignKey:PlantID" json:"-"`

	Message string `gorm:"type:text;not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
