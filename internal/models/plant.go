package models

import (
	"time"

	"gorm.io/gorm"
)

// Plant represents an identified plant saved to a user's collection
type Plant struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	// Identification data
	PlantName string `gorm:"not null" json:"plant_name"`
	Species   string `gorm:"not null" json:"species"` // scientific name
	ImageURL  string `json:"image_url"`

	// JSON string holding confidence/family/genus from the identification
	AdditionalNotes string `gorm:"type:text" json:"additional_notes"`

	// Generated botanical description
	Information string `gorm:"type:text" json:"information"`

	IdentificationDate time.Time `gorm:"not null" json:"identification_date"`

	// Watering schedule
	LastWatered       *time.Time `json:"last_watered"`
	NextWateringDate  *time.Time `gorm:"index" json:"next_watering_date"`
	WateringFrequency int        `gorm:"default:7" json:"watering_frequency"` // days

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IdentificationNotes is the shape serialized into AdditionalNotes
type IdentificationNotes struct {
	Confidence float64 `json:"confidence"`
	Family     string  `json:"family"`
	Genus      string  `json:"genus"`
}

func (p *Plant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.IdentificationDate.IsZero() {
		p.IdentificationDate = time.Now().UTC()
	}
	return nil
}
