package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Establishment represents one restaurant location in the multitenant system
type Establishment struct {
	ID        uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	Name      string                `gorm:"size:255;not null" json:"name"`
	Slug      string                `gorm:"size:255;unique;not null" json:"slug"`
	TaxID     string                `gorm:"size:50" json:"tax_id"`
	Settings  EstablishmentSettings `gorm:"type:jsonb;serializer:json" json:"settings"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	DeletedAt gorm.DeletedAt        `gorm:"index" json:"-"`
}

// EstablishmentSettings holds per-establishment behavior switches
type EstablishmentSettings struct {
	// AllowEarlySettlement permits collecting payment before the kitchen
	// has finished (order not yet Closed).
	AllowEarlySettlement bool `json:"allow_early_settlement"`
	// DefaultTipPercent pre-fills the tip percentage on new divisions.
	DefaultTipPercent float64 `json:"default_tip_percent"`
}

// BeforeCreate generates a UUID before creating a new establishment
func (e *Establishment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Establishment model
func (Establishment) TableName() string {
	return "establishments"
}
