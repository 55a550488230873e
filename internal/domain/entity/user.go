package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a cashier or waiter account
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"establishment_id"`
	FirstName       string         `gorm:"size:255;not null" json:"first_name"`
	LastName        string         `gorm:"size:255" json:"last_name"`
	Username        string         `gorm:"size:255;unique;not null" json:"username"`
	Email           string         `gorm:"size:255" json:"email,omitempty"`
	Password        string         `gorm:"size:255;not null" json:"-"`
	Role            string         `gorm:"size:50;default:'cashier'" json:"role"` // admin, cashier, waiter
	Active          bool           `gorm:"default:true" json:"active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Establishment Establishment `gorm:"foreignKey:EstablishmentID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}
