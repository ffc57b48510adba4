package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Car struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Make         string    `gorm:"size:255;not null" json:"make"`
	Model        string    `gorm:"size:255;not null" json:"model"`
	Year         int       `gorm:"not null" json:"year"`
	LicensePlate string    `gorm:"size:255;uniqueIndex;not null" json:"license_plate"`
	VIN          *string   `gorm:"size:255;uniqueIndex" json:"vin,omitempty"`
	Color        *string   `gorm:"size:255" json:"color,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Tickets []Ticket `gorm:"foreignKey:CarID" json:"tickets,omitempty"`
}

func (c *Car) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
