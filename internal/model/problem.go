package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is the fixed catalog taxonomy for mechanical problems.
type Category string

const (
	CategoryEngine       Category = "engine"
	CategoryTransmission Category = "transmission"
	CategoryElectrical   Category = "electrical"
	CategoryBrakes       Category = "brakes"
	CategorySuspension   Category = "suspension"
	CategorySteering     Category = "steering"
	CategoryBody         Category = "body"
	CategoryOther        Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEngine, CategoryTransmission, CategoryElectrical, CategoryBrakes,
		CategorySuspension, CategorySteering, CategoryBody, CategoryOther:
		return true
	}
	return false
}

// Problem is shared catalog data describing a known issue, not owned by
// any user. Administered by mechanics and admins.
type Problem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Category    Category  `gorm:"size:50;not null;index" json:"category"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	// No column default: gorm drops zero-valued fields from the INSERT when
	// one is set, which would force inactive problems back to active.
	IsActive bool `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Problem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
