package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// CarProblem records that a problem was detected on a car, independent of
// which ticket (if any) ended up addressing it. Rows survive ticket deletion.
type CarProblem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CarID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"car_id"`
	Car        *Car       `gorm:"constraint:OnDelete:CASCADE" json:"car,omitempty"`
	ProblemID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"problem_id"`
	Problem    *Problem   `gorm:"constraint:OnDelete:CASCADE" json:"problem,omitempty"`
	TicketID   *uuid.UUID `gorm:"type:uuid;index" json:"ticket_id"`
	DetectedAt time.Time  `gorm:"not null;index" json:"detected_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
	Severity   Severity   `gorm:"size:20;not null;default:moderate" json:"severity"`
	Notes      string     `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (cp *CarProblem) BeforeCreate(tx *gorm.DB) error {
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	return nil
}

// SeverityForPriority maps a ticket priority to the severity recorded in the
// car's problem history when the ticket is filed.
func SeverityForPriority(p Priority) Severity {
	switch p {
	case PriorityUrgent:
		return SeveritySevere
	case PriorityHigh, PriorityMedium:
		return SeverityModerate
	}
	return SeverityMinor
}
