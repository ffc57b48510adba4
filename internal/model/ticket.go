package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the ticket lifecycle state. open is initial, closed is terminal.
type Status string

const (
	StatusOpen       Status = "open"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAssigned, StatusInProgress, StatusCompleted, StatusClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities for listing: urgent first, unrecognized last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

// Ticket is a filed repair request tied to one car and one filer, optionally
// assigned to one mechanic. MechanicID is set when the ticket is first
// accepted and never cleared afterwards.
type Ticket struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	MechanicID  *uuid.UUID `gorm:"type:uuid;index" json:"mechanic_id"`
	Mechanic    *User      `gorm:"foreignKey:MechanicID;constraint:OnDelete:SET NULL" json:"mechanic,omitempty"`
	CarID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"car_id"`
	Car         *Car       `gorm:"constraint:OnDelete:CASCADE" json:"car,omitempty"`
	Status      Status     `gorm:"size:20;not null;default:open;index" json:"status"`
	Priority    Priority   `gorm:"size:20;not null;default:medium;index" json:"priority"`
	Description string     `gorm:"type:text;not null" json:"description"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Problems []TicketProblem `gorm:"foreignKey:TicketID" json:"problems,omitempty"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TicketProblem links a ticket to a catalogued problem with a free-text note.
type TicketProblem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_problem" json:"ticket_id"`
	ProblemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_problem" json:"problem_id"`
	Problem   *Problem  `gorm:"constraint:OnDelete:CASCADE" json:"problem,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (tp *TicketProblem) BeforeCreate(tx *gorm.DB) error {
	if tp.ID == uuid.Nil {
		tp.ID = uuid.New()
	}
	return nil
}
