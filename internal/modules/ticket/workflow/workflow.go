// Package workflow implements the ticket lifecycle state machine:
// open → assigned → in_progress → completed → closed. Authorization is the
// caller's job; these functions only enforce state guards and apply the
// transition together with its side effects.
package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garagedesk/garagedesk/internal/model"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

// Accept assigns an open ticket to a mechanic and stamps AcceptedAt.
func Accept(t *model.Ticket, mechanicID uuid.UUID, now time.Time) error {
	if t.Status != model.StatusOpen {
		return fmt.Errorf("this ticket has already been accepted: %w", apperror.ErrConflict)
	}
	t.Status = model.StatusAssigned
	t.MechanicID = &mechanicID
	at := now
	t.AcceptedAt = &at
	return nil
}

// Start moves an open or assigned ticket into in_progress.
func Start(t *model.Ticket) error {
	if t.Status != model.StatusOpen && t.Status != model.StatusAssigned {
		return fmt.Errorf("invalid ticket status: %w", apperror.ErrConflict)
	}
	t.Status = model.StatusInProgress
	return nil
}

// Complete marks any not-yet-finished ticket as completed and stamps
// CompletedAt.
func Complete(t *model.Ticket, now time.Time) error {
	if t.Status == model.StatusCompleted || t.Status == model.StatusClosed {
		return fmt.Errorf("this ticket is already completed or closed: %w", apperror.ErrConflict)
	}
	t.Status = model.StatusCompleted
	at := now
	t.CompletedAt = &at
	return nil
}

// Close is permissive: any non-closed ticket may be closed, completed or
// not. closed is terminal.
func Close(t *model.Ticket) error {
	if t.Status == model.StatusClosed {
		return fmt.Errorf("this ticket is already closed: %w", apperror.ErrConflict)
	}
	t.Status = model.StatusClosed
	return nil
}

// Override sets the status directly with no transition guard. Reserved for
// the privileged generic update path.
func Override(t *model.Ticket, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown ticket status %q: %w", status, apperror.ErrValidation)
	}
	t.Status = status
	return nil
}
