package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
)

// Filter narrows ticket listings. Nil/zero fields are ignored. The service
// layer forces UserID to the actor for non-staff callers.
type Filter struct {
	Status     model.Status
	Priority   model.Priority
	MechanicID *uuid.UUID
	UserID     *uuid.UUID
	CarID      *uuid.UUID
}

// priorityOrder ranks urgent..low 1..4 with unrecognized values last.
// Written as CASE so it runs on both postgres and sqlite.
const priorityOrder = `CASE priority
	WHEN 'urgent' THEN 1
	WHEN 'high' THEN 2
	WHEN 'medium' THEN 3
	WHEN 'low' THEN 4
	ELSE 5 END`

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket, problems []model.TicketProblem, history []model.CarProblem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	FindAll(ctx context.Context, filter Filter, offset, limit int) ([]model.Ticket, int64, error)
	Update(ctx context.Context, ticket *model.Ticket) error
	SyncProblems(ctx context.Context, ticketID uuid.UUID, problems []model.TicketProblem) error
	Delete(ctx context.Context, id uuid.UUID) error
	ResolveHistory(ctx context.Context, ticketID uuid.UUID, at time.Time) error

	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[model.Status]int64, error)
	CountByPriority(ctx context.Context) (map[model.Priority]int64, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int64, error)
	CountActivePerMechanic(ctx context.Context) (map[uuid.UUID]int64, error)
	CountForMechanic(ctx context.Context, mechanicID uuid.UUID, statuses []model.Status) (int64, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

// Create inserts the ticket, its problem associations and the car problem
// history rows in one transaction.
func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket, problems []model.TicketProblem, history []model.CarProblem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}
		for i := range problems {
			problems[i].TicketID = ticket.ID
		}
		if len(problems) > 0 {
			if err := tx.Create(&problems).Error; err != nil {
				return err
			}
		}
		for i := range history {
			id := ticket.ID
			history[i].TicketID = &id
		}
		if len(history) > 0 {
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Mechanic").
		Preload("Car").
		Preload("Problems.Problem").
		First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindAll(ctx context.Context, filter Filter, offset, limit int) ([]model.Ticket, int64, error) {
	var tickets []model.Ticket
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Preload("User").
		Preload("Mechanic").
		Preload("Car").
		Preload("Problems.Problem")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.MechanicID != nil {
		query = query.Where("mechanic_id = ?", *filter.MechanicID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CarID != nil {
		query = query.Where("car_id = ?", *filter.CarID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order(priorityOrder).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&tickets).Error; err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Omit("Problems", "User", "Mechanic", "Car").Save(ticket).Error
}

// SyncProblems replaces the ticket's problem set, matching the replace
// semantics of the generic update.
func (r *ticketRepository) SyncProblems(ctx context.Context, ticketID uuid.UUID, problems []model.TicketProblem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", ticketID).Delete(&model.TicketProblem{}).Error; err != nil {
			return err
		}
		for i := range problems {
			problems[i].TicketID = ticketID
		}
		if len(problems) > 0 {
			if err := tx.Create(&problems).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ticketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&model.TicketProblem{}).Error; err != nil {
			return err
		}
		// History rows keep the detection, lose the ticket reference
		if err := tx.Model(&model.CarProblem{}).Where("ticket_id = ?", id).Update("ticket_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Ticket{}, "id = ?", id).Error
	})
}

// ResolveHistory stamps resolved_at on the car problem rows this ticket
// detected.
func (r *ticketRepository) ResolveHistory(ctx context.Context, ticketID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.CarProblem{}).
		Where("ticket_id = ? AND resolved_at IS NULL", ticketID).
		Update("resolved_at", at).Error
}

func (r *ticketRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).Count(&n).Error
	return n, err
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[model.Status]int64, error) {
	type row struct {
		Status model.Status
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[model.Status]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *ticketRepository) CountByPriority(ctx context.Context) (map[model.Priority]int64, error) {
	type row struct {
		Priority model.Priority
		Count    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Select("priority, COUNT(*) as count").
		Group("priority").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[model.Priority]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Priority] = rw.Count
	}
	return counts, nil
}

func (r *ticketRepository) CountCompletedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("completed_at >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *ticketRepository) CountActivePerMechanic(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		MechanicID uuid.UUID
		Count      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Select("mechanic_id, COUNT(*) as count").
		Where("mechanic_id IS NOT NULL AND status IN ?", []model.Status{model.StatusAssigned, model.StatusInProgress}).
		Group("mechanic_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, rw := range rows {
		counts[rw.MechanicID] = rw.Count
	}
	return counts, nil
}

func (r *ticketRepository) CountForMechanic(ctx context.Context, mechanicID uuid.UUID, statuses []model.Status) (int64, error) {
	var n int64
	query := r.db.WithContext(ctx).Model(&model.Ticket{}).Where("mechanic_id = ?", mechanicID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Count(&n).Error
	return n, err
}
