package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garagedesk/garagedesk/internal/authz"
	"github.com/garagedesk/garagedesk/internal/model"
	problemRepo "github.com/garagedesk/garagedesk/internal/modules/problem/repository"
	ticketRepo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

// TicketStatistics is the workshop dashboard snapshot. The My* fields are
// only filled in for mechanics.
type TicketStatistics struct {
	Total          int64                     `json:"total"`
	ByStatus       map[model.Status]int64    `json:"by_status"`
	ByPriority     map[model.Priority]int64  `json:"by_priority"`
	Open           int64                     `json:"open"`
	Assigned       int64                     `json:"assigned"`
	InProgress     int64                     `json:"in_progress"`
	CompletedToday int64                     `json:"completed_today"`
	MyAssigned     *int64                    `json:"my_assigned,omitempty"`
	MyCompleted    *int64                    `json:"my_completed,omitempty"`
}

type ProblemFrequency struct {
	Problem     model.Problem `json:"problem"`
	TicketCount int64         `json:"ticket_count"`
}

type ProblemStatistics struct {
	Total       int64              `json:"total"`
	Active      int64              `json:"active"`
	ByFrequency []ProblemFrequency `json:"problems_by_frequency"`
}

type StatService interface {
	TicketStatistics(ctx context.Context, actor model.User) (*TicketStatistics, error)
	ProblemStatistics(ctx context.Context, actor model.User) (*ProblemStatistics, error)
}

type statService struct {
	ticketRepo  ticketRepo.TicketRepository
	problemRepo problemRepo.ProblemRepository
	now         func() time.Time
}

func NewStatService(ticketRepo ticketRepo.TicketRepository, problemRepo problemRepo.ProblemRepository) StatService {
	return &statService{
		ticketRepo:  ticketRepo,
		problemRepo: problemRepo,
		now:         time.Now,
	}
}

func (s *statService) TicketStatistics(ctx context.Context, actor model.User) (*TicketStatistics, error) {
	if !authz.CanViewStatistics(actor) {
		return nil, fmt.Errorf("only staff can view statistics: %w", apperror.ErrForbidden)
	}

	total, err := s.ticketRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.ticketRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.ticketRepo.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	completedToday, err := s.ticketRepo.CountCompletedSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	stats := &TicketStatistics{
		Total:          total,
		ByStatus:       byStatus,
		ByPriority:     byPriority,
		Open:           byStatus[model.StatusOpen],
		Assigned:       byStatus[model.StatusAssigned],
		InProgress:     byStatus[model.StatusInProgress],
		CompletedToday: completedToday,
	}

	if actor.Role == model.RoleMechanic {
		myAssigned, err := s.ticketRepo.CountForMechanic(ctx, actor.ID, []model.Status{model.StatusAssigned, model.StatusInProgress})
		if err != nil {
			return nil, err
		}
		// Closed tickets already left the completed bucket
		myCompleted, err := s.ticketRepo.CountForMechanic(ctx, actor.ID, []model.Status{model.StatusCompleted})
		if err != nil {
			return nil, err
		}
		stats.MyAssigned = &myAssigned
		stats.MyCompleted = &myCompleted
	}

	return stats, nil
}

func (s *statService) ProblemStatistics(ctx context.Context, actor model.User) (*ProblemStatistics, error) {
	if !authz.CanViewStatistics(actor) {
		return nil, fmt.Errorf("only staff can view statistics: %w", apperror.ErrForbidden)
	}

	total, err := s.problemRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.problemRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	frequencies, err := s.problemRepo.FindByFrequency(ctx)
	if err != nil {
		return nil, err
	}

	byFrequency := make([]ProblemFrequency, 0, len(frequencies))
	for _, f := range frequencies {
		byFrequency = append(byFrequency, ProblemFrequency{
			Problem:     f.Problem,
			TicketCount: f.TicketCount,
		})
	}

	return &ProblemStatistics{
		Total:       total,
		Active:      active,
		ByFrequency: byFrequency,
	}, nil
}
