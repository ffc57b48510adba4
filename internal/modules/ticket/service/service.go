package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/authz"
	"github.com/garagedesk/garagedesk/internal/model"
	carRepo "github.com/garagedesk/garagedesk/internal/modules/car/repository"
	problemRepo "github.com/garagedesk/garagedesk/internal/modules/problem/repository"
	ticketDto "github.com/garagedesk/garagedesk/internal/modules/ticket/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	"github.com/garagedesk/garagedesk/internal/modules/ticket/workflow"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

// sanitize strips all markup from free-text fields before they hit the store.
var sanitize = bluemonday.StrictPolicy()

type TicketService interface {
	Create(ctx context.Context, actor model.User, req ticketDto.CreateTicketRequest) (*model.Ticket, error)
	List(ctx context.Context, actor model.User, q ticketDto.ListTicketsQuery) ([]model.Ticket, int64, error)
	Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error)
	Update(ctx context.Context, actor model.User, id uuid.UUID, req ticketDto.UpdateTicketRequest) (*model.Ticket, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error

	Accept(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error)
	Start(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error)
	Complete(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error)
	Close(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error)
}

type ticketService struct {
	ticketRepo  repo.TicketRepository
	carRepo     carRepo.CarRepository
	problemRepo problemRepo.ProblemRepository
	now         func() time.Time
}

func NewTicketService(ticketRepo repo.TicketRepository, carRepo carRepo.CarRepository, problemRepo problemRepo.ProblemRepository) TicketService {
	return &ticketService{
		ticketRepo:  ticketRepo,
		carRepo:     carRepo,
		problemRepo: problemRepo,
		now:         time.Now,
	}
}

func (s *ticketService) Create(ctx context.Context, actor model.User, req ticketDto.CreateTicketRequest) (*model.Ticket, error) {
	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, fmt.Errorf("invalid car id format: %w", apperror.ErrBadRequest)
	}

	car, err := s.carRepo.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car does not exist: %w", apperror.ErrValidation)
		}
		return nil, err
	}

	if car.UserID != actor.ID && actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("you can only create tickets for your own cars: %w", apperror.ErrForbidden)
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		priority = model.Priority(req.Priority)
	}

	associations, err := s.buildProblemSet(ctx, req.ProblemIDs, req.ProblemNotes)
	if err != nil {
		return nil, err
	}

	ticket := &model.Ticket{
		UserID:      actor.ID,
		CarID:       car.ID,
		Status:      model.StatusOpen,
		Priority:    priority,
		Description: sanitize.Sanitize(req.Description),
	}

	// Every attached problem also becomes a detection entry in the car's
	// history, severity derived from the ticket priority.
	detectedAt := s.now()
	history := make([]model.CarProblem, 0, len(associations))
	for _, assoc := range associations {
		history = append(history, model.CarProblem{
			CarID:      car.ID,
			ProblemID:  assoc.ProblemID,
			DetectedAt: detectedAt,
			Severity:   model.SeverityForPriority(priority),
			Notes:      assoc.Notes,
		})
	}

	if err := s.ticketRepo.Create(ctx, ticket, associations, history); err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByID(ctx, ticket.ID)
}

func (s *ticketService) List(ctx context.Context, actor model.User, q ticketDto.ListTicketsQuery) ([]model.Ticket, int64, error) {
	q.Normalize()

	filter := repo.Filter{}

	if authz.CanListAllTickets(actor) {
		filter.Status = model.Status(q.Status)
		filter.Priority = model.Priority(q.Priority)
		var err error
		if filter.MechanicID, err = parseOptionalID(q.MechanicID); err != nil {
			return nil, 0, err
		}
		if filter.UserID, err = parseOptionalID(q.UserID); err != nil {
			return nil, 0, err
		}
		if filter.CarID, err = parseOptionalID(q.CarID); err != nil {
			return nil, 0, err
		}
	} else {
		// Regular users only ever see their own tickets
		id := actor.ID
		filter.UserID = &id
	}

	return s.ticketRepo.FindAll(ctx, filter, q.Offset(), q.PerPage)
}

func (s *ticketService) Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanViewTicket(actor, *ticket) {
		return nil, apperror.ErrForbidden
	}

	return ticket, nil
}

func (s *ticketService) Update(ctx context.Context, actor model.User, id uuid.UUID, req ticketDto.UpdateTicketRequest) (*model.Ticket, error) {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanViewTicket(actor, *ticket) {
		return nil, apperror.ErrForbidden
	}

	if !authz.CanUpdateTicket(actor, *ticket) {
		return nil, fmt.Errorf("you can only update tickets that are still open: %w", apperror.ErrForbidden)
	}

	if req.Description != nil {
		ticket.Description = sanitize.Sanitize(*req.Description)
	}
	if req.Priority != nil {
		ticket.Priority = model.Priority(*req.Priority)
	}

	// Direct status overwrite is the privileged escape hatch; an owner's
	// status field is dropped without error.
	if req.Status != nil && authz.CanSetTicketStatus(actor) {
		if err := workflow.Override(ticket, model.Status(*req.Status)); err != nil {
			return nil, err
		}
	}

	if len(req.ProblemIDs) > 0 {
		associations, err := s.buildProblemSet(ctx, req.ProblemIDs, req.ProblemNotes)
		if err != nil {
			return nil, err
		}
		if err := s.ticketRepo.SyncProblems(ctx, ticket.ID, associations); err != nil {
			return nil, err
		}
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByID(ctx, ticket.ID)
}

func (s *ticketService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanDeleteTicket(actor, *ticket) {
		return apperror.ErrForbidden
	}

	return s.ticketRepo.Delete(ctx, ticket.ID)
}

// Accept assigns an open ticket to the calling mechanic (or admin).
func (s *ticketService) Accept(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	// Authorization before state guards: a wrong actor never learns the
	// ticket state through the error code.
	if !authz.CanAcceptTicket(actor) {
		return nil, apperror.ErrForbidden
	}

	if err := workflow.Accept(ticket, actor.ID, s.now()); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByID(ctx, ticket.ID)
}

func (s *ticketService) Start(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsStaff() {
		return nil, apperror.ErrForbidden
	}
	if !authz.CanWorkTicket(actor, *ticket) {
		return nil, fmt.Errorf("you can only start work on tickets assigned to you: %w", apperror.ErrForbidden)
	}

	if err := workflow.Start(ticket); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByID(ctx, ticket.ID)
}

func (s *ticketService) Complete(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsStaff() {
		return nil, apperror.ErrForbidden
	}
	if !authz.CanWorkTicket(actor, *ticket) {
		return nil, fmt.Errorf("you can only complete tickets assigned to you: %w", apperror.ErrForbidden)
	}

	now := s.now()
	if err := workflow.Complete(ticket, now); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	// Completing the work resolves the detections this ticket recorded
	if err := s.ticketRepo.ResolveHistory(ctx, ticket.ID, now); err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByID(ctx, ticket.ID)
}

func (s *ticketService) Close(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanCloseTicket(actor, *ticket) {
		return nil, apperror.ErrForbidden
	}

	if err := workflow.Close(ticket); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	return s.ticketRepo.FindByID(ctx, ticket.ID)
}

func (s *ticketService) findTicket(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ticket not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return ticket, nil
}

// buildProblemSet validates the requested problem ids against the catalog
// and pairs them with their index-aligned notes; missing notes default to
// empty.
func (s *ticketService) buildProblemSet(ctx context.Context, ids []string, notes []string) ([]model.TicketProblem, error) {
	problemIDs := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid problem id format: %w", apperror.ErrBadRequest)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate problem id %s: %w", id, apperror.ErrValidation)
		}
		seen[id] = true
		problemIDs = append(problemIDs, id)
	}

	known, err := s.problemRepo.FindByIDs(ctx, problemIDs)
	if err != nil {
		return nil, err
	}
	if len(known) != len(problemIDs) {
		return nil, fmt.Errorf("one or more problem ids do not exist: %w", apperror.ErrValidation)
	}

	associations := make([]model.TicketProblem, 0, len(problemIDs))
	for i, id := range problemIDs {
		note := ""
		if i < len(notes) {
			note = sanitize.Sanitize(notes[i])
		}
		associations = append(associations, model.TicketProblem{
			ProblemID: id,
			Notes:     note,
		})
	}
	return associations, nil
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid id format: %w", apperror.ErrBadRequest)
	}
	return &id, nil
}
