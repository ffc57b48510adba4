package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/authz"
	"github.com/garagedesk/garagedesk/internal/model"
	carRepo "github.com/garagedesk/garagedesk/internal/modules/car/repository"
	ticketRepo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	userDto "github.com/garagedesk/garagedesk/internal/modules/user/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/user/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
)

type UserService interface {
	List(ctx context.Context, actor model.User, q userDto.ListUsersQuery) ([]model.User, int64, error)
	Create(ctx context.Context, actor model.User, req userDto.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, actor model.User, id uuid.UUID, req userDto.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
	Mechanics(ctx context.Context, actor model.User) ([]userDto.MechanicSummary, error)
	ListTickets(ctx context.Context, actor model.User, userID uuid.UUID, page commonDto.PageQuery) ([]model.Ticket, int64, error)
	ListCars(ctx context.Context, actor model.User, userID uuid.UUID) ([]model.Car, error)
}

type userService struct {
	userRepo   repo.UserRepository
	ticketRepo ticketRepo.TicketRepository
	carRepo    carRepo.CarRepository
}

func NewUserService(userRepo repo.UserRepository, ticketRepo ticketRepo.TicketRepository, carRepo carRepo.CarRepository) UserService {
	return &userService{
		userRepo:   userRepo,
		ticketRepo: ticketRepo,
		carRepo:    carRepo,
	}
}

func (s *userService) List(ctx context.Context, actor model.User, q userDto.ListUsersQuery) ([]model.User, int64, error) {
	if !authz.CanListUsers(actor) {
		return nil, 0, fmt.Errorf("only admins can list users: %w", apperror.ErrForbidden)
	}

	q.Normalize()
	return s.userRepo.FindAll(ctx, model.Role(q.Role), q.Search, q.Offset(), q.PerPage)
}

func (s *userService) Create(ctx context.Context, actor model.User, req userDto.CreateUserRequest) (*model.User, error) {
	if !authz.CanCreateUser(actor) {
		return nil, fmt.Errorf("only admins can create users: %w", apperror.ErrForbidden)
	}

	if err := s.checkEmailUnique(ctx, req.Email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := model.RoleUser
	if req.Role != "" {
		role = model.Role(req.Role)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanViewUser(actor, *user) {
		return nil, fmt.Errorf("you can only view your own profile: %w", apperror.ErrForbidden)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor model.User, id uuid.UUID, req userDto.UpdateUserRequest) (*model.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanUpdateUser(actor, *user) {
		return nil, fmt.Errorf("you can only update your own profile: %w", apperror.ErrForbidden)
	}

	if req.Role != nil && model.Role(*req.Role) != user.Role {
		if !authz.CanChangeRole(actor) {
			return nil, fmt.Errorf("only admins can change user roles: %w", apperror.ErrForbidden)
		}
		user.Role = model.Role(*req.Role)
	}

	if req.Email != nil && *req.Email != user.Email {
		if err := s.checkEmailUnique(ctx, *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if actor.ID == user.ID {
		return fmt.Errorf("you cannot delete your own account: %w", apperror.ErrForbidden)
	}
	if !authz.CanDeleteUser(actor, *user) {
		return fmt.Errorf("only admins can delete users: %w", apperror.ErrForbidden)
	}

	return s.userRepo.Delete(ctx, id)
}

// Mechanics lists all mechanics with the number of tickets currently
// assigned or in progress for each.
func (s *userService) Mechanics(ctx context.Context, actor model.User) ([]userDto.MechanicSummary, error) {
	if !authz.CanViewStatistics(actor) {
		return nil, fmt.Errorf("only staff can view the mechanic directory: %w", apperror.ErrForbidden)
	}

	mechanics, err := s.userRepo.FindByRole(ctx, model.RoleMechanic)
	if err != nil {
		return nil, err
	}

	active, err := s.ticketRepo.CountActivePerMechanic(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]userDto.MechanicSummary, 0, len(mechanics))
	for _, m := range mechanics {
		summaries = append(summaries, userDto.MechanicSummary{
			Mechanic:      m,
			ActiveTickets: active[m.ID],
		})
	}
	return summaries, nil
}

func (s *userService) ListTickets(ctx context.Context, actor model.User, userID uuid.UUID, page commonDto.PageQuery) ([]model.Ticket, int64, error) {
	if !authz.CanViewUserAssets(actor, userID) {
		return nil, 0, fmt.Errorf("you can only view your own tickets: %w", apperror.ErrForbidden)
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, 0, err
	}

	page.Normalize()
	return s.ticketRepo.FindAll(ctx, ticketRepo.Filter{UserID: &userID}, page.Offset(), page.PerPage)
}

func (s *userService) ListCars(ctx context.Context, actor model.User, userID uuid.UUID) ([]model.Car, error) {
	if !authz.CanViewUserAssets(actor, userID) {
		return nil, fmt.Errorf("you can only view your own cars: %w", apperror.ErrForbidden)
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.carRepo.FindByOwner(ctx, userID)
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) checkEmailUnique(ctx context.Context, email string, selfID uuid.UUID) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("email is already registered: %w", apperror.ErrValidation)
	}
	return nil
}
