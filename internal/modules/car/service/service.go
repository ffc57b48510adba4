package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/authz"
	"github.com/garagedesk/garagedesk/internal/model"
	carDto "github.com/garagedesk/garagedesk/internal/modules/car/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/car/repository"
	ticketRepo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	userRepo "github.com/garagedesk/garagedesk/internal/modules/user/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
)

const minCarYear = 1900

type CarService interface {
	Create(ctx context.Context, actor model.User, req carDto.CreateCarRequest) (*model.Car, error)
	List(ctx context.Context, actor model.User, q carDto.ListCarsQuery) ([]model.Car, int64, error)
	Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.Car, error)
	Update(ctx context.Context, actor model.User, id uuid.UUID, req carDto.UpdateCarRequest) (*model.Car, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
	ListTickets(ctx context.Context, actor model.User, carID uuid.UUID, page commonDto.PageQuery) ([]model.Ticket, int64, error)
	History(ctx context.Context, actor model.User, carID uuid.UUID) ([]model.CarProblem, error)
}

type carService struct {
	carRepo    repo.CarRepository
	userRepo   userRepo.UserRepository
	ticketRepo ticketRepo.TicketRepository
}

func NewCarService(carRepo repo.CarRepository, userRepo userRepo.UserRepository, ticketRepo ticketRepo.TicketRepository) CarService {
	return &carService{
		carRepo:    carRepo,
		userRepo:   userRepo,
		ticketRepo: ticketRepo,
	}
}

func (s *carService) Create(ctx context.Context, actor model.User, req carDto.CreateCarRequest) (*model.Car, error) {
	ownerID := actor.ID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id format: %w", apperror.ErrBadRequest)
		}
		ownerID = id
	}

	if !authz.CanCreateCarFor(actor, ownerID) {
		return nil, fmt.Errorf("you can only create cars for yourself: %w", apperror.ErrForbidden)
	}

	if ownerID != actor.ID {
		if _, err := s.userRepo.FindByID(ctx, ownerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user does not exist: %w", apperror.ErrValidation)
			}
			return nil, err
		}
	}

	if err := validateYear(req.Year); err != nil {
		return nil, err
	}

	if err := s.checkPlateUnique(ctx, req.LicensePlate, uuid.Nil); err != nil {
		return nil, err
	}
	if req.VIN != nil {
		if err := s.checkVINUnique(ctx, *req.VIN, uuid.Nil); err != nil {
			return nil, err
		}
	}

	car := &model.Car{
		UserID:       ownerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		VIN:          req.VIN,
		Color:        req.Color,
	}

	if err := s.carRepo.Create(ctx, car); err != nil {
		return nil, err
	}

	return s.carRepo.FindByID(ctx, car.ID)
}

func (s *carService) List(ctx context.Context, actor model.User, q carDto.ListCarsQuery) ([]model.Car, int64, error) {
	q.Normalize()

	var ownerID *uuid.UUID
	if authz.CanListAllCars(actor) {
		if q.UserID != "" {
			id, err := uuid.Parse(q.UserID)
			if err != nil {
				return nil, 0, fmt.Errorf("invalid user id format: %w", apperror.ErrBadRequest)
			}
			ownerID = &id
		}
	} else {
		id := actor.ID
		ownerID = &id
	}

	return s.carRepo.FindAll(ctx, ownerID, q.Offset(), q.PerPage)
}

func (s *carService) Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.Car, error) {
	car, err := s.findCar(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanViewCar(actor, *car) {
		return nil, apperror.ErrForbidden
	}

	return car, nil
}

func (s *carService) Update(ctx context.Context, actor model.User, id uuid.UUID, req carDto.UpdateCarRequest) (*model.Car, error) {
	car, err := s.findCar(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanManageCar(actor, *car) {
		return nil, apperror.ErrForbidden
	}

	if req.Make != nil {
		car.Make = *req.Make
	}
	if req.Model != nil {
		car.Model = *req.Model
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return nil, err
		}
		car.Year = *req.Year
	}
	if req.LicensePlate != nil && *req.LicensePlate != car.LicensePlate {
		if err := s.checkPlateUnique(ctx, *req.LicensePlate, car.ID); err != nil {
			return nil, err
		}
		car.LicensePlate = *req.LicensePlate
	}
	if req.VIN != nil {
		if err := s.checkVINUnique(ctx, *req.VIN, car.ID); err != nil {
			return nil, err
		}
		car.VIN = req.VIN
	}
	if req.Color != nil {
		car.Color = req.Color
	}

	if err := s.carRepo.Update(ctx, car); err != nil {
		return nil, err
	}

	return s.carRepo.FindByID(ctx, car.ID)
}

func (s *carService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	car, err := s.findCar(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanManageCar(actor, *car) {
		return apperror.ErrForbidden
	}

	return s.carRepo.Delete(ctx, car.ID)
}

func (s *carService) ListTickets(ctx context.Context, actor model.User, carID uuid.UUID, page commonDto.PageQuery) ([]model.Ticket, int64, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, 0, err
	}

	if !authz.CanViewCar(actor, *car) {
		return nil, 0, apperror.ErrForbidden
	}

	page.Normalize()
	id := car.ID
	return s.ticketRepo.FindAll(ctx, ticketRepo.Filter{CarID: &id}, page.Offset(), page.PerPage)
}

func (s *carService) History(ctx context.Context, actor model.User, carID uuid.UUID) ([]model.CarProblem, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	if !authz.CanViewCar(actor, *car) {
		return nil, apperror.ErrForbidden
	}

	return s.carRepo.FindHistory(ctx, car.ID)
}

func (s *carService) findCar(ctx context.Context, id uuid.UUID) (*model.Car, error) {
	car, err := s.carRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return car, nil
}

func (s *carService) checkPlateUnique(ctx context.Context, plate string, selfID uuid.UUID) error {
	existing, err := s.carRepo.FindByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("license plate already registered: %w", apperror.ErrValidation)
	}
	return nil
}

func (s *carService) checkVINUnique(ctx context.Context, vin string, selfID uuid.UUID) error {
	existing, err := s.carRepo.FindByVIN(ctx, vin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("vin already registered: %w", apperror.ErrValidation)
	}
	return nil
}

func validateYear(year int) error {
	if year < minCarYear || year > time.Now().Year()+1 {
		return fmt.Errorf("year must be between %d and %d: %w", minCarYear, time.Now().Year()+1, apperror.ErrValidation)
	}
	return nil
}
