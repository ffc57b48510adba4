package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
)

type CarRepository interface {
	Create(ctx context.Context, car *model.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Car, error)
	FindByPlate(ctx context.Context, plate string) (*model.Car, error)
	FindByVIN(ctx context.Context, vin string) (*model.Car, error)
	FindAll(ctx context.Context, ownerID *uuid.UUID, offset, limit int) ([]model.Car, int64, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Car, error)
	Update(ctx context.Context, car *model.Car) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindHistory(ctx context.Context, carID uuid.UUID) ([]model.CarProblem, error)
}

type carRepository struct {
	db *gorm.DB
}

func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, car *model.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Car, error) {
	var car model.Car
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tickets").
		Preload("Tickets.Problems.Problem").
		First(&car, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) FindByPlate(ctx context.Context, plate string) (*model.Car, error) {
	var car model.Car
	if err := r.db.WithContext(ctx).Where("license_plate = ?", plate).First(&car).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) FindByVIN(ctx context.Context, vin string) (*model.Car, error) {
	var car model.Car
	if err := r.db.WithContext(ctx).Where("vin = ?", vin).First(&car).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) FindAll(ctx context.Context, ownerID *uuid.UUID, offset, limit int) ([]model.Car, int64, error) {
	var cars []model.Car
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Car{}).Preload("User").Preload("Tickets")

	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&cars).Error; err != nil {
		return nil, 0, err
	}

	return cars, total, nil
}

func (r *carRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Car, error) {
	var cars []model.Car
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *carRepository) Update(ctx context.Context, car *model.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

func (r *carRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Car{}, "id = ?", id).Error
}

func (r *carRepository) FindHistory(ctx context.Context, carID uuid.UUID) ([]model.CarProblem, error) {
	var history []model.CarProblem
	if err := r.db.WithContext(ctx).
		Preload("Problem").
		Where("car_id = ?", carID).
		Order("detected_at DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
