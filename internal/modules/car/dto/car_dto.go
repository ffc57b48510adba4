package dto

import (
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
)

type CreateCarRequest struct {
	Make         string  `json:"make" binding:"required,max=255"`
	Model        string  `json:"model" binding:"required,max=255"`
	Year         int     `json:"year" binding:"required"`
	LicensePlate string  `json:"license_plate" binding:"required,max=255"`
	VIN          *string `json:"vin" binding:"omitempty,max=255"`
	Color        *string `json:"color" binding:"omitempty,max=255"`
	// Only admins may create a car for somebody else
	UserID string `json:"user_id" binding:"omitempty,uuid"`
}

type UpdateCarRequest struct {
	Make         *string `json:"make" binding:"omitempty,max=255"`
	Model        *string `json:"model" binding:"omitempty,max=255"`
	Year         *int    `json:"year"`
	LicensePlate *string `json:"license_plate" binding:"omitempty,max=255"`
	VIN          *string `json:"vin" binding:"omitempty,max=255"`
	Color        *string `json:"color" binding:"omitempty,max=255"`
}

type ListCarsQuery struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	commonDto.PageQuery
}

type CarURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}
