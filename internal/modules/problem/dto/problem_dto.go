package dto

import (
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
)

type CreateProblemRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Category    string  `json:"category" binding:"required,oneof=engine transmission electrical brakes suspension steering body other"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateProblemRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Category    *string `json:"category" binding:"omitempty,oneof=engine transmission electrical brakes suspension steering body other"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type ListProblemsQuery struct {
	Category string `form:"category"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	commonDto.PageQuery
}

type ProblemURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}
