package dto

import (
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
)

type CreateTicketRequest struct {
	CarID        string   `json:"car_id" binding:"required,uuid"`
	Description  string   `json:"description" binding:"required"`
	Priority     string   `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ProblemIDs   []string `json:"problem_ids" binding:"required,min=1,dive,uuid"`
	ProblemNotes []string `json:"problem_notes"`
}

// UpdateTicketRequest is the generic content update. Status is only honored
// for mechanics and admins; for owners it is silently dropped.
type UpdateTicketRequest struct {
	Description  *string  `json:"description"`
	Priority     *string  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status       *string  `json:"status" binding:"omitempty,oneof=open assigned in_progress completed closed"`
	ProblemIDs   []string `json:"problem_ids" binding:"omitempty,min=1,dive,uuid"`
	ProblemNotes []string `json:"problem_notes"`
}

type ListTicketsQuery struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	MechanicID string `form:"mechanic_id"`
	UserID     string `form:"user_id"`
	CarID      string `form:"car_id"`
	commonDto.PageQuery
}

type TicketURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}
