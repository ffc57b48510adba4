package dto

import (
	"github.com/garagedesk/garagedesk/internal/model"
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the login/register payload: the user plus a bearer token.
type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=user mechanic admin"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Role     *string `json:"role" binding:"omitempty,oneof=user mechanic admin"`
}

type ListUsersQuery struct {
	Role   string `form:"role" binding:"omitempty,oneof=user mechanic admin"`
	Search string `form:"search"`
	commonDto.PageQuery
}

type UserURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// MechanicSummary is the mechanics directory entry: a mechanic plus the
// number of tickets currently on their bench.
type MechanicSummary struct {
	Mechanic      model.User `json:"mechanic"`
	ActiveTickets int64      `json:"active_tickets"`
}
