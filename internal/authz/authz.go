// Package authz holds the authorization rules for every resource action as
// pure functions over the acting user and the target. Handlers resolve the
// actor, services consult these before touching the store.
package authz

import (
	"github.com/google/uuid"

	"github.com/garagedesk/garagedesk/internal/model"
)

// Cars

// CanListAllCars reports whether the actor may browse cars of all owners.
// Everyone else gets an implicit filter to their own cars instead.
func CanListAllCars(actor model.User) bool {
	return actor.Role.IsStaff()
}

// CanCreateCarFor allows creating a car for the given owner: anyone for
// themselves, admins for anybody.
func CanCreateCarFor(actor model.User, ownerID uuid.UUID) bool {
	if actor.ID == ownerID {
		return true
	}
	return actor.Role == model.RoleAdmin
}

func CanViewCar(actor model.User, car model.Car) bool {
	return actor.Role.IsStaff() || car.UserID == actor.ID
}

// CanManageCar covers update and delete. Mechanics may read but not touch.
func CanManageCar(actor model.User, car model.Car) bool {
	return actor.Role == model.RoleAdmin || car.UserID == actor.ID
}

// Problems (shared catalog)

func CanManageProblems(actor model.User) bool {
	return actor.Role.IsStaff()
}

func CanDeleteProblem(actor model.User) bool {
	return actor.Role == model.RoleAdmin
}

// Tickets

func CanListAllTickets(actor model.User) bool {
	return actor.Role.IsStaff()
}

func CanViewTicket(actor model.User, t model.Ticket) bool {
	return actor.Role.IsStaff() || t.UserID == actor.ID
}

// CanUpdateTicket governs the generic content update. Owners may only edit
// tickets that are still open; staff may edit at any point.
func CanUpdateTicket(actor model.User, t model.Ticket) bool {
	if actor.Role.IsStaff() {
		return true
	}
	return t.UserID == actor.ID && t.Status == model.StatusOpen
}

// CanSetTicketStatus guards the direct status overwrite in the generic
// update. This is the deliberate escape hatch for privileged roles; owner
// status changes are stripped by the service, not rejected.
func CanSetTicketStatus(actor model.User) bool {
	return actor.Role.IsStaff()
}

func CanDeleteTicket(actor model.User, t model.Ticket) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return t.UserID == actor.ID && t.Status == model.StatusOpen
}

func CanAcceptTicket(actor model.User) bool {
	return actor.Role.IsStaff()
}

// CanWorkTicket guards start and complete: the assigned mechanic or an
// admin. An unassigned mechanic is denied here regardless of ticket status,
// so the caller must check this before any status guard.
func CanWorkTicket(actor model.User, t model.Ticket) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	if actor.Role != model.RoleMechanic {
		return false
	}
	return t.MechanicID != nil && *t.MechanicID == actor.ID
}

// CanCloseTicket: the filer or an admin. Mechanics may not close, even the
// one assigned.
func CanCloseTicket(actor model.User, t model.Ticket) bool {
	return actor.Role == model.RoleAdmin || t.UserID == actor.ID
}

// Users

func CanListUsers(actor model.User) bool {
	return actor.Role == model.RoleAdmin
}

func CanCreateUser(actor model.User) bool {
	return actor.Role == model.RoleAdmin
}

func CanViewUser(actor model.User, target model.User) bool {
	return actor.Role == model.RoleAdmin || actor.ID == target.ID
}

func CanUpdateUser(actor model.User, target model.User) bool {
	return actor.Role == model.RoleAdmin || actor.ID == target.ID
}

// CanChangeRole: admin only. Admins may reassign any role, including their
// own; the stricter self-protection only applies to deletion.
func CanChangeRole(actor model.User) bool {
	return actor.Role == model.RoleAdmin
}

// CanDeleteUser: admin only, and never themselves.
func CanDeleteUser(actor model.User, target model.User) bool {
	return actor.Role == model.RoleAdmin && actor.ID != target.ID
}

// CanViewUserAssets covers the nested car/ticket listings under a user.
func CanViewUserAssets(actor model.User, targetID uuid.UUID) bool {
	return actor.Role.IsStaff() || actor.ID == targetID
}

// CanViewStatistics covers workshop-side reporting and the mechanic
// directory.
func CanViewStatistics(actor model.User) bool {
	return actor.Role.IsStaff()
}
