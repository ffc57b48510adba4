package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
	problemRepo "github.com/garagedesk/garagedesk/internal/modules/problem/repository"
	ticketRepo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Car{},
		&model.Problem{},
		&model.Ticket{},
		&model.TicketProblem{},
		&model.CarProblem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newService(t *testing.T) (StatService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewStatService(ticketRepo.NewTicketRepository(db), problemRepo.NewProblemRepository(db))
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role model.Role) model.User {
	t.Helper()
	user := model.User{Name: "Test", Email: email, PasswordHash: "x", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestStatisticsRequireStaff(t *testing.T) {
	svc, db := newService(t)
	customer := seedUser(t, db, "customer@example.com", model.RoleUser)

	if _, err := svc.TicketStatistics(context.Background(), customer); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for regular user, got %v", err)
	}
	if _, err := svc.ProblemStatistics(context.Background(), customer); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for regular user, got %v", err)
	}
}

func TestTicketStatisticsCounts(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	mechanic := seedUser(t, db, "mech@example.com", model.RoleMechanic)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)

	car := model.Car{UserID: owner.ID, Make: "Honda", Model: "Civic", Year: 2020, LicensePlate: "ST-001"}
	if err := db.Create(&car).Error; err != nil {
		t.Fatalf("failed to create car: %v", err)
	}

	tickets := []model.Ticket{
		{UserID: owner.ID, CarID: car.ID, Status: model.StatusOpen, Priority: model.PriorityUrgent, Description: "a"},
		{UserID: owner.ID, CarID: car.ID, Status: model.StatusAssigned, Priority: model.PriorityMedium, Description: "b", MechanicID: &mechanic.ID},
		{UserID: owner.ID, CarID: car.ID, Status: model.StatusCompleted, Priority: model.PriorityMedium, Description: "c", MechanicID: &mechanic.ID},
		{UserID: owner.ID, CarID: car.ID, Status: model.StatusClosed, Priority: model.PriorityLow, Description: "d", MechanicID: &mechanic.ID},
	}
	for i := range tickets {
		if err := db.Create(&tickets[i]).Error; err != nil {
			t.Fatalf("failed to create ticket: %v", err)
		}
	}

	stats, err := svc.TicketStatistics(context.Background(), admin)
	if err != nil {
		t.Fatalf("TicketStatistics: %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("expected 4 tickets total, got %d", stats.Total)
	}
	if stats.Open != 1 || stats.Assigned != 1 {
		t.Fatalf("unexpected status counts: open=%d assigned=%d", stats.Open, stats.Assigned)
	}
	if stats.ByPriority[model.PriorityUrgent] != 1 {
		t.Fatalf("expected 1 urgent ticket, got %d", stats.ByPriority[model.PriorityUrgent])
	}
	// Admins get no personal columns
	if stats.MyAssigned != nil || stats.MyCompleted != nil {
		t.Fatalf("admin statistics must not carry personal counts")
	}

	stats, err = svc.TicketStatistics(context.Background(), mechanic)
	if err != nil {
		t.Fatalf("TicketStatistics as mechanic: %v", err)
	}
	if stats.MyAssigned == nil || *stats.MyAssigned != 1 {
		t.Fatalf("expected 1 active assignment, got %v", stats.MyAssigned)
	}
	// Only completed counts; closed tickets have left the bucket
	if stats.MyCompleted == nil || *stats.MyCompleted != 1 {
		t.Fatalf("expected 1 completed ticket, got %v", stats.MyCompleted)
	}
}
