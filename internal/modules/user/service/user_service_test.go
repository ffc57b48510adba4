package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
	carRepo "github.com/garagedesk/garagedesk/internal/modules/car/repository"
	ticketRepo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	userDto "github.com/garagedesk/garagedesk/internal/modules/user/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/user/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
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

func newService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewUserService(repo.NewUserRepository(db), ticketRepo.NewTicketRepository(db), carRepo.NewCarRepository(db))
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

func TestSelfDeleteAlwaysForbidden(t *testing.T) {
	svc, db := newService(t)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	other := seedUser(t, db, "other@example.com", model.RoleUser)

	if err := svc.Delete(context.Background(), admin, admin.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected self-delete forbidden even for admins, got %v", err)
	}

	if err := svc.Delete(context.Background(), admin, other.ID); err != nil {
		t.Fatalf("admin deleting another user: %v", err)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	svc, db := newService(t)
	mechanic := seedUser(t, db, "mech@example.com", model.RoleMechanic)
	victim := seedUser(t, db, "victim@example.com", model.RoleUser)

	if err := svc.Delete(context.Background(), mechanic, victim.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for mechanic, got %v", err)
	}
}

func TestRoleChangeRequiresAdmin(t *testing.T) {
	svc, db := newService(t)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	target := seedUser(t, db, "target@example.com", model.RoleUser)

	role := string(model.RoleMechanic)

	// A user promoting themselves is rejected
	if _, err := svc.Update(context.Background(), target, target.ID, userDto.UpdateUserRequest{Role: &role}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden self-promotion, got %v", err)
	}

	got, err := svc.Update(context.Background(), admin, target.ID, userDto.UpdateUserRequest{Role: &role})
	if err != nil {
		t.Fatalf("Update as admin: %v", err)
	}
	if got.Role != model.RoleMechanic {
		t.Fatalf("expected mechanic, got %s", got.Role)
	}

	// Admins may reassign their own role too
	userRole := string(model.RoleUser)
	got, err = svc.Update(context.Background(), admin, admin.ID, userDto.UpdateUserRequest{Role: &userRole})
	if err != nil {
		t.Fatalf("admin self role change: %v", err)
	}
	if got.Role != model.RoleUser {
		t.Fatalf("expected user, got %s", got.Role)
	}
}

func TestProfileAccess(t *testing.T) {
	svc, db := newService(t)
	alice := seedUser(t, db, "alice@example.com", model.RoleUser)
	bob := seedUser(t, db, "bob@example.com", model.RoleUser)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)

	if _, err := svc.Get(context.Background(), alice, alice.ID); err != nil {
		t.Fatalf("self view: %v", err)
	}
	if _, err := svc.Get(context.Background(), alice, bob.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden viewing another profile, got %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, bob.ID); err != nil {
		t.Fatalf("admin view: %v", err)
	}

	name := "Alice Updated"
	got, err := svc.Update(context.Background(), alice, alice.ID, userDto.UpdateUserRequest{Name: &name})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if got.Name != name {
		t.Fatalf("expected name update to apply")
	}
}

func TestListRequiresAdmin(t *testing.T) {
	svc, db := newService(t)
	mechanic := seedUser(t, db, "mech@example.com", model.RoleMechanic)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)

	if _, _, err := svc.List(context.Background(), mechanic, userDto.ListUsersQuery{}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for mechanic, got %v", err)
	}

	_, total, err := svc.List(context.Background(), admin, userDto.ListUsersQuery{Role: string(model.RoleMechanic)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 mechanic, got %d", total)
	}
}

func TestMechanicsDirectoryCountsActiveWork(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	busy := seedUser(t, db, "busy@example.com", model.RoleMechanic)
	idle := seedUser(t, db, "idle@example.com", model.RoleMechanic)

	car := model.Car{UserID: owner.ID, Make: "Honda", Model: "Civic", Year: 2020, LicensePlate: "MD-001"}
	if err := db.Create(&car).Error; err != nil {
		t.Fatalf("failed to create car: %v", err)
	}

	seedTickets := []model.Ticket{
		{UserID: owner.ID, CarID: car.ID, Status: model.StatusAssigned, Priority: model.PriorityMedium, Description: "a", MechanicID: &busy.ID},
		{UserID: owner.ID, CarID: car.ID, Status: model.StatusInProgress, Priority: model.PriorityMedium, Description: "b", MechanicID: &busy.ID},
		{UserID: owner.ID, CarID: car.ID, Status: model.StatusCompleted, Priority: model.PriorityMedium, Description: "c", MechanicID: &busy.ID},
	}
	for i := range seedTickets {
		if err := db.Create(&seedTickets[i]).Error; err != nil {
			t.Fatalf("failed to create ticket: %v", err)
		}
	}

	// Customers don't get the directory
	if _, err := svc.Mechanics(context.Background(), owner); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for regular user, got %v", err)
	}

	summaries, err := svc.Mechanics(context.Background(), busy)
	if err != nil {
		t.Fatalf("Mechanics: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 mechanics, got %d", len(summaries))
	}

	counts := map[string]int64{}
	for _, s := range summaries {
		counts[s.Mechanic.Email] = s.ActiveTickets
	}
	// Completed work does not count as active
	if counts[busy.Email] != 2 {
		t.Fatalf("expected busy mechanic at 2 active tickets, got %d", counts[busy.Email])
	}
	if counts[idle.Email] != 0 {
		t.Fatalf("expected idle mechanic at 0 active tickets, got %d", counts[idle.Email])
	}
}

func TestNestedListingsScopedToSelfOrStaff(t *testing.T) {
	svc, db := newService(t)
	alice := seedUser(t, db, "alice@example.com", model.RoleUser)
	bob := seedUser(t, db, "bob@example.com", model.RoleUser)
	mechanic := seedUser(t, db, "mech@example.com", model.RoleMechanic)

	car := model.Car{UserID: alice.ID, Make: "Honda", Model: "Civic", Year: 2020, LicensePlate: "NL-001"}
	if err := db.Create(&car).Error; err != nil {
		t.Fatalf("failed to create car: %v", err)
	}

	if _, err := svc.ListCars(context.Background(), bob, alice.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for unrelated user, got %v", err)
	}

	cars, err := svc.ListCars(context.Background(), alice, alice.ID)
	if err != nil {
		t.Fatalf("ListCars: %v", err)
	}
	if len(cars) != 1 {
		t.Fatalf("expected 1 car, got %d", len(cars))
	}

	if _, _, err := svc.ListTickets(context.Background(), bob, alice.ID, commonDto.PageQuery{}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for unrelated user, got %v", err)
	}
	if _, _, err := svc.ListTickets(context.Background(), mechanic, alice.ID, commonDto.PageQuery{}); err != nil {
		t.Fatalf("staff nested listing: %v", err)
	}
}

func TestEmailUniquenessOnUpdate(t *testing.T) {
	svc, db := newService(t)
	alice := seedUser(t, db, "alice@example.com", model.RoleUser)
	seedUser(t, db, "taken@example.com", model.RoleUser)

	email := "taken@example.com"
	if _, err := svc.Update(context.Background(), alice, alice.ID, userDto.UpdateUserRequest{Email: &email}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for taken email, got %v", err)
	}
}
