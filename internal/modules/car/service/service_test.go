package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
	carDto "github.com/garagedesk/garagedesk/internal/modules/car/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/car/repository"
	ticketRepo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	userRepo "github.com/garagedesk/garagedesk/internal/modules/user/repository"
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

func newService(t *testing.T) (CarService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewCarService(repo.NewCarRepository(db), userRepo.NewUserRepository(db), ticketRepo.NewTicketRepository(db))
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

func TestCreateCarForSelf(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)

	car, err := svc.Create(context.Background(), owner, carDto.CreateCarRequest{
		Make:         "Honda",
		Model:        "Civic",
		Year:         2020,
		LicensePlate: "XY-987-ZW",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if car.UserID != owner.ID {
		t.Fatalf("expected car owned by creator")
	}
}

func TestCreateCarForOtherRequiresAdmin(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	other := seedUser(t, db, "other@example.com", model.RoleUser)
	mechanic := seedUser(t, db, "mech@example.com", model.RoleMechanic)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)

	req := carDto.CreateCarRequest{
		Make:         "Ford",
		Model:        "Focus",
		Year:         2019,
		LicensePlate: "FO-001-CS",
		UserID:       owner.ID.String(),
	}

	if _, err := svc.Create(context.Background(), other, req); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for regular user, got %v", err)
	}
	if _, err := svc.Create(context.Background(), mechanic, req); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for mechanic, got %v", err)
	}

	car, err := svc.Create(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("Create as admin: %v", err)
	}
	if car.UserID != owner.ID {
		t.Fatalf("expected car assigned to the named owner")
	}
}

func TestPlateUniqueness(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)

	first := carDto.CreateCarRequest{Make: "Honda", Model: "Civic", Year: 2020, LicensePlate: "DUP-001"}
	if _, err := svc.Create(context.Background(), owner, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := carDto.CreateCarRequest{Make: "Mazda", Model: "3", Year: 2021, LicensePlate: "DUP-001"}
	if _, err := svc.Create(context.Background(), owner, second); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for duplicate plate, got %v", err)
	}

	// Updating a car to its own plate is fine
	car, err := svc.Create(context.Background(), owner, carDto.CreateCarRequest{Make: "Mazda", Model: "3", Year: 2021, LicensePlate: "DUP-002"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	plate := "DUP-001"
	if _, err := svc.Update(context.Background(), owner, car.ID, carDto.UpdateCarRequest{LicensePlate: &plate}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error updating onto taken plate, got %v", err)
	}
}

func TestVINUniqueness(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)

	vin := "1HGBH41JXMN109186"
	if _, err := svc.Create(context.Background(), owner, carDto.CreateCarRequest{
		Make: "Honda", Model: "Civic", Year: 2020, LicensePlate: "VIN-001", VIN: &vin,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Create(context.Background(), owner, carDto.CreateCarRequest{
		Make: "Honda", Model: "Accord", Year: 2021, LicensePlate: "VIN-002", VIN: &vin,
	}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for duplicate vin, got %v", err)
	}
}

func TestYearBounds(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)

	cases := []struct {
		year int
		ok   bool
	}{
		{1899, false},
		{1900, true},
		{time.Now().Year(), true},
		{time.Now().Year() + 1, true},
		{time.Now().Year() + 2, false},
	}

	for i, tc := range cases {
		_, err := svc.Create(context.Background(), owner, carDto.CreateCarRequest{
			Make: "Make", Model: "Model", Year: tc.year,
			LicensePlate: "YR-" + string(rune('A'+i)) + "00",
		})
		if tc.ok && err != nil {
			t.Fatalf("year %d: unexpected error %v", tc.year, err)
		}
		if !tc.ok && !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("year %d: expected validation error, got %v", tc.year, err)
		}
	}
}

func TestViewAndManagePermissions(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	other := seedUser(t, db, "other@example.com", model.RoleUser)
	mechanic := seedUser(t, db, "mech@example.com", model.RoleMechanic)

	car, err := svc.Create(context.Background(), owner, carDto.CreateCarRequest{
		Make: "Honda", Model: "Civic", Year: 2020, LicensePlate: "PERM-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(context.Background(), other, car.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected stranger view forbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), mechanic, car.ID); err != nil {
		t.Fatalf("mechanic view: %v", err)
	}

	color := "red"
	if _, err := svc.Update(context.Background(), mechanic, car.ID, carDto.UpdateCarRequest{Color: &color}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected mechanic update forbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), mechanic, car.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected mechanic delete forbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), owner, car.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestListScopedToOwner(t *testing.T) {
	svc, db := newService(t)
	owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	other := seedUser(t, db, "other@example.com", model.RoleUser)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)

	if _, err := svc.Create(context.Background(), owner, carDto.CreateCarRequest{
		Make: "Honda", Model: "Civic", Year: 2020, LicensePlate: "LS-001",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, total, err := svc.List(context.Background(), other, carDto.ListCarsQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected other user to see no cars, got %d", total)
	}

	_, total, err = svc.List(context.Background(), admin, carDto.ListCarsQuery{})
	if err != nil {
		t.Fatalf("List as admin: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected admin to see all cars, got %d", total)
	}

	_, total, err = svc.List(context.Background(), admin, carDto.ListCarsQuery{UserID: other.ID.String()})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected admin filter by empty owner to return none, got %d", total)
	}
}
