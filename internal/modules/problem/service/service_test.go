package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
	problemDto "github.com/garagedesk/garagedesk/internal/modules/problem/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/problem/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&model.Problem{}, &model.TicketProblem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newService(t *testing.T) (ProblemService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewProblemService(repo.NewProblemRepository(db)), db
}

var (
	user     = model.User{ID: uuid.New(), Role: model.RoleUser}
	mechanic = model.User{ID: uuid.New(), Role: model.RoleMechanic}
	admin    = model.User{ID: uuid.New(), Role: model.RoleAdmin}
)

func TestCreateRequiresStaff(t *testing.T) {
	svc, _ := newService(t)

	req := problemDto.CreateProblemRequest{Name: "Dead battery", Category: "electrical"}

	if _, err := svc.Create(context.Background(), user, req); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for regular user, got %v", err)
	}

	problem, err := svc.Create(context.Background(), mechanic, req)
	if err != nil {
		t.Fatalf("Create as mechanic: %v", err)
	}
	if !problem.IsActive {
		t.Fatalf("new problems default to active")
	}
	if problem.Category != model.CategoryElectrical {
		t.Fatalf("expected electrical, got %s", problem.Category)
	}
}

func TestNameUniqueness(t *testing.T) {
	svc, _ := newService(t)

	req := problemDto.CreateProblemRequest{Name: "Oil leak", Category: "engine"}
	if _, err := svc.Create(context.Background(), admin, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), admin, req); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for duplicate name, got %v", err)
	}

	// Renaming onto a taken name is also rejected
	other, err := svc.Create(context.Background(), admin, problemDto.CreateProblemRequest{Name: "Coolant leak", Category: "engine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	name := "Oil leak"
	if _, err := svc.Update(context.Background(), admin, other.ID, problemDto.UpdateProblemRequest{Name: &name}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error renaming onto taken name, got %v", err)
	}

	// A no-op rename to its own name passes
	name = "Coolant leak"
	if _, err := svc.Update(context.Background(), admin, other.ID, problemDto.UpdateProblemRequest{Name: &name}); err != nil {
		t.Fatalf("self rename: %v", err)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	svc, _ := newService(t)

	problem, err := svc.Create(context.Background(), admin, problemDto.CreateProblemRequest{Name: "Rust repair", Category: "body"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), mechanic, problem.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for mechanic, got %v", err)
	}
	if err := svc.Delete(context.Background(), admin, problem.ID); err != nil {
		t.Fatalf("Delete as admin: %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, problem.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	inactive := false
	seed := []problemDto.CreateProblemRequest{
		{Name: "Dead battery", Category: "electrical"},
		{Name: "Faulty wiring", Category: "electrical"},
		{Name: "Oil leak", Category: "engine"},
		{Name: "Cassette player repair", Category: "electrical", IsActive: &inactive},
	}
	for _, req := range seed {
		if _, err := svc.Create(ctx, admin, req); err != nil {
			t.Fatalf("Create %q: %v", req.Name, err)
		}
	}

	_, total, err := svc.List(ctx, user, problemDto.ListProblemsQuery{Category: "electrical"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 electrical problems, got %d", total)
	}

	active := true
	_, total, err = svc.List(ctx, user, problemDto.ListProblemsQuery{Category: "electrical", IsActive: &active})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 active electrical problems, got %d", total)
	}

	problems, total, err := svc.List(ctx, user, problemDto.ListProblemsQuery{Search: "leak"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || problems[0].Name != "Oil leak" {
		t.Fatalf("expected search to find the oil leak, got %d", total)
	}

	if _, _, err := svc.List(ctx, user, problemDto.ListProblemsQuery{Category: "plumbing"}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}
}

func TestCreateInactivePersists(t *testing.T) {
	svc, db := newService(t)

	inactive := false
	problem, err := svc.Create(context.Background(), admin, problemDto.CreateProblemRequest{
		Name:     "Carburetor rebuild",
		Category: "engine",
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if problem.IsActive {
		t.Fatalf("expected problem created inactive")
	}

	// The stored row matches, not just the returned struct
	var stored model.Problem
	if err := db.First(&stored, "id = ?", problem.ID).Error; err != nil {
		t.Fatalf("failed to reload problem: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("inactive flag must survive the insert")
	}
}

func TestDescriptionSanitized(t *testing.T) {
	svc, _ := newService(t)

	desc := `<img src=x onerror=alert(1)>Grinding when braking`
	problem, err := svc.Create(context.Background(), admin, problemDto.CreateProblemRequest{
		Name:        "Worn brake pads",
		Category:    "brakes",
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if problem.Description == nil || *problem.Description != "Grinding when braking" {
		t.Fatalf("expected markup stripped, got %v", problem.Description)
	}
}
