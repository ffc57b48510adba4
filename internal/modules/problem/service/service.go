package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/authz"
	"github.com/garagedesk/garagedesk/internal/model"
	problemDto "github.com/garagedesk/garagedesk/internal/modules/problem/dto"
	repo "github.com/garagedesk/garagedesk/internal/modules/problem/repository"
	"github.com/garagedesk/garagedesk/pkg/apperror"
)

var sanitize = bluemonday.StrictPolicy()

type ProblemService interface {
	Create(ctx context.Context, actor model.User, req problemDto.CreateProblemRequest) (*model.Problem, error)
	List(ctx context.Context, actor model.User, q problemDto.ListProblemsQuery) ([]model.Problem, int64, error)
	Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.Problem, error)
	Update(ctx context.Context, actor model.User, id uuid.UUID, req problemDto.UpdateProblemRequest) (*model.Problem, error)
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
}

type problemService struct {
	problemRepo repo.ProblemRepository
}

func NewProblemService(problemRepo repo.ProblemRepository) ProblemService {
	return &problemService{problemRepo: problemRepo}
}

func (s *problemService) Create(ctx context.Context, actor model.User, req problemDto.CreateProblemRequest) (*model.Problem, error) {
	if !authz.CanManageProblems(actor) {
		return nil, fmt.Errorf("only staff can manage the problem catalog: %w", apperror.ErrForbidden)
	}

	if err := s.checkNameUnique(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	problem := &model.Problem{
		Name:     req.Name,
		Category: model.Category(req.Category),
		IsActive: true,
	}
	if req.Description != nil {
		desc := sanitize.Sanitize(*req.Description)
		problem.Description = &desc
	}
	if req.IsActive != nil {
		problem.IsActive = *req.IsActive
	}

	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *problemService) List(ctx context.Context, actor model.User, q problemDto.ListProblemsQuery) ([]model.Problem, int64, error) {
	q.Normalize()

	filter := repo.Filter{
		Category: model.Category(q.Category),
		IsActive: q.IsActive,
		Search:   q.Search,
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, 0, fmt.Errorf("unknown category %q: %w", q.Category, apperror.ErrValidation)
	}

	return s.problemRepo.FindAll(ctx, filter, q.Offset(), q.PerPage)
}

func (s *problemService) Get(ctx context.Context, actor model.User, id uuid.UUID) (*model.Problem, error) {
	return s.findProblem(ctx, id)
}

func (s *problemService) Update(ctx context.Context, actor model.User, id uuid.UUID, req problemDto.UpdateProblemRequest) (*model.Problem, error) {
	if !authz.CanManageProblems(actor) {
		return nil, fmt.Errorf("only staff can manage the problem catalog: %w", apperror.ErrForbidden)
	}

	problem, err := s.findProblem(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != problem.Name {
		if err := s.checkNameUnique(ctx, *req.Name, problem.ID); err != nil {
			return nil, err
		}
		problem.Name = *req.Name
	}
	if req.Category != nil {
		problem.Category = model.Category(*req.Category)
	}
	if req.Description != nil {
		desc := sanitize.Sanitize(*req.Description)
		problem.Description = &desc
	}
	if req.IsActive != nil {
		problem.IsActive = *req.IsActive
	}

	if err := s.problemRepo.Update(ctx, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *problemService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	if !authz.CanDeleteProblem(actor) {
		return fmt.Errorf("only admins can delete problems: %w", apperror.ErrForbidden)
	}

	if _, err := s.findProblem(ctx, id); err != nil {
		return err
	}
	return s.problemRepo.Delete(ctx, id)
}

func (s *problemService) findProblem(ctx context.Context, id uuid.UUID) (*model.Problem, error) {
	problem, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("problem not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return problem, nil
}

func (s *problemService) checkNameUnique(ctx context.Context, name string, selfID uuid.UUID) error {
	existing, err := s.problemRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("a problem with this name already exists: %w", apperror.ErrValidation)
	}
	return nil
}
