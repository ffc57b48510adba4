package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
)

// Filter narrows the problem catalog listing.
type Filter struct {
	Category model.Category
	IsActive *bool
	Search   string
}

// Frequency pairs a problem with how many tickets reference it.
type Frequency struct {
	Problem     model.Problem
	TicketCount int64
}

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Problem, error)
	FindByName(ctx context.Context, name string) (*model.Problem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Problem, error)
	FindAll(ctx context.Context, filter Filter, offset, limit int) ([]model.Problem, int64, error)
	Update(ctx context.Context, problem *model.Problem) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	FindByFrequency(ctx context.Context) ([]Frequency, error)
}

type problemRepository struct {
	db *gorm.DB
}

func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) Create(ctx context.Context, problem *model.Problem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}

func (r *problemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Problem, error) {
	var problem model.Problem
	if err := r.db.WithContext(ctx).First(&problem, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}

func (r *problemRepository) FindByName(ctx context.Context, name string) (*model.Problem, error) {
	var problem model.Problem
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&problem).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}

func (r *problemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Problem, error) {
	var problems []model.Problem
	if len(ids) == 0 {
		return problems, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}

func (r *problemRepository) FindAll(ctx context.Context, filter Filter, offset, limit int) ([]model.Problem, int64, error) {
	var problems []model.Problem
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Problem{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&problems).Error; err != nil {
		return nil, 0, err
	}

	return problems, total, nil
}

func (r *problemRepository) Update(ctx context.Context, problem *model.Problem) error {
	return r.db.WithContext(ctx).Save(problem).Error
}

func (r *problemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Problem{}, "id = ?", id).Error
}

func (r *problemRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Problem{}).Count(&n).Error
	return n, err
}

func (r *problemRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Problem{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *problemRepository) FindByFrequency(ctx context.Context) ([]Frequency, error) {
	var problems []model.Problem
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&problems).Error; err != nil {
		return nil, err
	}

	type row struct {
		ProblemID uuid.UUID
		Count     int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.TicketProblem{}).
		Select("problem_id, COUNT(*) as count").
		Group("problem_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, rw := range rows {
		counts[rw.ProblemID] = rw.Count
	}

	freq := make([]Frequency, 0, len(problems))
	for _, p := range problems {
		freq = append(freq, Frequency{Problem: p, TicketCount: counts[p.ID]})
	}
	// Most frequent first
	sort.SliceStable(freq, func(i, j int) bool {
		return freq[i].TicketCount > freq[j].TicketCount
	})
	return freq, nil
}
