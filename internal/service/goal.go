package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/store"
	"github.com/readlog/readlog-server/internal/store/sqlite"
	"github.com/readlog/readlog-server/internal/validation"
)

// GoalInput is the body of a set-goal request.
type GoalInput struct {
	Year     int `json:"year" validate:"min=1900,max=2999"`
	PageGoal int `json:"page_goal" validate:"min=1"`
}

// GoalService manages annual page goals.
type GoalService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewGoalService creates a new goal service.
func NewGoalService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *GoalService {
	return &GoalService{store: store, validator: validator, logger: logger}
}

// GetGoal returns the goal for year, or nil if none is set.
func (s *GoalService) GetGoal(ctx context.Context, year int) (*domain.AnnualGoal, error) {
	g, err := s.store.GetGoal(ctx, year)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return g, err
}

// SetGoal creates or replaces the goal for a year.
func (s *GoalService) SetGoal(ctx context.Context, in GoalInput) (*domain.AnnualGoal, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &domain.AnnualGoal{Year: in.Year, PageGoal: in.PageGoal, CreatedAt: now, UpdatedAt: now}
	if err := s.store.UpsertGoal(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("goal set", "year", in.Year, "page_goal", in.PageGoal)
	return s.store.GetGoal(ctx, in.Year)
}
