package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/store"
)

// GetGoal returns the goal for a year.
// Returns store.ErrNotFound if no goal has been set.
func (s *Store) GetGoal(ctx context.Context, year int) (*domain.AnnualGoal, error) {
	var (
		g                    domain.AnnualGoal
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT year, page_goal, created_at, updated_at FROM annual_goals WHERE year = ?`, year,
	).Scan(&g.Year, &g.PageGoal, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("goal not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query goal: %w", err)
	}

	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpsertGoal creates or replaces the goal for g.Year. CreatedAt is kept on replace.
func (s *Store) UpsertGoal(ctx context.Context, g *domain.AnnualGoal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annual_goals (year, page_goal, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(year) DO UPDATE SET
			page_goal = excluded.page_goal,
			updated_at = excluded.updated_at`,
		g.Year, g.PageGoal, formatTime(g.CreatedAt), formatTime(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}
