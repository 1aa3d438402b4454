package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/readlog/readlog-server/internal/analytics"
	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/store/sqlite"
)

// YearReport is the year stats page: aggregates, goal progress and the burndown chart.
type YearReport struct {
	analytics.YearStats
	Progress *analytics.GoalProgress   `json:"progress"`
	Burndown []analytics.BurndownPoint `json:"burndown"`
}

// StatsService provides reading statistics over the book log.
type StatsService struct {
	store  *sqlite.Store
	goals  *GoalService
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(store *sqlite.Store, goals *GoalService, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		goals:  goals,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Years returns the distinct years with read books, newest first, always including the current year.
func (s *StatsService) Years(ctx context.Context) ([]int, error) {
	years, err := s.store.ReadYears(ctx)
	if err != nil {
		return nil, err
	}
	if current := s.now().Year(); !slices.Contains(years, current) {
		years = append(years, current)
	}
	slices.SortFunc(years, func(a, b int) int { return b - a })
	return years, nil
}

// YearStats aggregates one year. A zero year means the current year.
func (s *StatsService) YearStats(ctx context.Context, year int) (*YearReport, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}

	books, err := s.store.ListBooks(ctx, domain.BookFilter{Year: year, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	goal, err := s.goals.GetGoal(ctx, year)
	if err != nil {
		return nil, err
	}

	report := &YearReport{YearStats: analytics.ComputeYearStats(books, year, goal)}
	if goal != nil {
		thisMonth := 0
		if year == now.Year() {
			thisMonth = report.MonthlyPages[int(now.Month())-1].Pages
		}
		progress := analytics.ComputeGoalProgress(report.TotalPages, goal.PageGoal, year, now, thisMonth)
		report.Progress = &progress
		report.Burndown = analytics.ComputeBurndown(report.MonthlyPages, goal.PageGoal, year, now)
	}

	s.logger.Debug("year stats computed", "year", year, "books", report.TotalBooks, "pages", report.TotalPages)
	return report, nil
}

// AllTimeStats aggregates every read book.
func (s *StatsService) AllTimeStats(ctx context.Context) (analytics.AllTimeStats, error) {
	books, err := s.readBooks(ctx)
	if err != nil {
		return analytics.AllTimeStats{}, err
	}
	return analytics.ComputeAllTimeStats(books), nil
}

// CategoryEvolution returns pages per category per year.
func (s *StatsService) CategoryEvolution(ctx context.Context) (analytics.CategoryEvolution, error) {
	books, err := s.readBooks(ctx)
	if err != nil {
		return analytics.CategoryEvolution{}, err
	}
	return analytics.ComputeCategoryEvolution(books), nil
}

// DisciplineEvolution returns pages per discipline per year.
func (s *StatsService) DisciplineEvolution(ctx context.Context) (analytics.DisciplineEvolution, error) {
	books, err := s.readBooks(ctx)
	if err != nil {
		return analytics.DisciplineEvolution{}, err
	}
	return analytics.ComputeDisciplineEvolution(books), nil
}

// DisciplineBump ranks disciplines by books read per year.
func (s *StatsService) DisciplineBump(ctx context.Context) (analytics.DisciplineBump, error) {
	books, err := s.readBooks(ctx)
	if err != nil {
		return analytics.DisciplineBump{}, err
	}
	return analytics.ComputeDisciplineBump(books), nil
}

func (s *StatsService) readBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListBooks(ctx, domain.BookFilter{ReadOnly: true})
}
