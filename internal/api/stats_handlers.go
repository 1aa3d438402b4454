package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readlog/readlog-server/internal/analytics"
	"github.com/readlog/readlog-server/internal/service"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listYears",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/years",
		Summary:     "List reading years",
		Description: "Returns the years with read books, newest first, always including the current year",
		Tags:        []string{"Stats"},
	}, s.handleListYears)

	huma.Register(s.api, huma.Operation{
		OperationID: "getYearStats",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/stats",
		Summary:     "Year statistics",
		Description: "Returns totals, monthly pages, tags, goal progress and the burndown chart of a year",
		Tags:        []string{"Stats"},
	}, s.handleYearStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAllTimeStats",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/stats/all",
		Summary:     "All-time statistics",
		Tags:        []string{"Stats"},
	}, s.handleAllTimeStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryEvolution",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/analytics/categories",
		Summary:     "Category evolution",
		Description: "Returns pages per category per year",
		Tags:        []string{"Analytics"},
	}, s.handleCategoryEvolution)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDisciplineEvolution",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/analytics/disciplines",
		Summary:     "Discipline evolution",
		Description: "Returns pages per discipline per year with all-time totals",
		Tags:        []string{"Analytics"},
	}, s.handleDisciplineEvolution)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDisciplineBump",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/analytics/disciplines/bump",
		Summary:     "Discipline bump chart",
		Description: "Returns per-year ranks of the most read disciplines",
		Tags:        []string{"Analytics"},
	}, s.handleDisciplineBump)
}

// YearsOutput wraps the year list for Huma.
type YearsOutput struct {
	Body struct {
		Years []int `json:"years" doc:"Years, newest first"`
	}
}

// YearStatsInput selects the year of the stats page.
type YearStatsInput struct {
	Year int `query:"year" doc:"Calendar year, the current year when omitted"`
}

// YearStatsOutput wraps the year report for Huma.
type YearStatsOutput struct {
	Body *service.YearReport
}

// AllTimeStatsOutput wraps all-time stats for Huma.
type AllTimeStatsOutput struct {
	Body analytics.AllTimeStats
}

// CategoryEvolutionOutput wraps the category evolution for Huma.
type CategoryEvolutionOutput struct {
	Body analytics.CategoryEvolution
}

// DisciplineEvolutionOutput wraps the discipline evolution for Huma.
type DisciplineEvolutionOutput struct {
	Body analytics.DisciplineEvolution
}

// DisciplineBumpOutput wraps the discipline bump chart for Huma.
type DisciplineBumpOutput struct {
	Body analytics.DisciplineBump
}

func (s *Server) handleListYears(ctx context.Context, _ *struct{}) (*YearsOutput, error) {
	years, err := s.services.Stats.Years(ctx)
	if err != nil {
		return nil, err
	}
	out := &YearsOutput{}
	out.Body.Years = years
	return out, nil
}

func (s *Server) handleYearStats(ctx context.Context, input *YearStatsInput) (*YearStatsOutput, error) {
	report, err := s.services.Stats.YearStats(ctx, input.Year)
	if err != nil {
		return nil, err
	}
	return &YearStatsOutput{Body: report}, nil
}

func (s *Server) handleAllTimeStats(ctx context.Context, _ *struct{}) (*AllTimeStatsOutput, error) {
	stats, err := s.services.Stats.AllTimeStats(ctx)
	if err != nil {
		return nil, err
	}
	return &AllTimeStatsOutput{Body: stats}, nil
}

func (s *Server) handleCategoryEvolution(ctx context.Context, _ *struct{}) (*CategoryEvolutionOutput, error) {
	evo, err := s.services.Stats.CategoryEvolution(ctx)
	if err != nil {
		return nil, err
	}
	return &CategoryEvolutionOutput{Body: evo}, nil
}

func (s *Server) handleDisciplineEvolution(ctx context.Context, _ *struct{}) (*DisciplineEvolutionOutput, error) {
	evo, err := s.services.Stats.DisciplineEvolution(ctx)
	if err != nil {
		return nil, err
	}
	return &DisciplineEvolutionOutput{Body: evo}, nil
}

func (s *Server) handleDisciplineBump(ctx context.Context, _ *struct{}) (*DisciplineBumpOutput, error) {
	bump, err := s.services.Stats.DisciplineBump(ctx)
	if err != nil {
		return nil, err
	}
	return &DisciplineBumpOutput{Body: bump}, nil
}
