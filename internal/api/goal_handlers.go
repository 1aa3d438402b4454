package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/service"
)

func (s *Server) registerGoalRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGoal",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/goals/{year}",
		Summary:     "Get annual goal",
		Description: "Returns the page goal of a year, or null when none is set",
		Tags:        []string{"Goals"},
	}, s.handleGetGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "setGoal",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/goals/{year}",
		Summary:     "Set annual goal",
		Tags:        []string{"Goals"},
	}, s.handleSetGoal)
}

// GoalYearInput addresses a goal by year.
type GoalYearInput struct {
	Year int `path:"year" doc:"Calendar year"`
}

// GoalOutput wraps a goal for Huma. The body is null when no goal is set.
type GoalOutput struct {
	Body *domain.AnnualGoal
}

// SetGoalInput wraps the set-goal request for Huma.
type SetGoalInput struct {
	Year int `path:"year" doc:"Calendar year"`
	Body struct {
		PageGoal int `json:"page_goal" doc:"Pages to read this year"`
	}
}

func (s *Server) handleGetGoal(ctx context.Context, input *GoalYearInput) (*GoalOutput, error) {
	g, err := s.services.Goal.GetGoal(ctx, input.Year)
	if err != nil {
		return nil, err
	}
	return &GoalOutput{Body: g}, nil
}

func (s *Server) handleSetGoal(ctx context.Context, input *SetGoalInput) (*GoalOutput, error) {
	g, err := s.services.Goal.SetGoal(ctx, service.GoalInput{Year: input.Year, PageGoal: input.Body.PageGoal})
	if err != nil {
		return nil, err
	}
	return &GoalOutput{Body: g}, nil
}
