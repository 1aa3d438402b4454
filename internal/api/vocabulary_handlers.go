package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readlog/readlog-server/internal/analytics"
	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/extraction"
)

func (s *Server) registerVocabularyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getVocabularyHealth",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/vocabulary/health",
		Summary:     "Vocabulary health",
		Description: "Reports how well the controlled vocabulary covers the extracted concepts",
		Tags:        []string{"Vocabulary"},
	}, s.handleVocabularyHealth)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshConcepts",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/vocabulary/refresh",
		Summary:     "Run an extraction batch",
		Description: "Extracts concepts for one bounded batch of pending books. Call again until done is true.",
		Tags:        []string{"Vocabulary"},
		Middlewares: huma.Middlewares{s.limitExpensive},
	}, s.handleRefreshConcepts)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetConcepts",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/vocabulary/reset",
		Summary:     "Reset extraction",
		Description: "Queues books for re-extraction: those with no concepts (empty) or every settled book (all)",
		Tags:        []string{"Vocabulary"},
	}, s.handleResetConcepts)
}

// VocabularyHealthOutput wraps the health report for Huma.
type VocabularyHealthOutput struct {
	Body analytics.VocabularyHealth
}

// RefreshInput bounds the batch.
type RefreshInput struct {
	Limit int `query:"limit" minimum:"0" doc:"Books to process, the configured batch size when omitted"`
}

// RefreshOutput wraps the batch result for Huma.
type RefreshOutput struct {
	Body extraction.BatchResult
}

// ResetInput wraps the reset request for Huma.
type ResetInput struct {
	Body struct {
		Scope string `json:"scope" enum:"empty,all" doc:"Which books to reset"`
	}
}

// ResetOutput reports how many books were reset.
type ResetOutput struct {
	Body struct {
		Reset int64 `json:"reset" doc:"Books returned to pending"`
	}
}

func (s *Server) handleVocabularyHealth(ctx context.Context, _ *struct{}) (*VocabularyHealthOutput, error) {
	h, err := s.services.Concept.VocabularyHealth(ctx)
	if err != nil {
		return nil, err
	}
	return &VocabularyHealthOutput{Body: h}, nil
}

func (s *Server) handleRefreshConcepts(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
	result, err := s.services.Concept.Refresh(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &RefreshOutput{Body: result}, nil
}

func (s *Server) handleResetConcepts(ctx context.Context, input *ResetInput) (*ResetOutput, error) {
	n, err := s.services.Concept.Reset(ctx, domain.ResetScope(input.Body.Scope))
	if err != nil {
		return nil, err
	}
	out := &ResetOutput{}
	out.Body.Reset = n
	return out, nil
}
