package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readlog/readlog-server/internal/analytics"
	"github.com/readlog/readlog-server/internal/service"
)

func (s *Server) registerConceptRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getConceptGraph",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/concepts/graph",
		Summary:     "Concept graph",
		Description: "Returns the top concepts with their peak years and co-occurrence edges",
		Tags:        []string{"Concepts"},
	}, s.handleConceptGraph)

	huma.Register(s.api, huma.Operation{
		OperationID: "getConceptBump",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/concepts/bump",
		Summary:     "Concept bump chart",
		Description: "Returns per-year ranks of the top concepts",
		Tags:        []string{"Concepts"},
	}, s.handleConceptBump)

	huma.Register(s.api, huma.Operation{
		OperationID: "getKeywordHeatmap",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/concepts/heatmap",
		Summary:     "Concept heatmap",
		Description: "Returns a concept by year count matrix",
		Tags:        []string{"Concepts"},
	}, s.handleKeywordHeatmap)

	huma.Register(s.api, huma.Operation{
		OperationID: "getConceptBooks",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/concepts/books",
		Summary:     "Books with a concept",
		Tags:        []string{"Concepts"},
	}, s.handleConceptBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getConceptDescription",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/concepts/description",
		Summary:     "Describe a concept",
		Description: "Returns the static description of a concept, or asks the text generator for one",
		Tags:        []string{"Concepts"},
		Middlewares: huma.Middlewares{s.limitExpensive},
	}, s.handleConceptDescription)
}

// ConceptQueryInput names a concept.
type ConceptQueryInput struct {
	Concept string `query:"concept" required:"true" minLength:"1" doc:"Concept name"`
}

// ConceptGraphOutput wraps the graph for Huma.
type ConceptGraphOutput struct {
	Body analytics.ConceptGraph
}

// ConceptBumpOutput wraps the bump chart for Huma.
type ConceptBumpOutput struct {
	Body analytics.ConceptBump
}

// KeywordHeatmapOutput wraps the heatmap for Huma.
type KeywordHeatmapOutput struct {
	Body analytics.KeywordHeatmap
}

// ConceptDescriptionOutput wraps a description for Huma.
type ConceptDescriptionOutput struct {
	Body *service.ConceptDescription
}

func (s *Server) handleConceptGraph(ctx context.Context, _ *struct{}) (*ConceptGraphOutput, error) {
	graph, err := s.services.Concept.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return &ConceptGraphOutput{Body: graph}, nil
}

func (s *Server) handleConceptBump(ctx context.Context, _ *struct{}) (*ConceptBumpOutput, error) {
	bump, err := s.services.Concept.Bump(ctx)
	if err != nil {
		return nil, err
	}
	return &ConceptBumpOutput{Body: bump}, nil
}

func (s *Server) handleKeywordHeatmap(ctx context.Context, _ *struct{}) (*KeywordHeatmapOutput, error) {
	heat, err := s.services.Concept.Heatmap(ctx)
	if err != nil {
		return nil, err
	}
	return &KeywordHeatmapOutput{Body: heat}, nil
}

func (s *Server) handleConceptBooks(ctx context.Context, input *ConceptQueryInput) (*ListBooksOutput, error) {
	books, err := s.services.Concept.Books(ctx, input.Concept)
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: ListBooksResponse{Books: toBookResponses(books)}}, nil
}

func (s *Server) handleConceptDescription(ctx context.Context, input *ConceptQueryInput) (*ConceptDescriptionOutput, error) {
	d, err := s.services.Concept.Describe(ctx, input.Concept)
	if err != nil {
		return nil, err
	}
	return &ConceptDescriptionOutput{Body: d}, nil
}
