package api

import (
	"github.com/readlog/readlog-server/internal/service"
	"github.com/readlog/readlog-server/internal/vocabulary"
)

// Services groups the business services used by the API server.
type Services struct {
	Book     *service.BookService
	Category *service.CategoryService
	Goal     *service.GoalService
	Stats    *service.StatsService
	Concept  *service.ConceptService
	Catalog  *service.CatalogService
	// Vocabulary is read by the health check.
	Vocabulary *vocabulary.Holder
}
