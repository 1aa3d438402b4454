package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/readlog/readlog-server/internal/catalog"
	domainerrors "github.com/readlog/readlog-server/internal/errors"
)

// CatalogSearcher looks up bibliographic candidates by title.
type CatalogSearcher interface {
	SearchByTitle(ctx context.Context, title string) ([]catalog.Candidate, error)
}

// CatalogService fills in book metadata from the public library catalog.
type CatalogService struct {
	searcher CatalogSearcher
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(searcher CatalogSearcher, logger *slog.Logger) *CatalogService {
	return &CatalogService{searcher: searcher, logger: logger}
}

// Search returns up to five catalog candidates whose title contains the query.
func (s *CatalogService) Search(ctx context.Context, title string) ([]catalog.Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainerrors.Validation("title is required")
	}

	candidates, err := s.searcher.SearchByTitle(ctx, title)
	if err != nil {
		s.logger.Warn("catalog search failed", "title", title, "error", err)
		return nil, domainerrors.Unavailable("the library catalog is unavailable, try again later", err)
	}
	return candidates, nil
}
