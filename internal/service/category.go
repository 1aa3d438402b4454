package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	domainerrors "github.com/readlog/readlog-server/internal/errors"
	"github.com/readlog/readlog-server/internal/id"
	"github.com/readlog/readlog-server/internal/store"
	"github.com/readlog/readlog-server/internal/store/sqlite"
	"github.com/readlog/readlog-server/internal/validation"
)

// CategoryInput is the body of a create-category request.
type CategoryInput struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// CategoryService manages the user's shelves.
type CategoryService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, validator: validator, logger: logger}
}

// ListCategories returns every category with the number of books referencing it.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory adds a category. Duplicate names are rejected.
func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	categoryID, err := id.NewCategoryID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate category ID")
	}

	c := &domain.Category{
		ID:        categoryID,
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("category created", "category_id", c.ID, "name", c.Name)
	return c, nil
}

// DeleteCategory removes a category that no book references.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	n, err := s.store.CountBooksInCategory(ctx, c.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return domainerrors.Conflictf("category %q is used by %d books", c.Name, n)
	}

	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}
	s.logger.Info("category deleted", "category_id", categoryID, "name", c.Name)
	return nil
}

// SeedDefaults creates the default categories that do not exist yet and returns how many were added.
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, name := range domain.DefaultCategories {
		_, err := s.CreateCategory(ctx, CategoryInput{Name: name})
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
		case err != nil:
			return created, err
		default:
			created++
		}
	}
	return created, nil
}
