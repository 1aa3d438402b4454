package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/categories",
		Summary:     "List categories",
		Description: "Returns every shelf with the number of books on it",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/categories",
		Summary:       "Create category",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        apiPrefix + "/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes a shelf no book is on",
		Tags:        []string{"Categories"},
	}, s.handleDeleteCategory)
}

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID        string    `json:"id" doc:"Category ID"`
	Name      string    `json:"name" doc:"Category name"`
	BookCount int       `json:"book_count" doc:"Books on this shelf"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, BookCount: c.BookCount, CreatedAt: c.CreatedAt}
}

// ListCategoriesOutput wraps the category list for Huma.
type ListCategoriesOutput struct {
	Body struct {
		Categories []CategoryResponse `json:"categories" doc:"Categories"`
	}
}

// CreateCategoryInput wraps the create request for Huma.
type CreateCategoryInput struct {
	Body struct {
		Name string `json:"name" maxLength:"100" doc:"Category name"`
	}
}

// CategoryOutput wraps a single category for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// CategoryIDInput addresses a category by ID.
type CategoryIDInput struct {
	ID string `path:"id" doc:"Category ID"`
}

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Category.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListCategoriesOutput{}
	out.Body.Categories = make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out.Body.Categories[i] = toCategoryResponse(c)
	}
	return out, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Category.CreateCategory(ctx, service.CategoryInput{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: toCategoryResponse(c)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *CategoryIDInput) (*MessageOutput, error) {
	if err := s.services.Category.DeleteCategory(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}
