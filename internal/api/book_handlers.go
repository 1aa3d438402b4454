package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readlog/readlog-server/internal/catalog"
	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books",
		Summary:     "List books",
		Description: "Returns books, read books newest first followed by the to-read list",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/books",
		Summary:       "Create book",
		Description:   "Adds a book to the log. Concepts are extracted by the next vocabulary refresh.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/search",
		Summary:     "Search library catalog",
		Description: "Looks up bibliographic candidates by title in the public library catalog",
		Tags:        []string{"Books"},
		Middlewares: huma.Middlewares{s.limitExpensive},
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/books/{id}",
		Summary:     "Update book",
		Description: "Replaces a book's fields. Editing the title or notes queues the book for re-extraction.",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        apiPrefix + "/books/{id}",
		Summary:     "Delete book",
		Tags:        []string{"Books"},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "markBookRead",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/books/{id}/read",
		Summary:     "Mark book read",
		Description: "Sets the read date, today when none is given",
		Tags:        []string{"Books"},
	}, s.handleMarkRead)
}

// === DTOs ===

// ListBooksInput contains filters for listing books.
type ListBooksInput struct {
	Year       int    `query:"year" doc:"Only books read in this year"`
	Category   string `query:"category" doc:"Only books on this shelf"`
	Discipline string `query:"discipline" doc:"Only books in this discipline"`
	Query      string `query:"q" doc:"Substring of title or author"`
	Unread     bool   `query:"unread" doc:"Only books not read yet"`
}

// BookRequest is the request body for creating or replacing a book.
type BookRequest struct {
	Title         string    `json:"title" maxLength:"500" doc:"Title"`
	Author        string    `json:"author,omitempty" doc:"Author"`
	Publisher     string    `json:"publisher,omitempty" doc:"Publisher"`
	PublishedYear *int      `json:"published_year,omitempty" doc:"Year of publication"`
	Pages         int       `json:"pages" doc:"Page count"`
	Category      string    `json:"category,omitempty" doc:"Shelf name"`
	Discipline    string    `json:"discipline,omitempty" doc:"Academic discipline"`
	Tags          []string  `json:"tags,omitempty" doc:"Free-form tags"`
	Rating        *int      `json:"rating,omitempty" doc:"Rating from 1 to 5"`
	Notes         string    `json:"notes,omitempty" doc:"Reading notes"`
	ReadAt        *FlexDate `json:"read_at,omitempty" doc:"Date the book was finished"`
}

func (r BookRequest) toInput() service.BookInput {
	return service.BookInput{
		Title:         r.Title,
		Author:        r.Author,
		Publisher:     r.Publisher,
		PublishedYear: r.PublishedYear,
		Pages:         r.Pages,
		Category:      r.Category,
		Discipline:    r.Discipline,
		Tags:          r.Tags,
		Rating:        r.Rating,
		Notes:         r.Notes,
		ReadAt:        r.ReadAt.Ptr(),
	}
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID               string     `json:"id" doc:"Book ID"`
	Title            string     `json:"title" doc:"Title"`
	Author           string     `json:"author,omitempty" doc:"Author"`
	Publisher        string     `json:"publisher,omitempty" doc:"Publisher"`
	PublishedYear    *int       `json:"published_year,omitempty" doc:"Year of publication"`
	Pages            int        `json:"pages" doc:"Page count"`
	Category         string     `json:"category,omitempty" doc:"Shelf name"`
	Discipline       string     `json:"discipline,omitempty" doc:"Academic discipline"`
	Tags             []string   `json:"tags" doc:"Tags"`
	Rating           *int       `json:"rating,omitempty" doc:"Rating from 1 to 5"`
	Notes            string     `json:"notes,omitempty" doc:"Reading notes"`
	ReadAt           *FlexDate  `json:"read_at,omitempty" doc:"Date the book was finished"`
	ExtractionStatus string     `json:"extraction_status" doc:"pending, failed, empty or completed"`
	ExtractionError  string     `json:"extraction_error,omitempty" doc:"Reason of the last failed extraction"`
	ExtractedAt      *time.Time `json:"extracted_at,omitempty" doc:"Time of the last settled extraction"`
	CreatedAt        time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt        time.Time  `json:"updated_at" doc:"Last update time"`
}

func toBookResponse(b *domain.Book) BookResponse {
	resp := BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		Publisher:        b.Publisher,
		PublishedYear:    b.PublishedYear,
		Pages:            b.Pages,
		Category:         b.Category,
		Discipline:       b.Discipline,
		Tags:             b.Tags,
		Rating:           b.Rating,
		Notes:            b.Notes,
		ExtractionStatus: string(b.Extraction.Status),
		ExtractionError:  b.Extraction.Error,
		ExtractedAt:      b.Extraction.ExtractedAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if b.ReadAt != nil {
		resp.ReadAt = &FlexDate{Time: b.ReadAt.UTC()}
	}
	return resp
}

func toBookResponses(books []*domain.Book) []BookResponse {
	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = toBookResponse(b)
	}
	return resp
}

// ListBooksResponse contains a list of books.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Books"`
}

// ListBooksOutput wraps the list response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body BookRequest
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookIDInput addresses a book by ID.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body BookRequest
}

// MarkReadRequest is the optional body of a mark-read request.
type MarkReadRequest struct {
	ReadAt *FlexDate `json:"read_at,omitempty" doc:"Date the book was finished, today when omitted"`
}

// MarkReadInput wraps the mark-read request for Huma.
type MarkReadInput struct {
	ID   string           `path:"id" doc:"Book ID"`
	Body *MarkReadRequest `required:"false"`
}

// SearchCatalogInput contains the catalog query.
type SearchCatalogInput struct {
	Title string `query:"title" required:"true" minLength:"1" doc:"Title or part of it"`
}

// SearchCatalogResponse contains catalog candidates.
type SearchCatalogResponse struct {
	Candidates []catalog.Candidate `json:"candidates" doc:"Up to five matching records"`
}

// SearchCatalogOutput wraps the catalog response for Huma.
type SearchCatalogOutput struct {
	Body SearchCatalogResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	books, err := s.services.Book.ListBooks(ctx, domain.BookFilter{
		Year:       input.Year,
		Category:   input.Category,
		Discipline: input.Discipline,
		Query:      input.Query,
		UnreadOnly: input.Unread,
	})
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: ListBooksResponse{Books: toBookResponses(books)}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	b, err := s.services.Book.CreateBook(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(b)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	b, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(b)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	b, err := s.services.Book.UpdateBook(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(b)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleMarkRead(ctx context.Context, input *MarkReadInput) (*BookOutput, error) {
	var readAt *time.Time
	if input.Body != nil {
		readAt = input.Body.ReadAt.Ptr()
	}

	b, err := s.services.Book.MarkRead(ctx, input.ID, readAt)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(b)}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	candidates, err := s.services.Catalog.Search(ctx, input.Title)
	if err != nil {
		return nil, err
	}
	return &SearchCatalogOutput{Body: SearchCatalogResponse{Candidates: candidates}}, nil
}
