// Package service provides the business logic layer of the reading log: book, category and goal
// management, reading statistics, and the concept knowledge map.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	domainerrors "github.com/readlog/readlog-server/internal/errors"
	"github.com/readlog/readlog-server/internal/id"
	"github.com/readlog/readlog-server/internal/store/sqlite"
	"github.com/readlog/readlog-server/internal/validation"
)

// BookInput holds the editable fields of a book, for both create and full update.
type BookInput struct {
	Title         string     `json:"title" validate:"notblank,max=500"`
	Author        string     `json:"author,omitempty" validate:"max=500"`
	Publisher     string     `json:"publisher,omitempty" validate:"max=500"`
	PublishedYear *int       `json:"published_year,omitempty" validate:"omitempty,min=0,max=9999"`
	Pages         int        `json:"pages" validate:"min=1"`
	Category      string     `json:"category,omitempty" validate:"max=100"`
	Discipline    string     `json:"discipline,omitempty" validate:"discipline"`
	Tags          []string   `json:"tags,omitempty" validate:"max=50,dive,max=100"`
	Rating        *int       `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Notes         string     `json:"notes,omitempty" validate:"max=20000"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
}

func (in *BookInput) apply(b *domain.Book) {
	b.Title = strings.TrimSpace(in.Title)
	b.Author = strings.TrimSpace(in.Author)
	b.Publisher = strings.TrimSpace(in.Publisher)
	b.PublishedYear = in.PublishedYear
	b.Pages = in.Pages
	b.Category = strings.TrimSpace(in.Category)
	b.Discipline = in.Discipline
	b.Tags = domain.NormalizeTags(in.Tags)
	b.Rating = in.Rating
	b.Notes = in.Notes
	b.ReadAt = in.ReadAt
}

// BookService orchestrates book operations.
type BookService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookService creates a new book service.
func NewBookService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		validator: validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListBooks returns books matching the filter.
func (s *BookService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	return s.store.ListBooks(ctx, filter)
}

// GetBook returns a book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// CreateBook validates and stores a new book. Its concepts are extracted by the next refresh batch.
func (s *BookService) CreateBook(ctx context.Context, in BookInput) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	bookID, err := id.NewBookID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate book ID")
	}

	b := &domain.Book{
		ID:         bookID,
		Extraction: domain.Extraction{Status: domain.ExtractionPending},
	}
	in.apply(b)
	b.InitTimestamps()

	if err := s.store.CreateBook(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("book created", "book_id", b.ID, "title", b.Title, "read", b.IsRead())
	return b, nil
}

// UpdateBook replaces a book's editable fields.
// Changing the title or notes sends the book back to pending so its concepts are re-extracted.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, in BookInput) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	b, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	prevTitle, prevNotes := b.Title, b.Notes
	in.apply(b)
	if b.Title != prevTitle || b.Notes != prevNotes {
		b.Extraction.Status = domain.ExtractionPending
		b.Extraction.Error = ""
	}
	b.Touch()

	if err := s.store.UpdateBook(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("book updated", "book_id", b.ID, "extraction_status", b.Extraction.Status)
	return b, nil
}

// DeleteBook removes a book with its tags and concepts.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}
	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// MarkRead records when a book was read. A nil readAt means today.
func (s *BookService) MarkRead(ctx context.Context, bookID string, readAt *time.Time) (*domain.Book, error) {
	at := s.now()
	if readAt != nil {
		at = *readAt
	}
	if err := s.store.MarkRead(ctx, bookID, at); err != nil {
		return nil, err
	}
	return s.store.GetBook(ctx, bookID)
}
