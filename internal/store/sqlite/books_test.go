package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/store"
)

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	year, rating := 1958, 5
	readAt := time.Date(2024, 3, 15, 18, 45, 0, 0, time.UTC)
	created := insertBook(t, s, "The Human Condition", func(b *domain.Book) {
		b.Author = "Hannah Arendt"
		b.PublishedYear = &year
		b.Pages = 352
		b.Category = "Philosophy"
		b.Tags = []string{"politics", "labor", "politics"}
		b.Rating = &rating
		b.Notes = "vita activa"
		b.ReadAt = &readAt
	})

	got, err := s.GetBook(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "The Human Condition", got.Title)
	assert.Equal(t, "Hannah Arendt", got.Author)
	assert.Equal(t, 1958, *got.PublishedYear)
	assert.Equal(t, 352, got.Pages)
	assert.Equal(t, []string{"politics", "labor"}, got.Tags)
	assert.Equal(t, 5, *got.Rating)
	assert.Equal(t, domain.ExtractionPending, got.Extraction.Status)
	require.NotNil(t, got.ReadAt)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got.ReadAt, "read date is day-granular")
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "book-missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := insertBook(t, s, "Draft", func(b *domain.Book) { b.Tags = []string{"a", "b"} })

	b.Title = "Final"
	b.Tags = []string{"c"}
	b.Rating = nil
	b.ReadAt = date(2023, 6, 1)
	b.Touch()
	require.NoError(t, s.UpdateBook(ctx, b))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, []string{"c"}, got.Tags)
	assert.True(t, got.IsRead())

	missing := &domain.Book{ID: "book-missing", Title: "x", Pages: 1}
	assert.True(t, errors.Is(s.UpdateBook(ctx, missing), store.ErrNotFound))
}

func TestDeleteBook_CascadesTagsAndConcepts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := insertBook(t, s, "Gone", func(b *domain.Book) {
		b.Tags = []string{"x"}
		b.ReadAt = date(2024, 1, 1)
	})
	require.NoError(t, s.CompleteExtraction(ctx, b.ID, []string{"Ethics"}, time.Now()))

	require.NoError(t, s.DeleteBook(ctx, b.ID))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM book_tags`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM book_concepts`).Scan(&n))
	assert.Zero(t, n)

	assert.True(t, errors.Is(s.DeleteBook(ctx, b.ID), store.ErrNotFound))
}

func TestListBooks_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertBook(t, s, "Ethics", func(b *domain.Book) {
		b.Category = "Philosophy"
		b.Discipline = "Philosophy & Ethics"
		b.ReadAt = date(2023, 5, 1)
	})
	insertBook(t, s, "SICP", func(b *domain.Book) {
		b.Author = "Abelson"
		b.Category = "Technology"
		b.ReadAt = date(2024, 2, 1)
	})
	insertBook(t, s, "Unread 100%", func(b *domain.Book) { b.Category = "Technology" })

	titles := func(books []*domain.Book) []string {
		out := make([]string, 0, len(books))
		for _, b := range books {
			out = append(out, b.Title)
		}
		return out
	}

	all, err := s.ListBooks(ctx, domain.BookFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"SICP", "Ethics", "Unread 100%"}, titles(all))

	byYear, err := s.ListBooks(ctx, domain.BookFilter{Year: 2023})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ethics"}, titles(byYear))

	byCategory, err := s.ListBooks(ctx, domain.BookFilter{Category: "Technology"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byDiscipline, err := s.ListBooks(ctx, domain.BookFilter{Discipline: "Philosophy & Ethics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ethics"}, titles(byDiscipline))

	byAuthor, err := s.ListBooks(ctx, domain.BookFilter{Query: "abel"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SICP"}, titles(byAuthor))

	literalPercent, err := s.ListBooks(ctx, domain.BookFilter{Query: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unread 100%"}, titles(literalPercent))

	unread, err := s.ListBooks(ctx, domain.BookFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unread 100%"}, titles(unread))

	read, err := s.ListBooks(ctx, domain.BookFilter{ReadOnly: true})
	require.NoError(t, err)
	assert.Len(t, read, 2)
}

func TestReadYears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	years, err := s.ReadYears(ctx)
	require.NoError(t, err)
	assert.Empty(t, years)

	insertBook(t, s, "a", func(b *domain.Book) { b.ReadAt = date(2022, 1, 1) })
	insertBook(t, s, "b", func(b *domain.Book) { b.ReadAt = date(2024, 12, 31) })
	insertBook(t, s, "c", func(b *domain.Book) { b.ReadAt = date(2024, 1, 1) })
	insertBook(t, s, "unread", nil)

	years, err = s.ReadYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2022}, years)
}

func TestMarkReadAndSetDiscipline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := insertBook(t, s, "Later", nil)
	require.NoError(t, s.MarkRead(ctx, b.ID, time.Date(2025, 7, 4, 13, 0, 0, 0, time.UTC)))
	require.NoError(t, s.SetDiscipline(ctx, b.ID, "Education"))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), *got.ReadAt)
	assert.Equal(t, "Education", got.Discipline)

	assert.True(t, errors.Is(s.MarkRead(ctx, "book-missing", time.Now()), store.ErrNotFound))
	assert.True(t, errors.Is(s.SetDiscipline(ctx, "book-missing", "Education"), store.ErrNotFound))
}

func TestListUnclassifiedBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertBook(t, s, "classified", func(b *domain.Book) { b.Discipline = "Education" })
	insertBook(t, s, "first", func(b *domain.Book) { b.CreatedAt = b.CreatedAt.Add(-time.Hour) })
	insertBook(t, s, "second", nil)

	books, err := s.ListUnclassifiedBooks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "first", books[0].Title)

	limited, err := s.ListUnclassifiedBooks(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
