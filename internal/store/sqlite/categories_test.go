package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/id"
	"github.com/readlog/readlog-server/internal/store"
)

func newCategory(name string) *domain.Category {
	return &domain.Category{ID: id.MustGenerate(id.PrefixCategory), Name: name, CreatedAt: time.Now().UTC()}
}

func TestCategories_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	philosophy := newCategory("Philosophy")
	require.NoError(t, s.CreateCategory(ctx, philosophy))
	require.NoError(t, s.CreateCategory(ctx, newCategory("Art")))

	err := s.CreateCategory(ctx, newCategory("Philosophy"))
	assert.True(t, errors.Is(err, store.ErrAlreadyExists))

	insertBook(t, s, "Ethics", func(b *domain.Book) { b.Category = "Philosophy" })
	insertBook(t, s, "Meditations", func(b *domain.Book) { b.Category = "Philosophy" })

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Art", list[0].Name)
	assert.Equal(t, 0, list[0].BookCount)
	assert.Equal(t, "Philosophy", list[1].Name)
	assert.Equal(t, 2, list[1].BookCount)

	got, err := s.GetCategory(ctx, philosophy.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BookCount)

	n, err := s.CountBooksInCategory(ctx, "Philosophy")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteCategory(ctx, philosophy.ID))
	_, err = s.GetCategory(ctx, philosophy.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.True(t, errors.Is(s.DeleteCategory(ctx, philosophy.ID), store.ErrNotFound))
}
