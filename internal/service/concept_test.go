package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/readlog/readlog-server/internal/analytics"
	"github.com/readlog/readlog-server/internal/domain"
	domainerrors "github.com/readlog/readlog-server/internal/errors"
	"github.com/readlog/readlog-server/internal/extraction"
	"github.com/readlog/readlog-server/internal/llm/mocks"
	"github.com/readlog/readlog-server/internal/logger"
	"github.com/readlog/readlog-server/internal/store/sqlite"
	"github.com/readlog/readlog-server/internal/validation"
	"github.com/readlog/readlog-server/internal/vocabulary"
)

func setupTestConcepts(t *testing.T) (*ConceptService, *BookService, *sqlite.Store, *mocks.MockGenerator) {
	t.Helper()
	s := setupTestStore(t)
	log := logger.Discard().Logger
	gen := mocks.NewMockGenerator(gomock.NewController(t))

	vocab := vocabulary.NewHolder(vocabulary.New(
		[]string{"Ethics", "Justice", "Virtue"},
		map[string]string{"Ethics": "The study of right action."},
	))
	extractor := extraction.NewExtractor(s, gen, vocab, 0, log)
	svc := NewConceptService(s, vocab, extractor, gen, 30, log)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc, NewBookService(s, validation.New(), log), s, gen
}

func addReadBook(t *testing.T, books *BookService, title string, year int) *domain.Book {
	t.Helper()
	b, err := books.CreateBook(context.Background(), BookInput{Title: title, Pages: 100, ReadAt: date(year, time.February, 1)})
	require.NoError(t, err)
	return b
}

func TestConceptAnalytics_FromStore(t *testing.T) {
	svc, books, s, _ := setupTestConcepts(t)
	ctx := context.Background()

	b1 := addReadBook(t, books, "One", 2023)
	b2 := addReadBook(t, books, "Two", 2024)
	b3 := addReadBook(t, books, "Three", 2024)
	require.NoError(t, s.CompleteExtraction(ctx, b1.ID, []string{"Ethics", "Justice"}, time.Now()))
	require.NoError(t, s.CompleteExtraction(ctx, b2.ID, []string{"Ethics", "Justice"}, time.Now()))
	require.NoError(t, s.MarkExtractionFailed(ctx, b3.ID, "timeout"))

	graph, err := svc.Graph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, analyticsEdge("Ethics", "Justice", 2), graph.Edges[0])
	assert.Equal(t, 2023, graph.MinYear)
	assert.Equal(t, 2024, graph.MaxYear)

	bump, err := svc.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, bump.Years)

	heat, err := svc.Heatmap(ctx)
	require.NoError(t, err)
	assert.True(t, heat.HasExtractionErrors)

	withEthics, err := svc.Books(ctx, "Ethics")
	require.NoError(t, err)
	require.Len(t, withEthics, 2)
	assert.Equal(t, b2.ID, withEthics[0].ID, "most recent first")
}

func TestDescribe(t *testing.T) {
	svc, _, _, gen := setupTestConcepts(t)
	ctx := context.Background()

	d, err := svc.Describe(ctx, "Ethics")
	require.NoError(t, err)
	assert.Equal(t, "vocabulary", d.Source)

	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("  Fairness in society.  ", nil)
	d, err = svc.Describe(ctx, "Justice")
	require.NoError(t, err)
	assert.Equal(t, "generated", d.Source)
	assert.Equal(t, "Fairness in society.", d.Description)

	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("boom"))
	_, err = svc.Describe(ctx, "Virtue")
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)

	_, err = svc.Describe(ctx, " ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestVocabularyHealth_FromStore(t *testing.T) {
	svc, books, s, _ := setupTestConcepts(t)
	ctx := context.Background()

	matched := addReadBook(t, books, "Matched", 2024)
	outside := addReadBook(t, books, "Outside", 2024)
	empty := addReadBook(t, books, "Empty", 2020)
	addReadBook(t, books, "Pending", 2024)

	require.NoError(t, s.CompleteExtraction(ctx, matched.ID, []string{"Virtue"}, time.Now()))
	require.NoError(t, s.CompleteExtraction(ctx, outside.ID, []string{"Stoicism"}, time.Now()))
	require.NoError(t, s.MarkExtractionEmpty(ctx, empty.ID, time.Now()))

	h, err := svc.VocabularyHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, h.VocabularySize)
	assert.Equal(t, 3, h.TotalProcessed)
	assert.Equal(t, 1, h.TotalMatched)
	assert.Equal(t, 1, h.TotalNoMatch)
	assert.Equal(t, 2, h.RecentProcessed)
	require.Len(t, h.OutOfVocabConcepts, 1)
	assert.Equal(t, "Stoicism", h.OutOfVocabConcepts[0].Concept)
}

func TestRefreshAndReset(t *testing.T) {
	svc, books, _, gen := setupTestConcepts(t)
	ctx := context.Background()

	addReadBook(t, books, "A", 2024)
	addReadBook(t, books, "B", 2024)

	gen.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(`[]`, nil).Times(2)
	res, err := svc.Refresh(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.True(t, res.Done)

	n, err := svc.Reset(ctx, domain.ResetEmpty)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = svc.Reset(ctx, "some")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func analyticsEdge(source, target string, strength int) analytics.ConceptEdge {
	return analytics.ConceptEdge{Source: source, Target: target, Strength: strength}
}
