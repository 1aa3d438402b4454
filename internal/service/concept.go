package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/readlog/readlog-server/internal/analytics"
	"github.com/readlog/readlog-server/internal/domain"
	domainerrors "github.com/readlog/readlog-server/internal/errors"
	"github.com/readlog/readlog-server/internal/extraction"
	"github.com/readlog/readlog-server/internal/llm"
	"github.com/readlog/readlog-server/internal/store/sqlite"
	"github.com/readlog/readlog-server/internal/vocabulary"
)

// MaxRefreshBatch caps the number of books one refresh request may process.
const MaxRefreshBatch = 100

// ConceptDescription is the explanation shown for a concept node.
type ConceptDescription struct {
	Concept     string `json:"concept"`
	Description string `json:"description"`
	// Source is "vocabulary" for static descriptions and "generated" for model output.
	Source string `json:"source"`
}

// ConceptService serves the knowledge map: concept analytics, lookups and extraction control.
type ConceptService struct {
	store     *sqlite.Store
	vocab     *vocabulary.Holder
	extractor *extraction.Extractor
	generator llm.Generator
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// NewConceptService creates a new concept service. batchSize is the refresh default when no limit is given.
func NewConceptService(
	store *sqlite.Store,
	vocab *vocabulary.Holder,
	extractor *extraction.Extractor,
	generator llm.Generator,
	batchSize int,
	logger *slog.Logger,
) *ConceptService {
	return &ConceptService{
		store:     store,
		vocab:     vocab,
		extractor: extractor,
		generator: generator,
		batchSize: batchSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Graph returns the co-occurrence network of the top concepts.
func (s *ConceptService) Graph(ctx context.Context) (analytics.ConceptGraph, error) {
	rows, err := s.store.ListConceptOccurrences(ctx)
	if err != nil {
		return analytics.ConceptGraph{}, err
	}
	return analytics.ComputeConceptGraph(rows), nil
}

// Bump returns the per-year ranks of the top concepts.
func (s *ConceptService) Bump(ctx context.Context) (analytics.ConceptBump, error) {
	rows, err := s.store.ListConceptOccurrences(ctx)
	if err != nil {
		return analytics.ConceptBump{}, err
	}
	return analytics.ComputeConceptBump(rows), nil
}

// Heatmap returns the concept by year matrix, flagging when some books failed extraction.
func (s *ConceptService) Heatmap(ctx context.Context) (analytics.KeywordHeatmap, error) {
	rows, err := s.store.ListConceptOccurrences(ctx)
	if err != nil {
		return analytics.KeywordHeatmap{}, err
	}
	failed, err := s.store.CountFailedExtractions(ctx)
	if err != nil {
		return analytics.KeywordHeatmap{}, err
	}
	return analytics.ComputeKeywordHeatmap(rows, failed > 0), nil
}

// Books returns the read books that exhibit concept, most recent first.
func (s *ConceptService) Books(ctx context.Context, concept string) ([]*domain.Book, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, domainerrors.Validation("concept is required")
	}
	return s.store.ListBooksWithConcept(ctx, concept)
}

// Describe explains a concept, preferring the static description map over the text generator.
func (s *ConceptService) Describe(ctx context.Context, concept string) (*ConceptDescription, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, domainerrors.Validation("concept is required")
	}

	if d, ok := s.vocab.Current().Description(concept); ok {
		return &ConceptDescription{Concept: concept, Description: d, Source: "vocabulary"}, nil
	}

	text, err := s.generator.Generate(ctx, describePrompt(concept))
	if err != nil {
		s.logger.Warn("concept description failed", "concept", concept, "error", err)
		return nil, domainerrors.Unavailable("could not generate a description for this concept, try again later", err)
	}
	return &ConceptDescription{Concept: concept, Description: strings.TrimSpace(text), Source: "generated"}, nil
}

func describePrompt(concept string) string {
	return fmt.Sprintf("Explain the academic concept %q in two or three plain sentences "+
		"for a general reader. Answer with the explanation only.", concept)
}

// VocabularyHealth scores how well the current vocabulary covers the extracted concepts.
func (s *ConceptService) VocabularyHealth(ctx context.Context) (analytics.VocabularyHealth, error) {
	books, err := s.store.ListBooks(ctx, domain.BookFilter{ReadOnly: true})
	if err != nil {
		return analytics.VocabularyHealth{}, err
	}
	rows, err := s.store.ListConceptOccurrences(ctx)
	if err != nil {
		return analytics.VocabularyHealth{}, err
	}

	concepts := make(map[string][]string)
	for _, r := range rows {
		concepts[r.BookID] = append(concepts[r.BookID], r.Concept)
	}

	hb := make([]analytics.HealthBook, 0, len(books))
	for _, b := range books {
		year, _ := b.ReadYear()
		hb = append(hb, analytics.HealthBook{
			ReadYear: year,
			Status:   b.Extraction.Status,
			Concepts: concepts[b.ID],
		})
	}

	return analytics.ComputeVocabularyHealth(hb, s.vocab.Current(), s.now()), nil
}

// Refresh advances extraction by one bounded batch. A non-positive limit uses the configured batch size.
func (s *ConceptService) Refresh(ctx context.Context, limit int) (extraction.BatchResult, error) {
	if limit <= 0 {
		limit = s.batchSize
	}
	limit = min(limit, MaxRefreshBatch)
	return s.extractor.RefreshBatch(ctx, limit)
}

// Reset returns books to pending so the next refresh re-extracts them against the current vocabulary.
func (s *ConceptService) Reset(ctx context.Context, scope domain.ResetScope) (int64, error) {
	if scope != domain.ResetEmpty && scope != domain.ResetAll {
		return 0, domainerrors.Validationf("scope must be %q or %q", domain.ResetEmpty, domain.ResetAll)
	}
	return s.extractor.Reset(ctx, scope)
}
