// Package extraction asks a text generator which controlled-vocabulary concepts a book addresses
// and which academic discipline it belongs to, and records the answers.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/llm"
	"github.com/readlog/readlog-server/internal/metrics"
	"github.com/readlog/readlog-server/internal/vocabulary"
)

// ErrNoArray is returned by ParseConcepts when the response holds no JSON array.
var ErrNoArray = errors.New("response contains no JSON array")

var arrayPattern = regexp.MustCompile(`\[[\s\S]*?\]`)

// ConceptStore persists extraction outcomes.
type ConceptStore interface {
	ListExtractionCandidates(ctx context.Context, limit int) ([]*domain.Book, error)
	CountPendingExtractions(ctx context.Context) (int, error)
	CountExtractionCandidates(ctx context.Context) (int, error)
	CompleteExtraction(ctx context.Context, bookID string, concepts []string, at time.Time) error
	MarkExtractionEmpty(ctx context.Context, bookID string, at time.Time) error
	MarkExtractionFailed(ctx context.Context, bookID, reason string) error
	ResetExtraction(ctx context.Context, scope domain.ResetScope) (int64, error)
}

// VocabularySource hands out the current vocabulary snapshot.
type VocabularySource interface {
	Current() *vocabulary.Vocabulary
}

// Outcome is the result of extracting one book.
type Outcome struct {
	BookID   string                  `json:"book_id"`
	Status   domain.ExtractionStatus `json:"status"`
	Concepts []string                `json:"concepts,omitempty"`
	Err      error                   `json:"-"`
}

// BatchResult reports the progress of one RefreshBatch call.
// Processed counts settled books (completed or empty); Errors counts failures.
// Remaining counts only never-attempted books, so Done is reached even while some books keep failing;
// those are reported as Retryable and picked up again by later batches.
type BatchResult struct {
	Processed int  `json:"processed"`
	Errors    int  `json:"errors"`
	Remaining int  `json:"remaining"`
	Retryable int  `json:"retryable"`
	Done      bool `json:"done"`
}

// Extractor runs concept extraction.
type Extractor struct {
	store     ConceptStore
	generator llm.Generator
	vocab     VocabularySource
	delay     time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewExtractor creates an extractor that waits delay between consecutive books.
func NewExtractor(store ConceptStore, generator llm.Generator, vocab VocabularySource, delay time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{
		store:     store,
		generator: generator,
		vocab:     vocab,
		delay:     delay,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// BuildPrompt renders the extraction prompt for a book.
func BuildPrompt(terms []string, title, notes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This is a reading record for the book %q.\n", title)
	if n := strings.TrimSpace(notes); n != "" {
		fmt.Fprintf(&b, "Reader's notes:\n%s\n", n)
	}
	b.WriteString("\nFrom the vocabulary below, choose up to 8 concepts the reader absorbed from this book.\n")
	b.WriteString("Only choose concepts the title or notes actually support. Choosing fewer is fine.\n")
	b.WriteString("Only if an important concept is missing from the vocabulary, you may add at most 2 of your own.\n\n")
	fmt.Fprintf(&b, "Vocabulary: %s\n\n", strings.Join(terms, ", "))
	b.WriteString(`Answer with a JSON array only. Example: ["concept 1", "concept 2"]`)
	return b.String()
}

// ParseConcepts reads the first JSON array in text and returns its non-blank string elements,
// trimmed and de-duplicated in order. Non-string elements are skipped.
func ParseConcepts(text string) ([]string, error) {
	match := arrayPattern.FindString(text)
	if match == "" {
		return nil, ErrNoArray
	}

	var raw []any
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil, fmt.Errorf("decode concept array: %w", err)
	}

	seen := make(map[string]bool, len(raw))
	concepts := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		concepts = append(concepts, s)
	}
	return concepts, nil
}

// ExtractBook extracts and stores concepts for one book.
// Generator and parse failures are recorded on the book and reported in the Outcome;
// the returned error is reserved for store failures.
func (e *Extractor) ExtractBook(ctx context.Context, book *domain.Book) (Outcome, error) {
	log := e.logger.With("book_id", book.ID)
	outcome := Outcome{BookID: book.ID}

	prompt := BuildPrompt(e.vocab.Current().Terms(), book.Title, book.Notes)
	text, err := e.generator.Generate(ctx, prompt)
	var concepts []string
	if err == nil {
		concepts, err = ParseConcepts(text)
	}

	// Once the model has answered, the outcome is persisted even if the caller gives up.
	writeCtx := context.WithoutCancel(ctx)

	switch {
	case err != nil:
		if ctx.Err() != nil {
			return outcome, ctx.Err()
		}
		outcome.Status = domain.ExtractionFailed
		outcome.Err = err
		log.Warn("concept extraction failed", "error", err)
		if storeErr := e.store.MarkExtractionFailed(writeCtx, book.ID, err.Error()); storeErr != nil {
			return outcome, fmt.Errorf("record failed extraction: %w", storeErr)
		}
	case len(concepts) == 0:
		outcome.Status = domain.ExtractionEmpty
		log.Debug("no concepts extracted")
		if err := e.store.MarkExtractionEmpty(writeCtx, book.ID, e.now()); err != nil {
			return outcome, fmt.Errorf("record empty extraction: %w", err)
		}
	default:
		outcome.Status = domain.ExtractionCompleted
		outcome.Concepts = concepts
		log.Debug("concepts extracted", "count", len(concepts))
		if err := e.store.CompleteExtraction(writeCtx, book.ID, concepts, e.now()); err != nil {
			return outcome, fmt.Errorf("store concepts: %w", err)
		}
	}

	metrics.RecordExtraction(string(outcome.Status))
	return outcome, nil
}

// RefreshBatch extracts up to limit pending or failed read books, one at a time.
// A cancelled context stops the batch between books and returns the progress so far with the context error.
func (e *Extractor) RefreshBatch(ctx context.Context, limit int) (BatchResult, error) {
	var result BatchResult

	books, err := e.store.ListExtractionCandidates(ctx, limit)
	if err != nil {
		return result, fmt.Errorf("list extraction candidates: %w", err)
	}

	for i, book := range books {
		if i > 0 {
			if err := sleep(ctx, e.delay); err != nil {
				return result, err
			}
		}

		outcome, err := e.ExtractBook(ctx, book)
		if err != nil {
			return result, err
		}
		if outcome.Status == domain.ExtractionFailed {
			result.Errors++
		} else {
			result.Processed++
		}
	}

	remaining, err := e.store.CountPendingExtractions(ctx)
	if err != nil {
		return result, fmt.Errorf("count pending extractions: %w", err)
	}
	candidates, err := e.store.CountExtractionCandidates(ctx)
	if err != nil {
		return result, fmt.Errorf("count extraction candidates: %w", err)
	}
	result.Remaining = remaining
	result.Retryable = candidates - remaining
	result.Done = remaining == 0

	e.logger.Info("extraction batch finished",
		"processed", result.Processed,
		"errors", result.Errors,
		"remaining", result.Remaining,
		"retryable", result.Retryable,
	)
	return result, nil
}

// Reset returns books to pending so the next batches re-extract them.
func (e *Extractor) Reset(ctx context.Context, scope domain.ResetScope) (int64, error) {
	n, err := e.store.ResetExtraction(ctx, scope)
	if err != nil {
		return 0, err
	}
	e.logger.Info("extraction reset", "scope", scope, "books", n)
	return n, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
