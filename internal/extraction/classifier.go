package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/llm"
	"github.com/readlog/readlog-server/internal/metrics"
)

// notesPreviewRunes bounds how much of the notes goes into a classification prompt.
const notesPreviewRunes = 200

// DisciplineStore reads unclassified books and stores their discipline.
type DisciplineStore interface {
	ListUnclassifiedBooks(ctx context.Context, limit int) ([]*domain.Book, error)
	SetDiscipline(ctx context.Context, bookID, discipline string) error
}

// ClassifyResult summarizes a classification run.
type ClassifyResult struct {
	Classified int `json:"classified"`
	Fallback   int `json:"fallback"`
	Errors     int `json:"errors"`
}

// Classifier assigns each unclassified book one discipline.
type Classifier struct {
	store     DisciplineStore
	generator llm.Generator
	delay     time.Duration
	logger    *slog.Logger
}

// NewClassifier creates a classifier that waits delay after every book.
func NewClassifier(store DisciplineStore, generator llm.Generator, delay time.Duration, logger *slog.Logger) *Classifier {
	return &Classifier{store: store, generator: generator, delay: delay, logger: logger}
}

// BuildClassificationPrompt renders the discipline prompt for a book.
func BuildClassificationPrompt(book *domain.Book) string {
	author := book.Author
	if author == "" {
		author = "unknown"
	}
	category := book.Category
	if category == "" {
		category = "none"
	}

	var b strings.Builder
	b.WriteString("Classify the following book into the single most fitting academic discipline.\n")
	fmt.Fprintf(&b, "Disciplines: %s\n\n", strings.Join(domain.Disciplines, "; "))
	b.WriteString("Book:\n")
	fmt.Fprintf(&b, "Title: %s\n", book.Title)
	fmt.Fprintf(&b, "Author: %s\n", author)
	fmt.Fprintf(&b, "Category: %s\n", category)
	fmt.Fprintf(&b, "Notes (first %d characters): %s\n\n", notesPreviewRunes, truncateRunes(book.Notes, notesPreviewRunes))
	b.WriteString("Answer with exactly one discipline name from the list and nothing else.")
	return b.String()
}

// ParseDiscipline accepts the answer only when it is exactly one of the disciplines.
func ParseDiscipline(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if domain.IsDiscipline(answer) {
		return answer, true
	}
	return domain.DisciplineOther, false
}

// ClassifyPending classifies up to limit books without a discipline. A limit of 0 or less means all of them.
// A generator error skips the book, leaving it unclassified for the next run.
func (c *Classifier) ClassifyPending(ctx context.Context, limit int) (ClassifyResult, error) {
	var result ClassifyResult
	if limit <= 0 {
		limit = -1
	}

	books, err := c.store.ListUnclassifiedBooks(ctx, limit)
	if err != nil {
		return result, fmt.Errorf("list unclassified books: %w", err)
	}
	c.logger.Info("classifying books", "count", len(books))

	for i, book := range books {
		answer, err := c.generator.Generate(ctx, BuildClassificationPrompt(book))
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Errors++
			metrics.RecordClassification("error")
			c.logger.Warn("classification failed", "book_id", book.ID, "title", book.Title, "error", err)
		} else {
			discipline, matched := ParseDiscipline(answer)
			if err := c.store.SetDiscipline(ctx, book.ID, discipline); err != nil {
				return result, fmt.Errorf("store discipline: %w", err)
			}
			result.Classified++
			if matched {
				metrics.RecordClassification("matched")
			} else {
				result.Fallback++
				metrics.RecordClassification("fallback")
			}
			c.logger.Info("book classified",
				"progress", fmt.Sprintf("%d/%d", i+1, len(books)),
				"title", book.Title,
				"discipline", discipline,
			)
		}

		if err := sleep(ctx, c.delay); err != nil {
			return result, err
		}
	}

	return result, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
