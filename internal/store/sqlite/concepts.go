package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/store"
)

// extractionCandidateWhere selects read books that still need concept extraction.
const extractionCandidateWhere = `read_at IS NOT NULL AND extraction_status IN ('pending', 'failed')`

// ListExtractionCandidates returns up to limit read books whose extraction is pending or failed.
// Pending books come first so a caller looping over batches always makes progress
// while failed books keep failing.
func (s *Store) ListExtractionCandidates(ctx context.Context, limit int) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE `+extractionCandidateWhere+`
		ORDER BY extraction_status = 'failed', read_at DESC, id ASC LIMIT ?`, limit)
}

// CountPendingExtractions returns how many read books have never been attempted since their last reset.
func (s *Store) CountPendingExtractions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE read_at IS NOT NULL AND extraction_status = 'pending'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending extractions: %w", err)
	}
	return n, nil
}

// CountExtractionCandidates returns how many read books still need extraction.
func (s *Store) CountExtractionCandidates(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE `+extractionCandidateWhere).Scan(&n); err != nil {
		return 0, fmt.Errorf("count extraction candidates: %w", err)
	}
	return n, nil
}

// CountFailedExtractions returns how many read books are in the failed state.
func (s *Store) CountFailedExtractions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE read_at IS NOT NULL AND extraction_status = 'failed'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count failed extractions: %w", err)
	}
	return n, nil
}

// CompleteExtraction replaces a book's concept set and marks it completed, in one transaction.
func (s *Store) CompleteExtraction(ctx context.Context, bookID string, concepts []string, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_concepts WHERE book_id = ?`, bookID); err != nil {
			return fmt.Errorf("delete book_concepts: %w", err)
		}
		for _, c := range concepts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO book_concepts (book_id, concept, weight) VALUES (?, ?, 1)
				ON CONFLICT(book_id, concept) DO UPDATE SET weight = 1`, bookID, c)
			if err != nil {
				return fmt.Errorf("insert book_concept: %w", err)
			}
		}
		return setExtractionStatus(ctx, tx, bookID, domain.ExtractionCompleted, "", &at)
	})
}

// MarkExtractionEmpty clears a book's concepts and marks it settled with no usable concepts.
func (s *Store) MarkExtractionEmpty(ctx context.Context, bookID string, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_concepts WHERE book_id = ?`, bookID); err != nil {
			return fmt.Errorf("delete book_concepts: %w", err)
		}
		return setExtractionStatus(ctx, tx, bookID, domain.ExtractionEmpty, "", &at)
	})
}

// MarkExtractionFailed records a failed attempt. Existing concepts are left untouched.
func (s *Store) MarkExtractionFailed(ctx context.Context, bookID, reason string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return setExtractionStatus(ctx, tx, bookID, domain.ExtractionFailed, reason, nil)
	})
}

// ResetExtraction returns books to pending so the next batch re-extracts them.
// Only read books are touched; the count of reset books is returned.
func (s *Store) ResetExtraction(ctx context.Context, scope domain.ResetScope) (int64, error) {
	var where string
	switch scope {
	case domain.ResetEmpty:
		where = `extraction_status = 'empty'`
	case domain.ResetAll:
		where = `extraction_status != 'pending'`
	default:
		return 0, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown reset scope %q", scope))
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET extraction_status = 'pending', extraction_error = '', updated_at = ?
		WHERE read_at IS NOT NULL AND `+where, formatTime(time.Now().UTC()))
	if err != nil {
		return 0, fmt.Errorf("reset extraction: %w", err)
	}
	return result.RowsAffected()
}

// ListConceptOccurrences returns every concept row of a completed, read book with its read date.
func (s *Store) ListConceptOccurrences(ctx context.Context) ([]domain.ConceptOccurrence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bc.book_id, bc.concept, bc.weight, b.read_at
		FROM book_concepts bc
		JOIN books b ON b.id = bc.book_id
		WHERE b.read_at IS NOT NULL AND b.extraction_status = 'completed'
		ORDER BY b.read_at ASC, bc.book_id ASC, bc.concept ASC`)
	if err != nil {
		return nil, fmt.Errorf("query concept occurrences: %w", err)
	}
	defer rows.Close()

	out := []domain.ConceptOccurrence{}
	for rows.Next() {
		var (
			o      domain.ConceptOccurrence
			readAt string
		)
		if err := rows.Scan(&o.BookID, &o.Concept, &o.Weight, &readAt); err != nil {
			return nil, fmt.Errorf("scan concept occurrence: %w", err)
		}
		if o.ReadAt, err = parseTime(readAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListBookConcepts returns a book's concepts in name order.
func (s *Store) ListBookConcepts(ctx context.Context, bookID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT concept FROM book_concepts WHERE book_id = ? ORDER BY concept`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query book_concepts: %w", err)
	}
	defer rows.Close()

	concepts := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan book_concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

// ListBooksWithConcept returns read books that exhibit a concept, most recently read first.
func (s *Store) ListBooksWithConcept(ctx context.Context, concept string) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE read_at IS NOT NULL AND extraction_status = 'completed'
		  AND id IN (SELECT book_id FROM book_concepts WHERE concept = ?)
		ORDER BY read_at DESC, id ASC`, concept)
}

func setExtractionStatus(ctx context.Context, tx *sql.Tx, bookID string, status domain.ExtractionStatus, reason string, at *time.Time) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE books SET extraction_status = ?, extraction_error = ?,
			extracted_at = COALESCE(?, extracted_at), updated_at = ?
		WHERE id = ?`,
		string(status), reason, nullTimeString(at), formatTime(time.Now().UTC()), bookID)
	if err != nil {
		return fmt.Errorf("update extraction status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("book not found")
	}
	return nil
}
