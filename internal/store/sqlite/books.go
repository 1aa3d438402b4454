package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, author, publisher, published_year, pages, category, discipline,
	rating, notes, read_at, extraction_status, extraction_error, extracted_at, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
// Tags are left empty; callers attach them with loadTags.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b             domain.Book
		publishedYear sql.NullInt64
		rating        sql.NullInt64
		readAt        sql.NullString
		status        string
		extractedAt   sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Publisher,
		&publishedYear,
		&b.Pages,
		&b.Category,
		&b.Discipline,
		&rating,
		&b.Notes,
		&readAt,
		&status,
		&b.Extraction.Error,
		&extractedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.PublishedYear = intPtr(publishedYear)
	b.Rating = intPtr(rating)
	b.Extraction.Status = domain.ExtractionStatus(status)

	if b.ReadAt, err = parseNullableTime(readAt); err != nil {
		return nil, fmt.Errorf("parse read_at: %w", err)
	}
	if b.Extraction.ExtractedAt, err = parseNullableTime(extractedAt); err != nil {
		return nil, fmt.Errorf("parse extracted_at: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBook inserts a book and its tags. A zero extraction status is stored as pending.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	if b.Extraction.Status == "" {
		b.Extraction.Status = domain.ExtractionPending
	}
	if b.ReadAt != nil {
		readAt := domain.ReadDate(*b.ReadAt)
		b.ReadAt = &readAt
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (
				id, title, author, publisher, published_year, pages, category, discipline,
				rating, notes, read_at, extraction_status, extraction_error, extracted_at,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID,
			b.Title,
			b.Author,
			b.Publisher,
			nullIntPtr(b.PublishedYear),
			b.Pages,
			b.Category,
			b.Discipline,
			nullIntPtr(b.Rating),
			b.Notes,
			nullTimeString(b.ReadAt),
			string(b.Extraction.Status),
			b.Extraction.Error,
			nullTimeString(b.Extraction.ExtractedAt),
			formatTime(b.CreatedAt),
			formatTime(b.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists.WithMessage("book already exists")
			}
			return fmt.Errorf("insert book: %w", err)
		}
		return replaceTags(ctx, tx, b.ID, b.Tags)
	})
}

// GetBook retrieves a book with its tags.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, bookID)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTags(ctx, []*domain.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook overwrites every mutable column of a book and replaces its tags.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	if b.ReadAt != nil {
		readAt := domain.ReadDate(*b.ReadAt)
		b.ReadAt = &readAt
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE books SET
				title = ?, author = ?, publisher = ?, published_year = ?, pages = ?,
				category = ?, discipline = ?, rating = ?, notes = ?, read_at = ?,
				extraction_status = ?, extraction_error = ?, extracted_at = ?, updated_at = ?
			WHERE id = ?`,
			b.Title,
			b.Author,
			b.Publisher,
			nullIntPtr(b.PublishedYear),
			b.Pages,
			b.Category,
			b.Discipline,
			nullIntPtr(b.Rating),
			b.Notes,
			nullTimeString(b.ReadAt),
			string(b.Extraction.Status),
			b.Extraction.Error,
			nullTimeString(b.Extraction.ExtractedAt),
			formatTime(b.UpdatedAt),
			b.ID,
		)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return store.ErrNotFound.WithMessage("book not found")
		}
		return replaceTags(ctx, tx, b.ID, b.Tags)
	})
}

// DeleteBook removes a book. Tags and concepts cascade.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("book not found")
	}
	return nil
}

// MarkRead sets a book's read date.
func (s *Store) MarkRead(ctx context.Context, bookID string, readAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET read_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(domain.ReadDate(readAt)), formatTime(time.Now().UTC()), bookID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("book not found")
	}
	return nil
}

// SetDiscipline stores the classifier's answer for a book.
func (s *Store) SetDiscipline(ctx context.Context, bookID, discipline string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET discipline = ?, updated_at = ? WHERE id = ?`,
		discipline, formatTime(time.Now().UTC()), bookID)
	if err != nil {
		return fmt.Errorf("set discipline: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("book not found")
	}
	return nil
}

// ListBooks returns books matching the filter: read books newest first, then unread books.
func (s *Store) ListBooks(ctx context.Context, f domain.BookFilter) ([]*domain.Book, error) {
	var (
		where []string
		args  []any
	)

	if f.Year != 0 {
		start, end := yearBounds(f.Year)
		where = append(where, "read_at >= ? AND read_at < ?")
		args = append(args, start, end)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Discipline != "" {
		where = append(where, "discipline = ?")
		args = append(args, f.Discipline)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "(title LIKE ? ESCAPE '\\' OR author LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(q) + "%"
		args = append(args, pattern, pattern)
	}
	switch {
	case f.UnreadOnly:
		where = append(where, "read_at IS NULL")
	case f.ReadOnly:
		where = append(where, "read_at IS NOT NULL")
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY read_at IS NULL, read_at DESC, created_at DESC`

	return s.queryBooks(ctx, query, args...)
}

// ListUnclassifiedBooks returns up to limit books with no discipline, oldest first.
func (s *Store) ListUnclassifiedBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	return s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE discipline = '' ORDER BY created_at ASC LIMIT ?`, limit)
}

// ReadYears returns the distinct UTC years that have at least one read book, newest first.
func (s *Store) ReadYears(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT CAST(substr(read_at, 1, 4) AS INTEGER) AS year
		FROM books WHERE read_at IS NOT NULL ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("query read years: %w", err)
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// CountBooksInCategory returns how many books reference a category name.
func (s *Store) CountBooksInCategory(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books WHERE category = ?`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count books in category: %w", err)
	}
	return n, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadTags(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// loadTags attaches tags to the given books in one query.
func (s *Store) loadTags(ctx context.Context, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Book, len(books))
	args := make([]any, 0, len(books))
	for _, b := range books {
		b.Tags = []string{}
		byID[b.ID] = b
		args = append(args, b.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT book_id, tag FROM book_tags WHERE book_id IN (`+placeholders(len(args))+`) ORDER BY book_id, position`,
		args...)
	if err != nil {
		return fmt.Errorf("query book_tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, tag string
		if err := rows.Scan(&bookID, &tag); err != nil {
			return fmt.Errorf("scan book_tag: %w", err)
		}
		if b := byID[bookID]; b != nil {
			b.Tags = append(b.Tags, tag)
		}
	}
	return rows.Err()
}

// replaceTags replaces all tags for a book inside tx.
func replaceTags(ctx context.Context, tx *sql.Tx, bookID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_tags WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete book_tags: %w", err)
	}
	for i, tag := range domain.NormalizeTags(tags) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_tags (book_id, tag, position) VALUES (?, ?, ?)`, bookID, tag, i); err != nil {
			return fmt.Errorf("insert book_tag: %w", err)
		}
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
