// Package domain contains the core entities of the reading log: books, categories, goals and extracted concepts.
package domain

import (
	"strings"
	"time"
)

// UncategorizedLabel is the bucket used in aggregates for books without a category.
const UncategorizedLabel = "Other"

// Book is a single entry in the reading log.
// A nil ReadAt means the book is on the to-read list and is excluded from every time-bucketed aggregate.
type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedYear *int       `json:"published_year,omitempty"`
	Pages         int        `json:"pages"`
	Category      string     `json:"category,omitempty"`
	Discipline    string     `json:"discipline,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Rating        *int       `json:"rating,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	Extraction    Extraction `json:"extraction"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsRead reports whether the book has a read date.
func (b *Book) IsRead() bool {
	return b.ReadAt != nil
}

// ReadYear returns the UTC calendar year the book was read in.
func (b *Book) ReadYear() (int, bool) {
	if b.ReadAt == nil {
		return 0, false
	}
	return b.ReadAt.UTC().Year(), true
}

// CategoryLabel returns the category used for grouping, falling back to UncategorizedLabel.
func (b *Book) CategoryLabel() string {
	if c := strings.TrimSpace(b.Category); c != "" {
		return c
	}
	return UncategorizedLabel
}

// ReadDate normalizes a read timestamp to midnight UTC of its calendar date.
// Read dates are day-granular; keeping them at midnight makes stored values sort correctly.
func ReadDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InitTimestamps sets CreatedAt and UpdatedAt to now.
func (b *Book) InitTimestamps() {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// NormalizeTags trims, drops empties and de-duplicates tags while keeping their order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// BookFilter narrows a book listing. Zero values mean "no constraint".
type BookFilter struct {
	Year       int
	Category   string
	Discipline string
	Query      string
	ReadOnly   bool
	UnreadOnly bool
}
