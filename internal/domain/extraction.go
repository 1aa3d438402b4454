package domain

import "time"

// ExtractionStatus records where a book stands in concept extraction.
type ExtractionStatus string

// Extraction states. Pending and failed books are picked up by the next batch;
// empty and completed books are settled.
const (
	ExtractionPending   ExtractionStatus = "pending"
	ExtractionFailed    ExtractionStatus = "failed"
	ExtractionEmpty     ExtractionStatus = "empty"
	ExtractionCompleted ExtractionStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ExtractionStatus) Valid() bool {
	switch s {
	case ExtractionPending, ExtractionFailed, ExtractionEmpty, ExtractionCompleted:
		return true
	}
	return false
}

// Settled reports whether extraction produced a final answer for the book.
func (s ExtractionStatus) Settled() bool {
	return s == ExtractionEmpty || s == ExtractionCompleted
}

// Extraction is the per-book extraction state.
type Extraction struct {
	Status      ExtractionStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
	ExtractedAt *time.Time       `json:"extracted_at,omitempty"`
}

// ResetScope selects which books a vocabulary reset returns to pending.
type ResetScope string

// Reset scopes.
const (
	ResetEmpty ResetScope = "empty"
	ResetAll   ResetScope = "all"
)

// BookConcept states that a book exhibits a concept.
type BookConcept struct {
	BookID  string `json:"book_id"`
	Concept string `json:"concept"`
	Weight  int    `json:"weight"`
}

// ConceptOccurrence is a concept row joined with its book's read date, the input to concept analytics.
type ConceptOccurrence struct {
	BookID  string
	Concept string
	Weight  int
	ReadAt  time.Time
}
