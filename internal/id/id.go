// Package id generates prefixed, URL-safe record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each record kind, so an ID read in a log says what it points at.
const (
	PrefixBook     = "book"
	PrefixCategory = "cat"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "book-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewBookID returns a fresh book identifier.
func NewBookID() (string, error) {
	return Generate(PrefixBook)
}

// NewCategoryID returns a fresh category identifier.
func NewCategoryID() (string, error) {
	return Generate(PrefixCategory)
}
