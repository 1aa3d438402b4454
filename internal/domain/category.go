package domain

import "time"

// Category is a user-defined shelf. Books reference categories by name.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BookCount int       `json:"book_count"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultCategories seeds a fresh reading log.
var DefaultCategories = []string{
	"Philosophy",
	"Literature",
	"History",
	"Society",
	"Science",
	"Technology",
	"Business",
	"Art",
	UncategorizedLabel,
}
