package domain

import "time"

// AnnualGoal is the page target for one calendar year.
type AnnualGoal struct {
	Year      int       `json:"year"`
	PageGoal  int       `json:"page_goal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
