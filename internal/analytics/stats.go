package analytics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/readlog/readlog-server/internal/domain"
)

// MaxTagFrequencies caps the tag frequency list of YearStats.
const MaxTagFrequencies = 15

// CategoryTotal is the page and book count of one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Pages    int    `json:"pages"`
	Count    int    `json:"count"`
}

// MonthlyPages is the page total of one month (1-12).
type MonthlyPages struct {
	Month int `json:"month"`
	Pages int `json:"pages"`
}

// MonthlyCategoryPages splits one month's pages by category.
type MonthlyCategoryPages struct {
	Month      int            `json:"month"`
	Categories map[string]int `json:"categories"`
}

// TagFrequency counts how many books carry a tag.
type TagFrequency struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// YearStats summarizes the books read in one calendar year.
type YearStats struct {
	Year              int                    `json:"year"`
	TotalBooks        int                    `json:"total_books"`
	TotalPages        int                    `json:"total_pages"`
	CategoryTotals    []CategoryTotal        `json:"category_totals"`
	MonthlyPages      []MonthlyPages         `json:"monthly_pages"`
	MonthlyByCategory []MonthlyCategoryPages `json:"monthly_by_category"`
	TagFrequencies    []TagFrequency         `json:"tag_frequencies"`
	Goal              *domain.AnnualGoal     `json:"goal"`
}

// AllTimeStats summarizes every read book.
type AllTimeStats struct {
	TotalBooks     int             `json:"total_books"`
	TotalPages     int             `json:"total_pages"`
	CategoryTotals []CategoryTotal `json:"category_totals"`
}

// ComputeYearStats aggregates the books read in year. Unread books and books read in other years are ignored.
func ComputeYearStats(books []*domain.Book, year int, goal *domain.AnnualGoal) YearStats {
	stats := YearStats{
		Year:              year,
		MonthlyPages:      make([]MonthlyPages, 12),
		MonthlyByCategory: make([]MonthlyCategoryPages, 12),
		Goal:              goal,
	}
	for m := range 12 {
		stats.MonthlyPages[m] = MonthlyPages{Month: m + 1}
		stats.MonthlyByCategory[m] = MonthlyCategoryPages{Month: m + 1, Categories: map[string]int{}}
	}

	var inYear []*domain.Book
	tags := map[string]int{}
	for _, b := range books {
		if y, ok := b.ReadYear(); !ok || y != year {
			continue
		}
		inYear = append(inYear, b)

		m := int(b.ReadAt.UTC().Month()) - 1
		stats.MonthlyPages[m].Pages += b.Pages
		stats.MonthlyByCategory[m].Categories[b.CategoryLabel()] += b.Pages
		for _, t := range b.Tags {
			tags[t]++
		}
	}

	stats.TotalBooks, stats.TotalPages, stats.CategoryTotals = categoryTotals(inYear)

	for _, tc := range rankByCount(tags) {
		if len(stats.TagFrequencies) == MaxTagFrequencies {
			break
		}
		stats.TagFrequencies = append(stats.TagFrequencies, TagFrequency{Tag: tc.name, Count: tc.count})
	}
	if stats.TagFrequencies == nil {
		stats.TagFrequencies = []TagFrequency{}
	}
	return stats
}

// ComputeAllTimeStats aggregates every read book.
func ComputeAllTimeStats(books []*domain.Book) AllTimeStats {
	var read []*domain.Book
	for _, b := range books {
		if b.IsRead() {
			read = append(read, b)
		}
	}
	var stats AllTimeStats
	stats.TotalBooks, stats.TotalPages, stats.CategoryTotals = categoryTotals(read)
	return stats
}

// categoryTotals sums books by category label, largest page total first.
func categoryTotals(books []*domain.Book) (totalBooks, totalPages int, totals []CategoryTotal) {
	byCategory := map[string]*CategoryTotal{}
	for _, b := range books {
		totalBooks++
		totalPages += b.Pages

		label := b.CategoryLabel()
		ct, ok := byCategory[label]
		if !ok {
			ct = &CategoryTotal{Category: label}
			byCategory[label] = ct
		}
		ct.Pages += b.Pages
		ct.Count++
	}

	totals = make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		totals = append(totals, *ct)
	}
	slices.SortFunc(totals, func(a, b CategoryTotal) int {
		if c := cmp.Compare(b.Pages, a.Pages); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return totalBooks, totalPages, totals
}

// GoalProgress is progress toward an annual page goal.
type GoalProgress struct {
	Current   int     `json:"current"`
	Goal      int     `json:"goal"`
	Percent   float64 `json:"percent"`
	Remaining int     `json:"remaining"`
	// NeededThisMonth is set only for the current year while pages remain.
	NeededThisMonth *int `json:"needed_this_month,omitempty"`
}

// ComputeGoalProgress reports progress of current pages toward goal for year, as seen at now.
func ComputeGoalProgress(current, goal, year int, now time.Time, pagesThisMonth int) GoalProgress {
	p := GoalProgress{
		Current:   current,
		Goal:      goal,
		Percent:   Percent(current, goal),
		Remaining: max(goal-current, 0),
	}

	if year == now.Year() && p.Remaining > 0 {
		monthsLeft := 12 - int(now.Month()) + 1
		pace := float64(p.Remaining) / float64(monthsLeft)
		needed := max(int(math.Ceil(pace-float64(pagesThisMonth))), 0)
		p.NeededThisMonth = &needed
	}
	return p
}

// Percent returns min(current/goal, 1) * 100, or 0 when goal is not positive.
func Percent(current, goal int) float64 {
	if goal <= 0 || current <= 0 {
		return 0
	}
	return math.Min(float64(current)/float64(goal), 1) * 100
}

// BurndownPoint is one month of the goal burndown chart. Values are cumulative pages.
type BurndownPoint struct {
	Month      int  `json:"month"`
	Target     int  `json:"target"`
	Actual     *int `json:"actual"`
	Projection *int `json:"projection"`
}

// ComputeBurndown builds the cumulative target, actual and projected page curves of a year.
// Past years show actuals for every month; the current year shows actuals up to the current month
// and projects the average monthly pace from there to December; future years show only the target.
func ComputeBurndown(monthly []MonthlyPages, goal, year int, now time.Time) []BurndownPoint {
	if goal <= 0 {
		return nil
	}

	lastActual := 0
	switch {
	case year < now.Year():
		lastActual = 12
	case year == now.Year():
		lastActual = int(now.Month())
	}

	cumulative := make([]int, 13)
	for _, mp := range monthly {
		if mp.Month >= 1 && mp.Month <= 12 {
			cumulative[mp.Month] = mp.Pages
		}
	}
	for m := 1; m <= 12; m++ {
		cumulative[m] += cumulative[m-1]
	}

	points := make([]BurndownPoint, 12)
	for m := 1; m <= 12; m++ {
		pt := BurndownPoint{
			Month:  m,
			Target: int(math.Round(float64(goal) * float64(m) / 12)),
		}
		if m <= lastActual {
			actual := cumulative[m]
			pt.Actual = &actual
		}
		if year == now.Year() && m >= lastActual {
			pace := float64(cumulative[lastActual]) / float64(lastActual)
			projection := int(math.Round(float64(cumulative[lastActual]) + pace*float64(m-lastActual)))
			pt.Projection = &projection
		}
		points[m-1] = pt
	}
	return points
}
