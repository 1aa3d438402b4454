package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readlog/readlog-server/internal/domain"
)

func readAt(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func book(category string, pages int, read *time.Time, tags ...string) *domain.Book {
	return &domain.Book{Category: category, Pages: pages, ReadAt: read, Tags: tags}
}

func TestComputeYearStats_Example(t *testing.T) {
	books := []*domain.Book{
		book("History", 300, readAt(2023, 2, 10)),
		book("History", 200, readAt(2023, 7, 1)),
		book("Science", 100, readAt(2024, 1, 5)),
		book("History", 999, nil),
	}

	s2023 := ComputeYearStats(books, 2023, nil)
	assert.Equal(t, 2, s2023.TotalBooks)
	assert.Equal(t, 500, s2023.TotalPages)
	assert.Equal(t, []CategoryTotal{{Category: "History", Pages: 500, Count: 2}}, s2023.CategoryTotals)

	s2024 := ComputeYearStats(books, 2024, nil)
	assert.Equal(t, 1, s2024.TotalBooks)
	assert.Equal(t, 100, s2024.TotalPages)
}

func TestComputeYearStats_Monthly(t *testing.T) {
	books := []*domain.Book{
		book("History", 300, readAt(2023, 2, 10), "war", "europe"),
		book("", 50, readAt(2023, 2, 20), "war"),
		book("Science", 120, readAt(2023, 12, 31)),
	}

	s := ComputeYearStats(books, 2023, &domain.AnnualGoal{Year: 2023, PageGoal: 5000})
	require.Len(t, s.MonthlyPages, 12)
	require.Len(t, s.MonthlyByCategory, 12)

	assert.Equal(t, MonthlyPages{Month: 1, Pages: 0}, s.MonthlyPages[0])
	assert.Equal(t, MonthlyPages{Month: 2, Pages: 350}, s.MonthlyPages[1])
	assert.Equal(t, MonthlyPages{Month: 12, Pages: 120}, s.MonthlyPages[11])

	assert.Equal(t, map[string]int{"History": 300, domain.UncategorizedLabel: 50}, s.MonthlyByCategory[1].Categories)
	assert.Empty(t, s.MonthlyByCategory[0].Categories)

	assert.Equal(t, []TagFrequency{{Tag: "war", Count: 2}, {Tag: "europe", Count: 1}}, s.TagFrequencies)
	require.NotNil(t, s.Goal)
	assert.Equal(t, 5000, s.Goal.PageGoal)

	assert.Equal(t, []CategoryTotal{
		{Category: "History", Pages: 300, Count: 1},
		{Category: "Science", Pages: 120, Count: 1},
		{Category: domain.UncategorizedLabel, Pages: 50, Count: 1},
	}, s.CategoryTotals)
}

func TestComputeYearStats_TagCap(t *testing.T) {
	var books []*domain.Book
	for i := range 20 {
		books = append(books, book("x", 1, readAt(2023, 1, 1), string(rune('a'+i))))
	}
	s := ComputeYearStats(books, 2023, nil)
	assert.Len(t, s.TagFrequencies, MaxTagFrequencies)
	assert.Equal(t, "a", s.TagFrequencies[0].Tag)
}

func TestComputeAllTimeStats_ExcludesUnread(t *testing.T) {
	books := []*domain.Book{
		book("History", 300, readAt(2023, 2, 10)),
		book("Science", 100, readAt(2024, 1, 5)),
		book("Science", 400, nil),
	}
	s := ComputeAllTimeStats(books)
	assert.Equal(t, 2, s.TotalBooks)
	assert.Equal(t, 400, s.TotalPages)
	assert.Len(t, s.CategoryTotals, 2)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 50.0, Percent(500, 1000))
	assert.Equal(t, 100.0, Percent(1500, 1000))
	assert.Equal(t, 0.0, Percent(500, 0))
	assert.Equal(t, 0.0, Percent(-5, 100))
}

func TestComputeGoalProgress(t *testing.T) {
	now := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)

	p := ComputeGoalProgress(7000, 10000, 2024, now, 200)
	assert.Equal(t, 70.0, p.Percent)
	assert.Equal(t, 3000, p.Remaining)
	require.NotNil(t, p.NeededThisMonth)
	// 3000 pages over Oct, Nov, Dec is 1000 a month; 200 already read this month.
	assert.Equal(t, 800, *p.NeededThisMonth)

	past := ComputeGoalProgress(7000, 10000, 2023, now, 0)
	assert.Nil(t, past.NeededThisMonth)

	done := ComputeGoalProgress(12000, 10000, 2024, now, 0)
	assert.Equal(t, 100.0, done.Percent)
	assert.Equal(t, 0, done.Remaining)
	assert.Nil(t, done.NeededThisMonth)

	ahead := ComputeGoalProgress(9000, 10000, 2024, now, 900)
	require.NotNil(t, ahead.NeededThisMonth)
	assert.Equal(t, 0, *ahead.NeededThisMonth)
}

func monthly(pages ...int) []MonthlyPages {
	out := make([]MonthlyPages, 12)
	for i := range out {
		out[i].Month = i + 1
		if i < len(pages) {
			out[i].Pages = pages[i]
		}
	}
	return out
}

func TestComputeBurndown_CurrentYear(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	points := ComputeBurndown(monthly(100, 200, 300), 1200, 2024, now)
	require.Len(t, points, 12)

	assert.Equal(t, 100, points[0].Target)
	assert.Equal(t, 1200, points[11].Target)

	require.NotNil(t, points[2].Actual)
	assert.Equal(t, 600, *points[2].Actual)
	assert.Nil(t, points[3].Actual)

	assert.Nil(t, points[1].Projection)
	require.NotNil(t, points[2].Projection)
	assert.Equal(t, 600, *points[2].Projection)
	require.NotNil(t, points[11].Projection)
	// Average pace is 200 pages a month; nine more months to December.
	assert.Equal(t, 2400, *points[11].Projection)
}

func TestComputeBurndown_PastAndFuture(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	past := ComputeBurndown(monthly(100), 1200, 2023, now)
	require.NotNil(t, past[11].Actual)
	assert.Equal(t, 100, *past[11].Actual)
	assert.Nil(t, past[11].Projection)

	future := ComputeBurndown(monthly(), 1200, 2025, now)
	assert.Nil(t, future[0].Actual)
	assert.Nil(t, future[0].Projection)

	assert.Nil(t, ComputeBurndown(monthly(), 0, 2024, now))
}
