package analytics

import (
	"github.com/readlog/readlog-server/internal/domain"
)

const (
	// MaxEvolutionCategories is how many categories CategoryEvolution keeps before folding the rest.
	MaxEvolutionCategories = 8
	// MaxBumpDisciplines caps the disciplines of the discipline bump chart.
	MaxBumpDisciplines = 12
)

// EvolutionPoint is one year of a stacked series: label to pages.
type EvolutionPoint struct {
	Year  int            `json:"year"`
	Pages map[string]int `json:"pages"`
}

// CategoryEvolution is pages per category per year.
type CategoryEvolution struct {
	Years      []int            `json:"years"`
	Categories []string         `json:"categories"`
	Data       []EvolutionPoint `json:"data"`
}

// DisciplineTotal is the all-time page and book count of a discipline.
type DisciplineTotal struct {
	Discipline string `json:"discipline"`
	Pages      int    `json:"pages"`
	Count      int    `json:"count"`
}

// DisciplineEvolution is pages per discipline per year.
type DisciplineEvolution struct {
	Years       []int             `json:"years"`
	Disciplines []string          `json:"disciplines"`
	Data        []EvolutionPoint  `json:"data"`
	Totals      []DisciplineTotal `json:"totals"`
}

// DisciplineBump ranks disciplines by books read per year.
type DisciplineBump struct {
	Years       []int      `json:"years"`
	Disciplines []string   `json:"disciplines"`
	Data        []RankYear `json:"data"`
}

// ComputeCategoryEvolution sums pages by year and category. The categories with the most pages overall
// are kept; the remainder is folded into the uncategorized label.
func ComputeCategoryEvolution(books []*domain.Book) CategoryEvolution {
	yearly := map[int]map[string]int{}
	totals := map[string]int{}
	for _, b := range books {
		year, ok := b.ReadYear()
		if !ok {
			continue
		}
		label := b.CategoryLabel()
		addCount(yearly, year, label, b.Pages)
		totals[label] += b.Pages
	}

	categories := topNames(totals, MaxEvolutionCategories)
	kept := make(map[string]bool, len(categories))
	for _, c := range categories {
		kept[c] = true
	}
	folded := len(totals) > len(categories)
	if folded && !kept[domain.UncategorizedLabel] {
		categories = append(categories, domain.UncategorizedLabel)
	}

	years := sortedKeys(yearly)
	data := make([]EvolutionPoint, 0, len(years))
	for _, year := range years {
		pages := make(map[string]int, len(categories))
		for _, c := range categories {
			pages[c] = 0
		}
		for label, p := range yearly[year] {
			if kept[label] {
				pages[label] += p
			} else {
				pages[domain.UncategorizedLabel] += p
			}
		}
		data = append(data, EvolutionPoint{Year: year, Pages: pages})
	}

	return CategoryEvolution{Years: years, Categories: categories, Data: data}
}

// ComputeDisciplineEvolution sums pages by year and discipline, with unclassified books in their own bucket.
// Disciplines are ordered by total pages.
func ComputeDisciplineEvolution(books []*domain.Book) DisciplineEvolution {
	yearly := map[int]map[string]int{}
	pages := map[string]int{}
	counts := map[string]int{}
	for _, b := range books {
		year, ok := b.ReadYear()
		if !ok {
			continue
		}
		label := domain.DisciplineLabel(b.Discipline)
		addCount(yearly, year, label, b.Pages)
		pages[label] += b.Pages
		counts[label]++
	}

	ranked := rankByCount(pages)
	disciplines := make([]string, len(ranked))
	totals := make([]DisciplineTotal, len(ranked))
	for i, r := range ranked {
		disciplines[i] = r.name
		totals[i] = DisciplineTotal{Discipline: r.name, Pages: r.count, Count: counts[r.name]}
	}

	years := sortedKeys(yearly)
	data := make([]EvolutionPoint, 0, len(years))
	for _, year := range years {
		row := make(map[string]int, len(disciplines))
		for _, d := range disciplines {
			row[d] = yearly[year][d]
		}
		data = append(data, EvolutionPoint{Year: year, Pages: row})
	}

	return DisciplineEvolution{Years: years, Disciplines: disciplines, Data: data, Totals: totals}
}

// ComputeDisciplineBump ranks the most-read disciplines within each year by number of books.
// Unclassified books are left out.
func ComputeDisciplineBump(books []*domain.Book) DisciplineBump {
	yearly := map[int]map[string]int{}
	totals := map[string]int{}
	for _, b := range books {
		year, ok := b.ReadYear()
		if !ok || b.Discipline == "" {
			continue
		}
		addCount(yearly, year, b.Discipline, 1)
		totals[b.Discipline]++
	}

	disciplines := topNames(totals, MaxBumpDisciplines)
	years, data := rankSeries(yearly, disciplines)
	return DisciplineBump{Years: years, Disciplines: disciplines, Data: data}
}
