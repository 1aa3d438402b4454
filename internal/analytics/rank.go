// Package analytics computes reading statistics and the concept knowledge map.
// Every function is pure: it takes rows already loaded from the store and returns plain values.
package analytics

import (
	"cmp"
	"slices"
)

// namedCount is an item with its accumulated count.
type namedCount struct {
	name  string
	count int
}

// rankByCount orders totals by count descending, then name ascending.
func rankByCount(totals map[string]int) []namedCount {
	out := make([]namedCount, 0, len(totals))
	for name, count := range totals {
		out = append(out, namedCount{name: name, count: count})
	}
	slices.SortFunc(out, func(a, b namedCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return out
}

// topNames returns the names of the first k entries of rankByCount(totals).
func topNames(totals map[string]int, k int) []string {
	ranked := rankByCount(totals)
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.name
	}
	return names
}

// RankYear is one year of a bump chart: item to 1-based rank.
// Items that do not occur in the year are absent rather than given a fallback rank.
type RankYear struct {
	Year  int            `json:"year"`
	Ranks map[string]int `json:"ranks"`
}

// rankSeries ranks items within each year by that year's count. Items with a zero count are unranked;
// equal counts keep the order of items, which callers pass in overall rank order.
func rankSeries(yearCounts map[int]map[string]int, items []string) ([]int, []RankYear) {
	years := sortedKeys(yearCounts)
	data := make([]RankYear, 0, len(years))
	for _, year := range years {
		counts := yearCounts[year]
		present := make([]string, 0, len(items))
		for _, item := range items {
			if counts[item] > 0 {
				present = append(present, item)
			}
		}
		slices.SortStableFunc(present, func(a, b string) int {
			return cmp.Compare(counts[b], counts[a])
		})

		ranks := make(map[string]int, len(present))
		for i, item := range present {
			ranks[item] = i + 1
		}
		data = append(data, RankYear{Year: year, Ranks: ranks})
	}
	return years, data
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func addCount[K comparable](m map[K]map[string]int, key K, name string, n int) {
	inner, ok := m[key]
	if !ok {
		inner = make(map[string]int)
		m[key] = inner
	}
	inner[name] += n
}
