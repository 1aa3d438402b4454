package analytics

import (
	"cmp"
	"slices"

	"github.com/readlog/readlog-server/internal/domain"
)

const (
	// TopConcepts is how many concepts the graph and bump chart consider.
	TopConcepts = 30
	// MinCooccurrence is the smallest number of shared books that makes an edge.
	MinCooccurrence = 2
	// MaxEdges caps the graph's edge list.
	MaxEdges = 60
	// TopHeatmapConcepts is how many concepts the heatmap shows.
	TopHeatmapConcepts = 20
)

// ConceptNode is a concept in the knowledge graph.
type ConceptNode struct {
	Concept    string `json:"concept"`
	TotalCount int    `json:"total_count"`
	PeakYear   int    `json:"peak_year"`
}

// ConceptEdge links two concepts that appear together on Strength books. Source sorts before Target.
type ConceptEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Strength int    `json:"strength"`
}

// ConceptGraph is the concept co-occurrence graph.
type ConceptGraph struct {
	Nodes   []ConceptNode `json:"nodes"`
	Edges   []ConceptEdge `json:"edges"`
	MinYear int           `json:"min_year"`
	MaxYear int           `json:"max_year"`
}

// ConceptBump ranks the top concepts within each year.
type ConceptBump struct {
	Years    []int      `json:"years"`
	Concepts []string   `json:"concepts"`
	Data     []RankYear `json:"data"`
}

// HeatmapRow holds one concept's count per year, aligned with KeywordHeatmap.Years.
type HeatmapRow struct {
	Concept string `json:"concept"`
	Counts  []int  `json:"counts"`
}

// KeywordHeatmap is a concept by year count matrix.
type KeywordHeatmap struct {
	Years               []int        `json:"years"`
	Concepts            []string     `json:"concepts"`
	Rows                []HeatmapRow `json:"rows"`
	HasExtractionErrors bool         `json:"has_extraction_errors"`
}

// conceptCounts accumulates weights per concept overall and per year.
type conceptCounts struct {
	totals map[string]int
	yearly map[string]map[int]int
	byYear map[int]map[string]int
	minYr  int
	maxYr  int
}

func countConcepts(rows []domain.ConceptOccurrence) conceptCounts {
	cc := conceptCounts{
		totals: map[string]int{},
		yearly: map[string]map[int]int{},
		byYear: map[int]map[string]int{},
	}
	for i, r := range rows {
		year := r.ReadAt.UTC().Year()
		cc.totals[r.Concept] += r.Weight
		addCount(cc.byYear, year, r.Concept, r.Weight)

		perYear, ok := cc.yearly[r.Concept]
		if !ok {
			perYear = map[int]int{}
			cc.yearly[r.Concept] = perYear
		}
		perYear[year] += r.Weight

		if i == 0 || year < cc.minYr {
			cc.minYr = year
		}
		if i == 0 || year > cc.maxYr {
			cc.maxYr = year
		}
	}
	return cc
}

// peakYear returns the year with the largest weight, the earliest such year on ties.
func peakYear(perYear map[int]int) int {
	peak, best := 0, -1
	for _, year := range sortedKeys(perYear) {
		if perYear[year] > best {
			peak, best = year, perYear[year]
		}
	}
	return peak
}

// ComputeConceptGraph builds the top-concept graph. Rows must come from completed, read books only.
func ComputeConceptGraph(rows []domain.ConceptOccurrence) ConceptGraph {
	cc := countConcepts(rows)
	top := topNames(cc.totals, TopConcepts)

	graph := ConceptGraph{
		Nodes:   make([]ConceptNode, 0, len(top)),
		Edges:   []ConceptEdge{},
		MinYear: cc.minYr,
		MaxYear: cc.maxYr,
	}
	inTop := make(map[string]bool, len(top))
	for _, c := range top {
		inTop[c] = true
		graph.Nodes = append(graph.Nodes, ConceptNode{
			Concept:    c,
			TotalCount: cc.totals[c],
			PeakYear:   peakYear(cc.yearly[c]),
		})
	}

	perBook := map[string][]string{}
	for _, r := range rows {
		if inTop[r.Concept] {
			perBook[r.BookID] = append(perBook[r.BookID], r.Concept)
		}
	}

	pairs := map[[2]string]int{}
	for _, concepts := range perBook {
		slices.Sort(concepts)
		concepts = slices.Compact(concepts)
		for i := range concepts {
			for j := i + 1; j < len(concepts); j++ {
				pairs[[2]string{concepts[i], concepts[j]}]++
			}
		}
	}

	for pair, strength := range pairs {
		if strength >= MinCooccurrence {
			graph.Edges = append(graph.Edges, ConceptEdge{Source: pair[0], Target: pair[1], Strength: strength})
		}
	}
	slices.SortFunc(graph.Edges, func(a, b ConceptEdge) int {
		if c := cmp.Compare(b.Strength, a.Strength); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})
	if len(graph.Edges) > MaxEdges {
		graph.Edges = graph.Edges[:MaxEdges]
	}
	return graph
}

// ComputeConceptBump ranks the top concepts within every year that has concept rows.
func ComputeConceptBump(rows []domain.ConceptOccurrence) ConceptBump {
	cc := countConcepts(rows)
	top := topNames(cc.totals, TopConcepts)
	years, data := rankSeries(cc.byYear, top)
	return ConceptBump{Years: years, Concepts: top, Data: data}
}

// ComputeKeywordHeatmap builds a zero-filled matrix of the most frequent concepts by year.
// hasErrors is passed through so the client can show that some books are still awaiting a retry.
func ComputeKeywordHeatmap(rows []domain.ConceptOccurrence, hasErrors bool) KeywordHeatmap {
	cc := countConcepts(rows)
	top := topNames(cc.totals, TopHeatmapConcepts)
	years := sortedKeys(cc.byYear)

	heatmap := KeywordHeatmap{
		Years:               years,
		Concepts:            top,
		Rows:                make([]HeatmapRow, 0, len(top)),
		HasExtractionErrors: hasErrors,
	}
	for _, c := range top {
		counts := make([]int, len(years))
		for i, y := range years {
			counts[i] = cc.yearly[c][y]
		}
		heatmap.Rows = append(heatmap.Rows, HeatmapRow{Concept: c, Counts: counts})
	}
	return heatmap
}
