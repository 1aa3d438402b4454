package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readlog/readlog-server/internal/domain"
)

// occ builds one concept row per book id.
func occ(concept string, year int, bookIDs ...string) []domain.ConceptOccurrence {
	rows := make([]domain.ConceptOccurrence, 0, len(bookIDs))
	for _, id := range bookIDs {
		rows = append(rows, domain.ConceptOccurrence{BookID: id, Concept: concept, Weight: 1, ReadAt: *readAt(year, 4, 1)})
	}
	return rows
}

func concat(parts ...[]domain.ConceptOccurrence) []domain.ConceptOccurrence {
	var out []domain.ConceptOccurrence
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestComputeConceptBump_Example(t *testing.T) {
	rows := concat(
		occ("X", 2022, "b1", "b2", "b3"),
		occ("X", 2023, "b4"),
		occ("Y", 2022, "b1"),
		occ("Y", 2023, "b4", "b5", "b6", "b7", "b8"),
	)

	bump := ComputeConceptBump(rows)
	assert.Equal(t, []int{2022, 2023}, bump.Years)
	assert.Equal(t, []string{"Y", "X"}, bump.Concepts)
	require.Len(t, bump.Data, 2)
	assert.Equal(t, map[string]int{"X": 1, "Y": 2}, bump.Data[0].Ranks)
	assert.Equal(t, map[string]int{"Y": 1, "X": 2}, bump.Data[1].Ranks)

	graph := ComputeConceptGraph(rows)
	nodes := map[string]ConceptNode{}
	for _, n := range graph.Nodes {
		nodes[n.Concept] = n
	}
	assert.Equal(t, 2022, nodes["X"].PeakYear)
	assert.Equal(t, 4, nodes["X"].TotalCount)
	assert.Equal(t, 2023, nodes["Y"].PeakYear)
}

func TestComputeConceptBump_SparseRanks(t *testing.T) {
	rows := concat(occ("A", 2022, "b1"), occ("B", 2023, "b2"))
	bump := ComputeConceptBump(rows)

	assert.Equal(t, map[string]int{"A": 1}, bump.Data[0].Ranks)
	assert.Equal(t, map[string]int{"B": 1}, bump.Data[1].Ranks)
}

func TestComputeConceptBump_TiesFollowOverallRank(t *testing.T) {
	rows := concat(
		occ("A", 2022, "b1", "b2"),
		occ("B", 2022, "b3"),
		occ("A", 2023, "b4"),
		occ("B", 2023, "b5"),
	)
	bump := ComputeConceptBump(rows)
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, bump.Data[1].Ranks)
}

func TestComputeConceptGraph_WeakEdgeExcluded(t *testing.T) {
	rows := concat(
		occ("A", 2023, "b1", "b2", "b3"),
		occ("B", 2023, "b1", "b2"),
	)
	// Only b1 and b2 share A and B: strength 2 passes.
	graph := ComputeConceptGraph(rows)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, ConceptEdge{Source: "A", Target: "B", Strength: 2}, graph.Edges[0])

	rows = concat(
		occ("A", 2023, "b1", "b2", "b3"),
		occ("B", 2023, "b1"),
	)
	graph = ComputeConceptGraph(rows)
	assert.Empty(t, graph.Edges, "strength 1 is below the co-occurrence threshold")
}

func TestComputeConceptGraph_PeakYearTieIsEarliest(t *testing.T) {
	rows := concat(occ("A", 2024, "b1"), occ("A", 2021, "b2"), occ("A", 2022, "b3"))
	graph := ComputeConceptGraph(rows)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, 2021, graph.Nodes[0].PeakYear)
	assert.Equal(t, 2021, graph.MinYear)
	assert.Equal(t, 2024, graph.MaxYear)
}

func TestComputeConceptGraph_Caps(t *testing.T) {
	var rows []domain.ConceptOccurrence
	// 40 concepts on the same three books: every pair co-occurs three times.
	for i := range 40 {
		rows = append(rows, occ(fmt.Sprintf("c%02d", i), 2023, "b1", "b2", "b3")...)
	}
	// c00 gets one extra book so it ranks first.
	rows = append(rows, occ("c00", 2023, "b4")...)

	graph := ComputeConceptGraph(rows)
	require.Len(t, graph.Nodes, TopConcepts)
	assert.Equal(t, "c00", graph.Nodes[0].Concept)
	assert.Equal(t, "c01", graph.Nodes[1].Concept)
	assert.Equal(t, "c29", graph.Nodes[TopConcepts-1].Concept)

	require.Len(t, graph.Edges, MaxEdges)
	assert.Equal(t, ConceptEdge{Source: "c00", Target: "c01", Strength: 3}, graph.Edges[0])
	for _, e := range graph.Edges {
		assert.Less(t, e.Source, e.Target)
	}
}

func TestComputeConceptGraph_Empty(t *testing.T) {
	graph := ComputeConceptGraph(nil)
	assert.Empty(t, graph.Nodes)
	assert.NotNil(t, graph.Edges)
	assert.Zero(t, graph.MinYear)
	assert.Zero(t, graph.MaxYear)
}

func TestComputeKeywordHeatmap(t *testing.T) {
	rows := concat(
		occ("A", 2022, "b1", "b2"),
		occ("A", 2024, "b3"),
		occ("B", 2023, "b4"),
	)
	hm := ComputeKeywordHeatmap(rows, true)

	assert.Equal(t, []int{2022, 2023, 2024}, hm.Years)
	assert.Equal(t, []string{"A", "B"}, hm.Concepts)
	assert.Equal(t, []HeatmapRow{
		{Concept: "A", Counts: []int{2, 0, 1}},
		{Concept: "B", Counts: []int{0, 1, 0}},
	}, hm.Rows)
	assert.True(t, hm.HasExtractionErrors)
}

func TestComputeKeywordHeatmap_Cap(t *testing.T) {
	var rows []domain.ConceptOccurrence
	for i := range 25 {
		rows = append(rows, occ(fmt.Sprintf("c%02d", i), 2023, "b1")...)
	}
	hm := ComputeKeywordHeatmap(rows, false)
	assert.Len(t, hm.Concepts, TopHeatmapConcepts)
	assert.False(t, hm.HasExtractionErrors)
}
