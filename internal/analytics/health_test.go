package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/vocabulary"
)

func TestComputeVocabularyHealth(t *testing.T) {
	vocab := vocabulary.New([]string{"Ethics", "Justice", "Virtue"}, nil)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	books := []HealthBook{
		{ReadYear: 2020, Status: domain.ExtractionCompleted, Concepts: []string{"Ethics"}},
		{ReadYear: 2020, Status: domain.ExtractionCompleted, Concepts: []string{"Justice", "Stoicism"}},
		{ReadYear: 2021, Status: domain.ExtractionCompleted, Concepts: []string{"Virtue"}},
		{ReadYear: 2024, Status: domain.ExtractionCompleted, Concepts: []string{"Stoicism"}},
		{ReadYear: 2025, Status: domain.ExtractionEmpty},
		{ReadYear: 2025, Status: domain.ExtractionFailed, Concepts: []string{"Ethics"}},
		{ReadYear: 2025, Status: domain.ExtractionPending},
	}

	h := ComputeVocabularyHealth(books, vocab, now)
	assert.Equal(t, 3, h.VocabularySize)
	assert.Equal(t, 5, h.TotalProcessed)
	assert.Equal(t, 3, h.TotalMatched)
	assert.Equal(t, 1, h.TotalNoMatch)
	assert.InDelta(t, 0.6, h.MatchRate, 1e-9)
	assert.Equal(t, 2, h.RecentProcessed)
	assert.InDelta(t, 0.0, h.RecentMatchRate, 1e-9)

	assert.Equal(t, []YearlyRate{
		{Year: 2020, Processed: 2, Matched: 2, Rate: 1},
		{Year: 2021, Processed: 1, Matched: 1, Rate: 1},
		{Year: 2024, Processed: 1, Matched: 0, Rate: 0},
		{Year: 2025, Processed: 1, Matched: 0, Rate: 0},
	}, h.YearlyRates)

	assert.Equal(t, []ConceptCount{{Concept: "Stoicism", Count: 2}}, h.OutOfVocabConcepts)
	assert.Equal(t, HealthWarning, h.Level)
	assert.True(t, h.Declining)
	assert.True(t, h.NeedsRefresh)
}

func TestComputeVocabularyHealth_Healthy(t *testing.T) {
	vocab := vocabulary.New([]string{"Ethics"}, nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	books := []HealthBook{
		{ReadYear: 2018, Status: domain.ExtractionCompleted, Concepts: []string{"Ethics"}},
		{ReadYear: 2019, Status: domain.ExtractionCompleted, Concepts: []string{"Ethics", "Other"}},
	}
	h := ComputeVocabularyHealth(books, vocab, now)
	assert.Equal(t, 1.0, h.MatchRate)
	assert.Equal(t, 0, h.RecentProcessed)
	assert.Equal(t, 1.0, h.RecentMatchRate, "no recent books falls back to the overall rate")
	assert.Equal(t, HealthGood, h.Level)
	assert.False(t, h.Declining)
	assert.False(t, h.NeedsRefresh)
}

func TestComputeVocabularyHealth_NothingProcessed(t *testing.T) {
	vocab := vocabulary.New([]string{"Ethics"}, nil)
	h := ComputeVocabularyHealth([]HealthBook{{ReadYear: 2025, Status: domain.ExtractionPending}}, vocab, time.Now())

	assert.Zero(t, h.TotalProcessed)
	assert.Zero(t, h.MatchRate)
	assert.Empty(t, h.YearlyRates)
	assert.Empty(t, h.OutOfVocabConcepts)
	assert.False(t, h.NeedsRefresh)
	assert.False(t, h.Declining)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, HealthGood, Level(0.8))
	assert.Equal(t, HealthWarning, Level(0.79))
	assert.Equal(t, HealthWarning, Level(0.6))
	assert.Equal(t, HealthReview, Level(0.59))
}
