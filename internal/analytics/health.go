package analytics

import (
	"time"

	"github.com/readlog/readlog-server/internal/domain"
	"github.com/readlog/readlog-server/internal/vocabulary"
)

// HealthLevel grades a match rate.
type HealthLevel string

// Health levels.
const (
	HealthGood    HealthLevel = "good"
	HealthWarning HealthLevel = "warning"
	HealthReview  HealthLevel = "review"
)

const (
	goodRate            = 0.8
	warningRate         = 0.6
	decliningMargin     = 0.08
	refreshOverallRate  = 0.7
	refreshRecentRate   = 0.6
	maxOutOfVocabulary  = 15
	recentWindowInYears = 2
)

// HealthBook is one read book as seen by the vocabulary health scorer.
type HealthBook struct {
	ReadYear int
	Status   domain.ExtractionStatus
	Concepts []string
}

// YearlyRate is the vocabulary match rate of books read in one year.
type YearlyRate struct {
	Year      int     `json:"year"`
	Processed int     `json:"processed"`
	Matched   int     `json:"matched"`
	Rate      float64 `json:"rate"`
}

// ConceptCount is a concept with the number of books it was extracted for.
type ConceptCount struct {
	Concept string `json:"concept"`
	Count   int    `json:"count"`
}

// VocabularyHealth reports how well the controlled vocabulary fits the books read so far.
type VocabularyHealth struct {
	VocabularySize     int            `json:"vocabulary_size"`
	TotalProcessed     int            `json:"total_processed"`
	TotalMatched       int            `json:"total_matched"`
	TotalNoMatch       int            `json:"total_no_match"`
	MatchRate          float64        `json:"match_rate"`
	RecentProcessed    int            `json:"recent_processed"`
	RecentMatchRate    float64        `json:"recent_match_rate"`
	YearlyRates        []YearlyRate   `json:"yearly_rates"`
	OutOfVocabConcepts []ConceptCount `json:"out_of_vocab_concepts"`
	Level              HealthLevel    `json:"level"`
	Declining          bool           `json:"declining"`
	NeedsRefresh       bool           `json:"needs_refresh"`
}

// ComputeVocabularyHealth scores extracted concepts against vocab.
// Only settled books count as processed. A book matches when at least one of its concepts is in the
// vocabulary; books whose extraction came back empty are processed but unmatched.
// The recent window is the current and previous calendar year; when it holds no processed books
// the recent rate equals the overall rate.
func ComputeVocabularyHealth(books []HealthBook, vocab *vocabulary.Vocabulary, now time.Time) VocabularyHealth {
	h := VocabularyHealth{VocabularySize: vocab.Size()}

	type tally struct{ processed, matched int }
	yearly := map[int]*tally{}
	var recent tally
	outOfVocab := map[string]int{}
	recentFrom := now.Year() - recentWindowInYears + 1

	for _, b := range books {
		if !b.Status.Settled() {
			continue
		}

		matched := false
		for _, c := range b.Concepts {
			if vocab.Contains(c) {
				matched = true
			} else {
				outOfVocab[c]++
			}
		}

		h.TotalProcessed++
		if b.Status == domain.ExtractionEmpty {
			h.TotalNoMatch++
		}

		y, ok := yearly[b.ReadYear]
		if !ok {
			y = &tally{}
			yearly[b.ReadYear] = y
		}
		y.processed++
		if b.ReadYear >= recentFrom {
			recent.processed++
		}
		if matched {
			h.TotalMatched++
			y.matched++
			if b.ReadYear >= recentFrom {
				recent.matched++
			}
		}
	}

	h.MatchRate = rate(h.TotalMatched, h.TotalProcessed)
	h.RecentProcessed = recent.processed
	h.RecentMatchRate = h.MatchRate
	if recent.processed > 0 {
		h.RecentMatchRate = rate(recent.matched, recent.processed)
	}

	h.YearlyRates = make([]YearlyRate, 0, len(yearly))
	for _, year := range sortedKeys(yearly) {
		t := yearly[year]
		h.YearlyRates = append(h.YearlyRates, YearlyRate{
			Year:      year,
			Processed: t.processed,
			Matched:   t.matched,
			Rate:      rate(t.matched, t.processed),
		})
	}

	h.OutOfVocabConcepts = make([]ConceptCount, 0, maxOutOfVocabulary)
	for _, c := range rankByCount(outOfVocab) {
		if len(h.OutOfVocabConcepts) == maxOutOfVocabulary {
			break
		}
		h.OutOfVocabConcepts = append(h.OutOfVocabConcepts, ConceptCount{Concept: c.name, Count: c.count})
	}

	h.Level = Level(h.MatchRate)
	if h.TotalProcessed > 0 {
		h.Declining = h.RecentMatchRate < h.MatchRate-decliningMargin
		h.NeedsRefresh = h.MatchRate < refreshOverallRate || h.RecentMatchRate < refreshRecentRate
	}
	return h
}

// Level grades a match rate.
func Level(rate float64) HealthLevel {
	switch {
	case rate >= goodRate:
		return HealthGood
	case rate >= warningRate:
		return HealthWarning
	default:
		return HealthReview
	}
}

func rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
