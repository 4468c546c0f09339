package ranking

import (
	"math"
	"sort"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

// Method selects how a faculty's score is derived from its aggregates
type Method string

const (
	// MethodWeighted blends the faculty's average with the dataset mean
	// so a single 5-star vote cannot outrank a well-sampled 4.5.
	MethodWeighted Method = "weighted"
	// MethodSimple ranks by the raw category average
	MethodSimple Method = "simple"
)

// priorWeight is the number of phantom votes at the dataset mean that
// the weighted method adds to every faculty.
const priorWeight = 10.0

// fallbackMean anchors the prior when the dataset has no ratings at all
const fallbackMean = 3.0

// Entry is one ranked faculty. The profile is embedded so the ranking
// payload carries the full faculty fields alongside score and rank.
type Entry struct {
	database.Faculty
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Rank scores every faculty on the given category and returns them in
// descending score order with 1-based ranks. The dataset mean used by
// the weighted method is computed over the supplied list, so a
// department-filtered list gets a department-local prior. Scores are
// rounded to two decimals before sorting; ties keep input order.
func Rank(faculty []database.Faculty, category string, method Method) []Entry {
	mean := datasetMean(faculty, category)

	entries := make([]Entry, 0, len(faculty))
	for _, fac := range faculty {
		avg := fac.AvgRatings[category]
		count := fac.RatingCounts[category]

		var score float64
		if method == MethodWeighted {
			// An unrated faculty must not inherit the prior and float
			// mid-table; it stays at zero until someone votes.
			if count > 0 {
				score = (avg*float64(count) + priorWeight*mean) / (float64(count) + priorWeight)
			}
		} else {
			score = avg
		}

		entries = append(entries, Entry{
			Faculty: fac,
			Score:   round2(score),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// datasetMean is the rating-weighted mean of the category across the
// whole list, or a neutral midpoint when nobody has rated anything.
func datasetMean(faculty []database.Faculty, category string) float64 {
	var total float64
	var count int
	for _, fac := range faculty {
		total += fac.AvgRatings[category] * float64(fac.RatingCounts[category])
		count += fac.RatingCounts[category]
	}
	if count == 0 {
		return fallbackMean
	}
	return total / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
