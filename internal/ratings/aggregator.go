// Package ratings maintains per-category rating aggregates for faculty.
//
// Each faculty carries a running (average, count) pair per category.
// Aggregates move incrementally on every submission instead of being
// recomputed from the rating rows, so a submission touches exactly the
// categories it provides values for.
package ratings

// Category is one of the rated dimensions of a faculty.
type Category string

const (
	CategoryTeaching     Category = "teaching"
	CategoryAttendance   Category = "attendance"
	CategoryDoubtClarify Category = "doubt_clarification"
	CategoryOverall      Category = "overall"
)

// Categories lists every rated dimension in storage order.
var Categories = []Category{
	CategoryTeaching,
	CategoryAttendance,
	CategoryDoubtClarify,
	CategoryOverall,
}

// CategoryStats is the running aggregate for one category of one faculty.
type CategoryStats struct {
	Average float64
	Count   int
}

// Apply folds a submitted value into the aggregate. A nil oldValue means
// the user has not rated this category before, so the count grows by one.
// A non-nil oldValue is a revision: the user's previous contribution is
// swapped for the new one and the count stays put. A revision against an
// empty aggregate cannot subtract anything meaningful, so the average
// resets to the new value.
func Apply(stats CategoryStats, newValue int, oldValue *int) CategoryStats {
	if oldValue == nil {
		total := stats.Average*float64(stats.Count) + float64(newValue)
		return CategoryStats{
			Average: total / float64(stats.Count+1),
			Count:   stats.Count + 1,
		}
	}

	if stats.Count == 0 {
		return CategoryStats{Average: float64(newValue), Count: 0}
	}

	total := stats.Average*float64(stats.Count) - float64(*oldValue) + float64(newValue)
	return CategoryStats{
		Average: total / float64(stats.Count),
		Count:   stats.Count,
	}
}

// ValidValue reports whether v is on the 1-5 rating scale.
func ValidValue(v int) bool {
	return v >= 1 && v <= 5
}
