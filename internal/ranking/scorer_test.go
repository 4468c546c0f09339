package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

func makeFaculty(id string, avg float64, count int) database.Faculty {
	fac := database.NewFaculty("Faculty "+id, "SCOPE", "Professor")
	fac.FacultyID = id
	fac.AvgRatings["overall"] = avg
	fac.RatingCounts["overall"] = count
	return *fac
}

func TestRankWeighted(t *testing.T) {
	// One vote of 5.0 against fifty votes of 4.5: the prior pulls the
	// single-vote faculty well below the well-sampled one.
	faculty := []database.Faculty{
		makeFaculty("fac_one_vote", 5.0, 1),
		makeFaculty("fac_many_votes", 4.5, 50),
	}

	entries := Rank(faculty, "overall", MethodWeighted)
	require.Len(t, entries, 2)

	assert.Equal(t, "fac_many_votes", entries[0].FacultyID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "fac_one_vote", entries[1].FacultyID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Greater(t, entries[0].Score, entries[1].Score)
}

func TestRankWeightedUnratedScoresZero(t *testing.T) {
	faculty := []database.Faculty{
		makeFaculty("fac_rated", 4.0, 10),
		makeFaculty("fac_unrated", 0, 0),
	}

	entries := Rank(faculty, "overall", MethodWeighted)
	require.Len(t, entries, 2)

	assert.Equal(t, "fac_unrated", entries[1].FacultyID)
	assert.Equal(t, 0.0, entries[1].Score)
}

func TestRankSimple(t *testing.T) {
	faculty := []database.Faculty{
		makeFaculty("fac_a", 3.0, 100),
		makeFaculty("fac_b", 5.0, 1),
	}

	entries := Rank(faculty, "overall", MethodSimple)
	require.Len(t, entries, 2)

	// Simple ranking ignores sample size entirely.
	assert.Equal(t, "fac_b", entries[0].FacultyID)
	assert.Equal(t, 5.0, entries[0].Score)
	assert.Equal(t, "fac_a", entries[1].FacultyID)
	assert.Equal(t, 3.0, entries[1].Score)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	faculty := []database.Faculty{
		makeFaculty("fac_first", 4.0, 5),
		makeFaculty("fac_second", 4.0, 5),
	}

	entries := Rank(faculty, "overall", MethodWeighted)
	require.Len(t, entries, 2)

	assert.Equal(t, "fac_first", entries[0].FacultyID)
	assert.Equal(t, "fac_second", entries[1].FacultyID)
}

func TestRankEmptyDataset(t *testing.T) {
	entries := Rank(nil, "overall", MethodWeighted)
	assert.Empty(t, entries)
}

func TestRankScoresRoundedToTwoDecimals(t *testing.T) {
	faculty := []database.Faculty{
		makeFaculty("fac_a", 4.0, 3),
		makeFaculty("fac_b", 2.0, 3),
	}

	entries := Rank(faculty, "overall", MethodWeighted)
	for _, entry := range entries {
		rounded := float64(int(entry.Score*100+0.5)) / 100
		assert.InDelta(t, rounded, entry.Score, 1e-9)
	}
}
