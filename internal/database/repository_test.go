package database

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db)
}

func seedTestFaculty(t *testing.T, repo *Repository, facultyID string) {
	t.Helper()

	fac := NewFaculty("Dr. Ada Lovelace", "SCOPE", "Professor")
	fac.FacultyID = facultyID
	require.NoError(t, repo.CreateFaculty(fac))
}

func firstSubmission(value int) CategoryApplication {
	return CategoryApplication{
		Category: "overall",
		Apply: func(avg float64, count int) (float64, int) {
			total := avg*float64(count) + float64(value)
			return total / float64(count+1), count + 1
		},
	}
}

func TestSaveRatingConcurrentSubmissions(t *testing.T) {
	repo := newTestRepository(t)
	seedTestFaculty(t, repo, "fac_1")

	const submitters = 100

	var wg sync.WaitGroup
	errs := make(chan error, submitters)

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			overall := 4
			now := time.Now().UTC()
			rating := &Rating{
				RatingID:  NewID("rating"),
				FacultyID: "fac_1",
				UserID:    fmt.Sprintf("user_%d", i),
				Overall:   &overall,
				CreatedAt: now,
				UpdatedAt: now,
			}
			errs <- repo.SaveRating(rating, true, []CategoryApplication{firstSubmission(overall)})
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every submission must land: the transactions serialize on the
	// write lock instead of failing or losing increments.
	fac, err := repo.FacultyByID("fac_1")
	require.NoError(t, err)
	assert.Equal(t, submitters, fac.RatingCounts["overall"])
	assert.InDelta(t, 4.0, fac.AvgRatings["overall"], 0.0001)
}

func TestSaveRatingRollsBackWhenCategoryFails(t *testing.T) {
	repo := newTestRepository(t)
	seedTestFaculty(t, repo, "fac_1")

	overall := 4
	now := time.Now().UTC()
	rating := &Rating{
		RatingID:  NewID("rating"),
		FacultyID: "fac_1",
		UserID:    "user_1",
		Overall:   &overall,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.SaveRating(rating, true, []CategoryApplication{firstSubmission(overall)}))

	// Revision where a later category application fails: the row
	// rewrite and the already-applied aggregate must both roll back.
	revised := 5
	rating.Overall = &revised
	err := repo.SaveRating(rating, false, []CategoryApplication{
		{
			Category: "overall",
			Apply: func(avg float64, count int) (float64, int) {
				return float64(revised), count
			},
		},
		{
			Category: "popularity",
			Apply:    func(avg float64, count int) (float64, int) { return avg, count },
		},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown rating category")

	stored, err := repo.RatingByFacultyUser("fac_1", "user_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 4, *stored.Overall, "failed revision must leave the stored rating untouched")

	fac, err := repo.FacultyByID("fac_1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, fac.AvgRatings["overall"], 0.0001)
	assert.Equal(t, 1, fac.RatingCounts["overall"])
}
