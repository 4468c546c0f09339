package ratings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

// fakeStore keeps everything in maps so the submission workflow can be
// exercised without sqlite.
type fakeStore struct {
	faculty map[string]*database.Faculty
	ratings map[string]*database.Rating
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		faculty: make(map[string]*database.Faculty),
		ratings: make(map[string]*database.Rating),
	}
}

func (f *fakeStore) FacultyByID(facultyID string) (*database.Faculty, error) {
	return f.faculty[facultyID], nil
}

func (f *fakeStore) CreateFaculty(fac *database.Faculty) error {
	f.faculty[fac.FacultyID] = fac
	return nil
}

func (f *fakeStore) RatingByFacultyUser(facultyID, userID string) (*database.Rating, error) {
	return f.ratings[facultyID+"/"+userID], nil
}

func (f *fakeStore) SaveRating(rating *database.Rating, insert bool, apps []database.CategoryApplication) error {
	if f.saveErr != nil {
		return f.saveErr
	}

	f.ratings[rating.FacultyID+"/"+rating.UserID] = rating

	fac := f.faculty[rating.FacultyID]
	for _, app := range apps {
		avg, count := app.Apply(fac.AvgRatings[app.Category], fac.RatingCounts[app.Category])
		fac.AvgRatings[app.Category] = avg
		fac.RatingCounts[app.Category] = count
	}
	return nil
}

func intPtr(v int) *int { return &v }

func TestSubmitFirstRating(t *testing.T) {
	store := newFakeStore()
	store.faculty["fac_1"] = database.NewFaculty("Dr. Ada Lovelace", "SCOPE", "Professor")
	store.faculty["fac_1"].FacultyID = "fac_1"

	svc := NewService(store)

	rating, err := svc.Submit("fac_1", "user_1", Submission{
		Teaching: intPtr(4),
		Overall:  5,
	})
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, "fac_1", rating.FacultyID)
	assert.Equal(t, 4, *rating.Teaching)
	assert.Nil(t, rating.Attendance)

	fac := store.faculty["fac_1"]
	assert.InDelta(t, 4.0, fac.AvgRatings["teaching"], 0.0001)
	assert.Equal(t, 1, fac.RatingCounts["teaching"])
	assert.InDelta(t, 5.0, fac.AvgRatings["overall"], 0.0001)
	assert.Equal(t, 1, fac.RatingCounts["overall"])

	// Untouched categories keep zeroed aggregates.
	assert.Equal(t, 0, fac.RatingCounts["attendance"])
	assert.Equal(t, 0, fac.RatingCounts["doubt_clarification"])
}

func TestSubmitRevisionReplacesContribution(t *testing.T) {
	store := newFakeStore()
	store.faculty["fac_1"] = database.NewFaculty("Dr. Ada Lovelace", "SCOPE", "Professor")
	store.faculty["fac_1"].FacultyID = "fac_1"

	svc := NewService(store)

	_, err := svc.Submit("fac_1", "user_1", Submission{Teaching: intPtr(4), Overall: 4})
	require.NoError(t, err)

	_, err = svc.Submit("fac_1", "user_1", Submission{Teaching: intPtr(2), Overall: 2})
	require.NoError(t, err)

	fac := store.faculty["fac_1"]
	assert.InDelta(t, 2.0, fac.AvgRatings["teaching"], 0.0001)
	assert.Equal(t, 1, fac.RatingCounts["teaching"], "revision must not grow the count")
	assert.InDelta(t, 2.0, fac.AvgRatings["overall"], 0.0001)
	assert.Equal(t, 1, fac.RatingCounts["overall"])
}

func TestSubmitRevisionAddsNewCategory(t *testing.T) {
	store := newFakeStore()
	store.faculty["fac_1"] = database.NewFaculty("Dr. Ada Lovelace", "SCOPE", "Professor")
	store.faculty["fac_1"].FacultyID = "fac_1"

	svc := NewService(store)

	_, err := svc.Submit("fac_1", "user_1", Submission{Overall: 4})
	require.NoError(t, err)

	// Attendance was never rated by this user, so the revision counts as
	// a fresh contribution there.
	_, err = svc.Submit("fac_1", "user_1", Submission{Attendance: intPtr(3), Overall: 4})
	require.NoError(t, err)

	fac := store.faculty["fac_1"]
	assert.InDelta(t, 3.0, fac.AvgRatings["attendance"], 0.0001)
	assert.Equal(t, 1, fac.RatingCounts["attendance"])
	assert.Equal(t, 1, fac.RatingCounts["overall"])
}

func TestSubmitTwoUsersIndependentCounts(t *testing.T) {
	store := newFakeStore()
	store.faculty["fac_1"] = database.NewFaculty("Dr. Ada Lovelace", "SCOPE", "Professor")
	store.faculty["fac_1"].FacultyID = "fac_1"

	svc := NewService(store)

	_, err := svc.Submit("fac_1", "user_1", Submission{Overall: 5})
	require.NoError(t, err)
	_, err = svc.Submit("fac_1", "user_2", Submission{Overall: 3})
	require.NoError(t, err)

	fac := store.faculty["fac_1"]
	assert.InDelta(t, 4.0, fac.AvgRatings["overall"], 0.0001)
	assert.Equal(t, 2, fac.RatingCounts["overall"])
}

func TestSubmitCreatesPlaceholderFaculty(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Submit("fac_missing", "user_1", Submission{Overall: 4})
	require.NoError(t, err)

	fac := store.faculty["fac_missing"]
	require.NotNil(t, fac)
	assert.Equal(t, "Demo Faculty", fac.Name)
	assert.Equal(t, "General", fac.Department)
	assert.Equal(t, 1, fac.RatingCounts["overall"])
}

func TestSubmitSurfacesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.faculty["fac_1"] = database.NewFaculty("Dr. Ada Lovelace", "SCOPE", "Professor")
	store.faculty["fac_1"].FacultyID = "fac_1"
	store.saveErr = errors.New("disk full")

	svc := NewService(store)

	_, err := svc.Submit("fac_1", "user_1", Submission{Overall: 4})
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.Nil(t, store.ratings["fac_1/user_1"])
}

func TestSubmitRejectsOutOfRangeValues(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.Submit("fac_1", "user_1", Submission{Overall: 6})
	assert.Error(t, err)

	_, err = svc.Submit("fac_1", "user_1", Submission{Teaching: intPtr(0), Overall: 3})
	assert.Error(t, err)
}
