package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

func strPtr(s string) *string { return &s }

func makeUser(preferences, interests []string) *database.User {
	user := database.NewUser("student@vitapstudent.ac.in", "Student", false)
	user.Preferences = preferences
	user.AIInterests = interests
	return user
}

func makeFaculty(id string) database.Faculty {
	fac := database.NewFaculty("Faculty "+id, "SCOPE", "Professor")
	fac.FacultyID = id
	return *fac
}

func TestRecommendGating(t *testing.T) {
	fac := makeFaculty("fac_1")
	fac.AvgRatings["teaching"] = 5.0
	fac.RatingCounts["teaching"] = 3

	recs := Recommend(makeUser(nil, nil), []database.Faculty{fac})
	assert.Empty(t, recs, "no preferences and no interests means no recommendations")
}

func TestRecommendAdminGetsNothing(t *testing.T) {
	fac := makeFaculty("fac_1")
	fac.AvgRatings["teaching"] = 5.0

	admin := makeUser([]string{"teaching"}, []string{"robotics"})
	admin.IsAdmin = true

	assert.Empty(t, Recommend(admin, []database.Faculty{fac}))
}

func TestRecommendRatingCompatibility(t *testing.T) {
	fac := makeFaculty("fac_1")
	fac.AvgRatings["teaching"] = 4.0
	fac.AvgRatings["attendance"] = 3.0

	recs := Recommend(makeUser([]string{"Teaching", "Attendance"}, nil), []database.Faculty{fac})
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].CompatibilityPercentage)
	assert.InDelta(t, 70.0, *recs[0].CompatibilityPercentage, 0.01)
	assert.Nil(t, recs[0].Reason)
}

func TestRecommendOverallFallback(t *testing.T) {
	// The preferred category has no ratings, but overall does.
	fac := makeFaculty("fac_1")
	fac.AvgRatings["overall"] = 3.5

	recs := Recommend(makeUser([]string{"teaching"}, nil), []database.Faculty{fac})
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].CompatibilityPercentage)
	assert.InDelta(t, 70.0, *recs[0].CompatibilityPercentage, 0.01)
}

func TestRecommendUnratedFacultyExcluded(t *testing.T) {
	fac := makeFaculty("fac_1")

	recs := Recommend(makeUser([]string{"teaching"}, nil), []database.Faculty{fac})
	assert.Empty(t, recs)
}

func TestRecommendInterestOnly(t *testing.T) {
	fac := makeFaculty("fac_1")
	fac.ResearchInterests = strPtr("Robotics and autonomous systems")

	recs := Recommend(makeUser(nil, []string{"robotics"}), []database.Faculty{fac})
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Reason)
	assert.Contains(t, *recs[0].Reason, "robotics")
	assert.Nil(t, recs[0].CompatibilityPercentage, "interest-only matches carry no compatibility figure")
}

func TestRecommendInterestCitesPublication(t *testing.T) {
	fac := makeFaculty("fac_1")
	fac.ResearchInterests = strPtr("Machine learning")
	fac.Publications = []string{"Deep reinforcement learning for robotics"}

	recs := Recommend(makeUser(nil, []string{"robotics"}), []database.Faculty{fac})
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Reason)
	assert.Contains(t, *recs[0].Reason, "Deep reinforcement learning for robotics")
}

func TestRecommendRatingWinsOverInterest(t *testing.T) {
	fac := makeFaculty("fac_1")
	fac.AvgRatings["teaching"] = 4.0
	fac.RatingCounts["teaching"] = 2
	fac.ResearchInterests = strPtr("Robotics lab")

	recs := Recommend(makeUser([]string{"teaching"}, []string{"robotics"}), []database.Faculty{fac})
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].CompatibilityPercentage)
	assert.InDelta(t, 80.0, *recs[0].CompatibilityPercentage, 0.01, "rating fit decides, not the fixed interest score")
}

func TestRecommendInterestRescuesWithoutRatingFit(t *testing.T) {
	fac := makeFaculty("fac_1")
	fac.ResearchInterests = strPtr("Robotics lab")

	recs := Recommend(makeUser([]string{"teaching"}, []string{"robotics"}), []database.Faculty{fac})
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].CompatibilityPercentage)
	assert.InDelta(t, 85.0, *recs[0].CompatibilityPercentage, 0.01)
	require.NotNil(t, recs[0].Reason)
}

func TestRecommendOrderAndTruncation(t *testing.T) {
	faculty := make([]database.Faculty, 0, 12)
	for i := 0; i < 12; i++ {
		fac := makeFaculty(fmt.Sprintf("fac_%d", i))
		fac.AvgRatings["teaching"] = 2.0 + float64(i)*0.25
		faculty = append(faculty, fac)
	}

	recs := Recommend(makeUser([]string{"teaching"}, nil), faculty)
	require.Len(t, recs, 10)

	assert.Equal(t, "fac_11", recs[0].FacultyID)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, *recs[i-1].CompatibilityPercentage, *recs[i].CompatibilityPercentage)
	}
}
