package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

// maxResults caps the recommendation list
const maxResults = 10

// interestScore is the fixed ordering score for interest-only matches.
// Rating compatibility tops out at 100, so an interest match slots in
// just below a near-perfect rating fit.
const interestScore = 85.0

// Recommendation is one suggested faculty. CompatibilityPercentage is
// present only when the user stated rating-category preferences; Reason
// only when a research-interest keyword matched.
type Recommendation struct {
	database.Faculty
	CompatibilityPercentage *float64 `json:"compatibility_percentage,omitempty"`
	Reason                  *string  `json:"reason,omitempty"`

	sortScore float64
}

// Recommend picks up to ten faculty for the user, ordered best first.
// Rating-category preferences dominate: when the user has both
// preferences and interest keywords, a rating match decides the score
// and the interest signal only rescues faculty with no rating fit.
// Admins and users with no stated preferences or interests get nothing.
func Recommend(user *database.User, faculty []database.Faculty) []Recommendation {
	if user == nil || user.IsAdmin {
		return []Recommendation{}
	}

	hasPreferences := len(user.Preferences) > 0
	hasInterests := len(user.AIInterests) > 0
	if !hasPreferences && !hasInterests {
		return []Recommendation{}
	}

	categories := preferenceCategories(user.Preferences)

	recommendations := []Recommendation{}
	for i := range faculty {
		fac := faculty[i]

		ratingScore := ratingCompatibility(&fac, categories)

		var reason *string
		if hasInterests {
			reason = matchInterest(&fac, user.AIInterests)
		}

		switch {
		case hasPreferences && ratingScore > 0:
			// A rating fit wins outright; the interest signal is not
			// consulted, matched or not.
			pct := round1(ratingScore)
			recommendations = append(recommendations, Recommendation{
				Faculty:                 fac,
				CompatibilityPercentage: &pct,
				sortScore:               ratingScore,
			})
		case reason != nil:
			rec := Recommendation{Faculty: fac, Reason: reason, sortScore: interestScore}
			if hasPreferences {
				pct := interestScore
				rec.CompatibilityPercentage = &pct
			}
			recommendations = append(recommendations, rec)
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].sortScore > recommendations[j].sortScore
	})
	if len(recommendations) > maxResults {
		recommendations = recommendations[:maxResults]
	}
	return recommendations
}

// preferenceCategories maps free-text preference labels onto rating
// category keys: lower-cased, spaces become underscores.
func preferenceCategories(preferences []string) []string {
	categories := make([]string, 0, len(preferences))
	for _, pref := range preferences {
		key := strings.ReplaceAll(strings.ToLower(pref), " ", "_")
		categories = append(categories, key)
	}
	return categories
}

// ratingCompatibility maps the user's preferred categories onto a 0-100
// score. Categories the faculty has no ratings for are skipped; when no
// preferred category is rated, a rated overall average stands in.
func ratingCompatibility(fac *database.Faculty, categories []string) float64 {
	var sum float64
	matched := 0
	for _, category := range categories {
		if avg, ok := fac.AvgRatings[category]; ok && avg > 0 {
			sum += avg
			matched++
		}
	}
	if matched > 0 {
		return (sum / float64(matched)) * 20
	}
	if overall := fac.AvgRatings["overall"]; overall > 0 {
		return overall * 20
	}
	return 0
}

// matchInterest scans the faculty's research text for any of the user's
// interest keywords. The reason cites the publication title containing
// the keyword when there is one, otherwise the research-interest text.
func matchInterest(fac *database.Faculty, interests []string) *string {
	researchText := ""
	if fac.ResearchInterests != nil {
		researchText = *fac.ResearchInterests
	}

	corpus := strings.ToLower(researchText)
	for _, title := range fac.Publications {
		corpus += " " + strings.ToLower(title)
	}
	if strings.TrimSpace(corpus) == "" {
		return nil
	}

	for _, interest := range interests {
		keyword := strings.ToLower(strings.TrimSpace(interest))
		if keyword == "" || !strings.Contains(corpus, keyword) {
			continue
		}

		for _, title := range fac.Publications {
			if strings.Contains(strings.ToLower(title), keyword) {
				reason := fmt.Sprintf("Matches your interest in %q through the publication %q", interest, title)
				return &reason
			}
		}
		reason := fmt.Sprintf("Matches your interest in %q: %s", interest, researchText)
		return &reason
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
