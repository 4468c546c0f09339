package ratings

import (
	"fmt"
	"time"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

// Store is the persistence surface the rating workflow needs
type Store interface {
	FacultyByID(facultyID string) (*database.Faculty, error)
	CreateFaculty(fac *database.Faculty) error
	RatingByFacultyUser(facultyID, userID string) (*database.Rating, error)
	SaveRating(rating *database.Rating, insert bool, apps []database.CategoryApplication) error
}

// Submission is one user's rating input. Overall is required; the other
// categories are optional and absent ones leave their aggregates alone.
type Submission struct {
	Teaching           *int `json:"teaching" binding:"omitempty,min=1,max=5"`
	Attendance         *int `json:"attendance" binding:"omitempty,min=1,max=5"`
	DoubtClarification *int `json:"doubt_clarification" binding:"omitempty,min=1,max=5"`
	Overall            int  `json:"overall" binding:"required,min=1,max=5"`
}

func (s Submission) value(category Category) *int {
	switch category {
	case CategoryTeaching:
		return s.Teaching
	case CategoryAttendance:
		return s.Attendance
	case CategoryDoubtClarify:
		return s.DoubtClarification
	case CategoryOverall:
		return &s.Overall
	}
	return nil
}

// Validate checks every provided value is on the 1-5 scale
func (s Submission) Validate() error {
	for _, category := range Categories {
		if v := s.value(category); v != nil && !ValidValue(*v) {
			return fmt.Errorf("rating for %s must be between 1 and 5, got %d", category, *v)
		}
	}
	return nil
}

// Service coordinates rating submissions and aggregate maintenance
type Service struct {
	store Store
}

// NewService creates a rating service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Submit records a user's rating of a faculty. A first submission inserts
// a rating row; a later one revises it in place, so each user contributes
// at most once per category. Aggregates move per category: categories
// absent from the submission are untouched, and a category rated for the
// first time in a revision counts as a new voice, not a replacement.
func (s *Service) Submit(facultyID, userID string, sub Submission) (*database.Rating, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	fac, err := s.store.FacultyByID(facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load faculty: %w", err)
	}
	if fac == nil {
		if err := s.store.CreateFaculty(placeholderFaculty(facultyID)); err != nil {
			return nil, fmt.Errorf("failed to create placeholder faculty: %w", err)
		}
	}

	existing, err := s.store.RatingByFacultyUser(facultyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing rating: %w", err)
	}

	now := time.Now().UTC()
	if existing == nil {
		return s.submitNew(facultyID, userID, sub, now)
	}
	return s.revise(existing, sub, now)
}

func (s *Service) submitNew(facultyID, userID string, sub Submission, now time.Time) (*database.Rating, error) {
	rating := &database.Rating{
		RatingID:           database.NewID("rating"),
		FacultyID:          facultyID,
		UserID:             userID,
		Teaching:           sub.Teaching,
		Attendance:         sub.Attendance,
		DoubtClarification: sub.DoubtClarification,
		Overall:            &sub.Overall,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	var apps []database.CategoryApplication
	for _, category := range Categories {
		if value := sub.value(category); value != nil {
			apps = append(apps, application(category, *value, nil))
		}
	}

	if err := s.store.SaveRating(rating, true, apps); err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}
	return rating, nil
}

func (s *Service) revise(existing *database.Rating, sub Submission, now time.Time) (*database.Rating, error) {
	// Snapshot the previous values before overwriting the row; the
	// aggregate math needs them to back out the old contribution.
	oldValues := make(map[Category]*int, len(Categories))
	for _, category := range Categories {
		oldValues[category] = existing.Value(string(category))
	}

	for _, category := range Categories {
		if value := sub.value(category); value != nil {
			existing.SetValue(string(category), *value)
		}
	}
	existing.UpdatedAt = now

	var apps []database.CategoryApplication
	for _, category := range Categories {
		if value := sub.value(category); value != nil {
			apps = append(apps, application(category, *value, oldValues[category]))
		}
	}

	// Row rewrite and aggregate updates commit together; a failure on
	// any category leaves the stored rating at its previous values.
	if err := s.store.SaveRating(existing, false, apps); err != nil {
		return nil, fmt.Errorf("failed to store revised rating: %w", err)
	}
	return existing, nil
}

func application(category Category, newValue int, oldValue *int) database.CategoryApplication {
	return database.CategoryApplication{
		Category: string(category),
		Apply: func(avg float64, count int) (float64, int) {
			next := Apply(CategoryStats{Average: avg, Count: count}, newValue, oldValue)
			return next.Average, next.Count
		},
	}
}

// placeholderFaculty backs a rating submitted against an id that has no
// profile yet, so the aggregates have a row to live on.
func placeholderFaculty(facultyID string) *database.Faculty {
	fac := database.NewFaculty("Demo Faculty", "General", "Faculty")
	fac.FacultyID = facultyID
	return fac
}
