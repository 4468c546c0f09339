package scholarsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitapstudent/faculty-hub/internal/database"
	"github.com/vitapstudent/faculty-hub/internal/namematch"
	"github.com/vitapstudent/faculty-hub/internal/openalex"
)

// Bibliographic is the slice of the OpenAlex client the sync needs
type Bibliographic interface {
	SearchAuthors(ctx context.Context, name, institutionID string) ([]openalex.Author, error)
	ListWorks(ctx context.Context, authorID, institutionID string) ([]openalex.Work, error)
}

// Store is the persistence surface of the sync job
type Store interface {
	ListFaculty(department string) ([]database.Faculty, error)
	SetPublications(facultyID string, titles []string, scholarProfile *string) error
}

// Outcome is what happened to one faculty during a sync run
type Outcome struct {
	FacultyID string `json:"faculty_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Works     int    `json:"works,omitempty"`
}

const (
	StatusUpdated = "updated"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Tally summarizes a sync run
type Tally struct {
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Outcomes []Outcome `json:"outcomes"`
}

// Service reconciles faculty profiles against the bibliographic API,
// filling in publication titles for faculty whose names can be matched
// to an author record.
type Service struct {
	store         Store
	api           Bibliographic
	logger        *slog.Logger
	institutionID string
	perFaculty    time.Duration
}

// NewService creates a sync service. perFaculty bounds the time spent on
// any single faculty so one slow lookup cannot stall the batch.
func NewService(store Store, api Bibliographic, logger *slog.Logger, institutionID string, perFaculty time.Duration) *Service {
	if perFaculty <= 0 {
		perFaculty = 20 * time.Second
	}
	return &Service{
		store:         store,
		api:           api,
		logger:        logger,
		institutionID: institutionID,
		perFaculty:    perFaculty,
	}
}

// Run processes every faculty sequentially. A failure on one faculty is
// counted and the loop continues; the batch never aborts part-way.
func (s *Service) Run(ctx context.Context) (*Tally, error) {
	faculty, err := s.store.ListFaculty("")
	if err != nil {
		return nil, fmt.Errorf("failed to list faculty for sync: %w", err)
	}

	tally := &Tally{Outcomes: make([]Outcome, 0, len(faculty))}
	start := time.Now()

	for i := range faculty {
		select {
		case <-ctx.Done():
			return tally, ctx.Err()
		default:
		}

		outcome := s.syncOne(ctx, &faculty[i])
		tally.Outcomes = append(tally.Outcomes, outcome)

		switch outcome.Status {
		case StatusUpdated:
			tally.Updated++
		case StatusSkipped:
			tally.Skipped++
		default:
			tally.Failed++
		}
	}

	s.logger.Info("scholar sync finished",
		"total", len(faculty),
		"updated", tally.Updated,
		"skipped", tally.Skipped,
		"failed", tally.Failed,
		"duration_ms", time.Since(start).Milliseconds())
	return tally, nil
}

func (s *Service) syncOne(parent context.Context, fac *database.Faculty) Outcome {
	ctx, cancel := context.WithTimeout(parent, s.perFaculty)
	defer cancel()

	outcome := Outcome{FacultyID: fac.FacultyID, Name: fac.Name}

	cleaned, err := namematch.CleanName(fac.Name)
	if err != nil {
		outcome.Status = StatusSkipped
		outcome.Detail = "no name left after stripping titles"
		return outcome
	}

	authors, err := s.api.SearchAuthors(ctx, cleaned, s.institutionID)
	if err != nil {
		s.logger.Warn("author search failed", "faculty_id", fac.FacultyID, "error", err)
		outcome.Status = StatusFailed
		outcome.Detail = err.Error()
		return outcome
	}

	candidates := make([]namematch.Candidate, 0, len(authors))
	for _, author := range authors {
		candidates = append(candidates, namematch.Candidate{ID: author.ID, DisplayName: author.DisplayName})
	}

	match, err := namematch.Match(fac.Name, candidates)
	if err != nil {
		outcome.Status = StatusSkipped
		outcome.Detail = "no name left after stripping titles"
		return outcome
	}
	if match == nil {
		outcome.Status = StatusSkipped
		outcome.Detail = "no author record matched"
		return outcome
	}

	works, err := s.api.ListWorks(ctx, match.ID, s.institutionID)
	if err != nil {
		s.logger.Warn("works lookup failed", "faculty_id", fac.FacultyID, "author_id", match.ID, "error", err)
		outcome.Status = StatusFailed
		outcome.Detail = err.Error()
		return outcome
	}

	titles := make([]string, 0, len(works))
	for _, work := range works {
		if work.Title != "" {
			titles = append(titles, work.Title)
		}
	}

	profile := match.ID
	if err := s.store.SetPublications(fac.FacultyID, titles, &profile); err != nil {
		outcome.Status = StatusFailed
		outcome.Detail = err.Error()
		return outcome
	}

	outcome.Status = StatusUpdated
	outcome.Works = len(titles)
	return outcome
}
