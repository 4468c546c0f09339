package scholarsync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitapstudent/faculty-hub/internal/database"
	"github.com/vitapstudent/faculty-hub/internal/openalex"
)

type fakeAPI struct {
	authors  map[string][]openalex.Author
	works    map[string][]openalex.Work
	failName string
}

func (f *fakeAPI) SearchAuthors(_ context.Context, name, _ string) ([]openalex.Author, error) {
	if name == f.failName {
		return nil, errors.New("upstream unavailable")
	}
	return f.authors[name], nil
}

func (f *fakeAPI) ListWorks(_ context.Context, authorID, _ string) ([]openalex.Work, error) {
	return f.works[authorID], nil
}

type fakeSyncStore struct {
	faculty      []database.Faculty
	publications map[string][]string
	profiles     map[string]string
}

func (f *fakeSyncStore) ListFaculty(string) ([]database.Faculty, error) {
	return f.faculty, nil
}

func (f *fakeSyncStore) SetPublications(facultyID string, titles []string, profile *string) error {
	if f.publications == nil {
		f.publications = make(map[string][]string)
		f.profiles = make(map[string]string)
	}
	f.publications[facultyID] = titles
	if profile != nil {
		f.profiles[facultyID] = *profile
	}
	return nil
}

func syncFaculty(id, name string) database.Faculty {
	fac := database.NewFaculty(name, "SCOPE", "Professor")
	fac.FacultyID = id
	return *fac
}

func newTestService(store Store, api Bibliographic) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, api, logger, "I12345", time.Second)
}

func TestRunUpdatesMatchedFaculty(t *testing.T) {
	store := &fakeSyncStore{faculty: []database.Faculty{
		syncFaculty("fac_1", "Dr. Jane Doe"),
	}}
	api := &fakeAPI{
		authors: map[string][]openalex.Author{
			"Jane Doe": {{ID: "A1", DisplayName: "Doe Jane"}},
		},
		works: map[string][]openalex.Work{
			"A1": {
				{ID: "W1", Title: "Paper One", PublicationYear: 2023},
				{ID: "W2", Title: "Paper Two", PublicationYear: 2022},
			},
		},
	}

	tally, err := newTestService(store, api).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Updated)
	assert.Equal(t, 0, tally.Skipped)
	assert.Equal(t, 0, tally.Failed)
	assert.Equal(t, []string{"Paper One", "Paper Two"}, store.publications["fac_1"])
	assert.Equal(t, "A1", store.profiles["fac_1"])
}

func TestRunSkipsUnmatchedAndTitleOnlyNames(t *testing.T) {
	store := &fakeSyncStore{faculty: []database.Faculty{
		syncFaculty("fac_1", "Dr. Jane Doe"),
		syncFaculty("fac_2", "Prof."),
	}}
	api := &fakeAPI{
		authors: map[string][]openalex.Author{
			"Jane Doe": {{ID: "A1", DisplayName: "Somebody Else"}},
		},
	}

	tally, err := newTestService(store, api).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, tally.Updated)
	assert.Equal(t, 2, tally.Skipped)
	require.Len(t, tally.Outcomes, 2)
	assert.Equal(t, StatusSkipped, tally.Outcomes[0].Status)
	assert.Equal(t, StatusSkipped, tally.Outcomes[1].Status)
}

func TestRunContinuesAfterFailure(t *testing.T) {
	store := &fakeSyncStore{faculty: []database.Faculty{
		syncFaculty("fac_1", "Dr. Broken Lookup"),
		syncFaculty("fac_2", "Dr. Jane Doe"),
	}}
	api := &fakeAPI{
		failName: "Broken Lookup",
		authors: map[string][]openalex.Author{
			"Jane Doe": {{ID: "A1", DisplayName: "Jane Doe"}},
		},
		works: map[string][]openalex.Work{
			"A1": {{ID: "W1", Title: "Paper One"}},
		},
	}

	tally, err := newTestService(store, api).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Failed)
	assert.Equal(t, 1, tally.Updated, "one failure must not stop the batch")
	assert.Equal(t, []string{"Paper One"}, store.publications["fac_2"])
}

func TestRunHonorsCancellation(t *testing.T) {
	store := &fakeSyncStore{faculty: []database.Faculty{
		syncFaculty("fac_1", "Dr. Jane Doe"),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(store, &fakeAPI{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
