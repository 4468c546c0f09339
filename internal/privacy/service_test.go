package privacy

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitapstudent/faculty-hub/internal/database"
)

func newTestService(t *testing.T) (*PrivacyService, *database.Repository) {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db, repo, logger, 90), repo
}

func TestDeleteUserDataAnonymizesRatings(t *testing.T) {
	svc, repo := newTestService(t)

	user := database.NewUser("nisha.rao22@vitapstudent.ac.in", "Nisha Rao", false)
	require.NoError(t, repo.CreateUser(user))

	fac := database.NewFaculty("Dr. Ada Lovelace", "SCOPE", "Professor")
	require.NoError(t, repo.CreateFaculty(fac))

	overall := 4
	now := time.Now().UTC()
	rating := &database.Rating{
		RatingID:  database.NewID("rating"),
		FacultyID: fac.FacultyID,
		UserID:    user.UserID,
		Overall:   &overall,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.SaveRating(rating, true, nil))

	comment := &database.Comment{
		CommentID: database.NewID("comment"),
		FacultyID: fac.FacultyID,
		UserID:    user.UserID,
		UserName:  user.Name,
		Content:   "great lectures",
		CreatedAt: now,
	}
	require.NoError(t, repo.InsertComment(comment))

	require.NoError(t, svc.DeleteUserData(user.UserID))

	// Account and comments are gone.
	gone, err := repo.UserByID(user.UserID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	comments, err := repo.CommentsByFaculty(fac.FacultyID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// The rating row survives, but nothing links it to the account.
	byOldID, err := repo.RatingByFacultyUser(fac.FacultyID, user.UserID)
	require.NoError(t, err)
	assert.Nil(t, byOldID)

	anonymized := "deleted_" + svc.AnonymizeData(user.UserID)[:12]
	kept, err := repo.RatingByFacultyUser(fac.FacultyID, anonymized)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, 4, *kept.Overall)
	assert.True(t, strings.HasPrefix(kept.UserID, "deleted_"))
}
