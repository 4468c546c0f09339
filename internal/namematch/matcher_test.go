package namematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "doctor prefix", input: "Dr. Jane Doe", want: "Jane Doe"},
		{name: "professor prefix", input: "Prof. Alan Turing", want: "Alan Turing"},
		{name: "assistant professor prefix", input: "Assistant Professor Ravi Kumar", want: "Ravi Kumar"},
		{name: "no prefix", input: "Jane Doe", want: "Jane Doe"},
		{name: "prefix only", input: "Dr.", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoNameAfterCleaning)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchExactSetEquality(t *testing.T) {
	// Reordered tokens still match exactly.
	match, err := Match("Dr. Jane Doe", []Candidate{
		{ID: "A1", DisplayName: "Doe Jane"},
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "A1", match.ID)
}

func TestMatchSubset(t *testing.T) {
	match, err := Match("Dr. Jane Elizabeth Doe", []Candidate{
		{ID: "A1", DisplayName: "Jane Doe"},
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "A1", match.ID)
}

func TestMatchPartialOverlapRejected(t *testing.T) {
	// Shares "doe" but "john" is foreign, so neither set contains the other.
	match, err := Match("Dr. Jane Doe", []Candidate{
		{ID: "A1", DisplayName: "John Doe"},
	})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestMatchInitials(t *testing.T) {
	match, err := Match("Anil Vitthalrao Turukmane", []Candidate{
		{ID: "A1", DisplayName: "A V Turukmane"},
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "A1", match.ID)
}

func TestMatchInitialsRejectForeignToken(t *testing.T) {
	// "amit" is a full token missing from the faculty name.
	match, err := Match("Anil Vitthalrao Turukmane", []Candidate{
		{ID: "A1", DisplayName: "Amit Turukmane"},
	})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestMatchInitialsOnlyRejected(t *testing.T) {
	// All-initial candidates must not match even when every initial fits.
	match, err := Match("Anil Vitthalrao Turukmane", []Candidate{
		{ID: "A1", DisplayName: "A V T"},
	})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestMatchFirstCandidateWins(t *testing.T) {
	match, err := Match("Dr. Jane Doe", []Candidate{
		{ID: "A1", DisplayName: "Jane Doe"},
		{ID: "A2", DisplayName: "Doe Jane"},
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "A1", match.ID)
}

func TestMatchEmptyNameAfterCleaning(t *testing.T) {
	match, err := Match("Prof.", []Candidate{{ID: "A1", DisplayName: "Jane Doe"}})
	assert.ErrorIs(t, err, ErrNoNameAfterCleaning)
	assert.Nil(t, match)
}

func TestMatchNoCandidates(t *testing.T) {
	match, err := Match("Dr. Jane Doe", nil)
	require.NoError(t, err)
	assert.Nil(t, match)
}
