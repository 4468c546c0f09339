package openalex

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := testLogger()
	return NewClient(server.URL, "test@example.com", NewDefaultPool(logger), logger)
}

func TestSearchAuthors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors", r.URL.Path)
		assert.Equal(t, "Jane Doe", r.URL.Query().Get("search"))
		assert.Equal(t, "affiliations.institution.id:I12345", r.URL.Query().Get("filter"))
		assert.Equal(t, "test@example.com", r.URL.Query().Get("mailto"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"id":"https://openalex.org/A1","display_name":"Jane Doe"},
			{"id":"https://openalex.org/A2","display_name":"J. Doe"}
		]}`))
	})

	authors, err := client.SearchAuthors(context.Background(), "Jane Doe", "I12345")
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "https://openalex.org/A1", authors[0].ID)
	assert.Equal(t, "Jane Doe", authors[0].DisplayName)
}

func TestListWorks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works", r.URL.Path)
		assert.Equal(t, "author.id:A1,institutions.id:I12345", r.URL.Query().Get("filter"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"id":"https://openalex.org/W1","title":"Deep Learning for Robotics","publication_year":2023,"type":"article"}
		]}`))
	})

	works, err := client.ListWorks(context.Background(), "A1", "I12345")
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, "Deep Learning for Robotics", works[0].Title)
	assert.Equal(t, 2023, works[0].PublicationYear)
}

func TestNonSuccessStatusReturnsError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	})
	client.retry.MaxAttempts = 1

	_, err := client.SearchAuthors(context.Background(), "Jane Doe", "I12345")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetriesOnServerError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`))
	})
	client.retry.InitialDelay = 0
	client.retry.JitterEnabled = false

	authors, err := client.SearchAuthors(context.Background(), "Jane Doe", "I12345")
	require.NoError(t, err)
	assert.Empty(t, authors)
	assert.Equal(t, 3, calls)
}

func TestContextCancellationStopsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchAuthors(ctx, "Jane Doe", "I12345")
	assert.Error(t, err)
}
