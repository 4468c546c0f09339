package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vitapstudent/faculty-hub/internal/errors"
	"github.com/vitapstudent/faculty-hub/internal/resilience"
)

// DefaultBaseURL is the public OpenAlex endpoint
const DefaultBaseURL = "https://api.openalex.org"

// Author is one author record from the authors search
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Work is one publication record
type Work struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	Type            string `json:"type"`
}

type authorsResponse struct {
	Results []Author `json:"results"`
}

type worksResponse struct {
	Results []Work `json:"results"`
}

// Client talks to the OpenAlex API through the resilient HTTP pool
type Client struct {
	baseURL string
	mailto  string
	pool    *resilience.HTTPPool
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

// NewClient creates an OpenAlex client. mailto goes into the polite-pool
// query parameter OpenAlex asks API consumers to send.
func NewClient(baseURL, mailto string, pool *resilience.HTTPPool, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		mailto:  mailto,
		pool:    pool,
		retry:   resilience.DefaultRetryConfig(),
		logger:  logger,
	}
}

// SearchAuthors finds authors by display name affiliated with the given
// institution id.
func (c *Client) SearchAuthors(ctx context.Context, name, institutionID string) ([]Author, error) {
	params := url.Values{}
	params.Set("search", name)
	params.Set("filter", "affiliations.institution.id:"+institutionID)
	params.Set("per-page", "10")

	var parsed authorsResponse
	if err := c.getJSON(ctx, "/authors", params, &parsed); err != nil {
		return nil, err
	}
	return parsed.Results, nil
}

// ListWorks fetches an author's works at the given institution
func (c *Client) ListWorks(ctx context.Context, authorID, institutionID string) ([]Work, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("author.id:%s,institutions.id:%s", authorID, institutionID))
	params.Set("per-page", "50")
	params.Set("sort", "publication_year:desc")

	var parsed worksResponse
	if err := c.getJSON(ctx, "/works", params, &parsed); err != nil {
		return nil, err
	}
	return parsed.Results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}
	requestURL := c.baseURL + path + "?" + params.Encode()

	err := resilience.RetryWithConfig(ctx, c.retry, func() error {
		resp, err := c.pool.DoRequest(ctx, http.MethodGet, requestURL, map[string]string{
			"Accept": "application/json",
		})
		if err != nil {
			return errors.NewExternalAPIError("OpenAlex", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			c.logger.Warn("openalex returned non-200",
				"path", path,
				"status", resp.StatusCode,
				"body", string(body))
			return errors.NewExternalAPIError("OpenAlex",
				fmt.Errorf("unexpected status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewInternalError("failed to decode OpenAlex response", err)
		}
		return nil
	})

	return err
}

// NewDefaultPool builds the HTTP pool the client normally runs on
func NewDefaultPool(logger *slog.Logger) *resilience.HTTPPool {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	})
	return resilience.NewHTTPPool(10, 15*time.Second, cb, logger)
}
