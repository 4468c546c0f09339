package ranking

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vitapstudent/faculty-hub/internal/database"
	"github.com/vitapstudent/faculty-hub/internal/monitoring"
)

// Lister provides the faculty rows that get ranked
type Lister interface {
	ListFaculty(department string) ([]database.Faculty, error)
}

type cachedRanking struct {
	entries   []Entry
	expiresAt time.Time
}

// Service computes rankings over the faculty table with a short cache,
// since every visitor hits the same handful of category and department
// combinations.
type Service struct {
	store  Lister
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]cachedRanking
	ttl   time.Duration
}

// NewService creates a ranking service with the given cache TTL
func NewService(store Lister, logger *slog.Logger, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		logger: logger,
		cache:  make(map[string]cachedRanking),
		ttl:    ttl,
	}
}

// Rankings returns the ranked faculty for a category, optionally
// filtered to departments matching the given substring.
func (s *Service) Rankings(department, category string, method Method) ([]Entry, error) {
	key := fmt.Sprintf("%s|%s|%s", department, category, method)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		return cached.entries, nil
	}

	faculty, err := s.store.ListFaculty(department)
	if err != nil {
		return nil, fmt.Errorf("failed to list faculty for ranking: %w", err)
	}

	entries := Rank(faculty, category, method)
	monitoring.CountRankingComputation()

	s.mu.Lock()
	s.cache[key] = cachedRanking{entries: entries, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	s.logger.Debug("computed rankings",
		"category", category,
		"method", string(method),
		"department", department,
		"count", len(entries))
	return entries, nil
}

// Invalidate drops every cached ranking. Called after a rating lands so
// fresh scores show up without waiting out the TTL.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]cachedRanking)
	s.mu.Unlock()
}
