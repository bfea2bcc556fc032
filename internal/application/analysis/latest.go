package analysis

import (
	"sync"

	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
)

// LatestStore holds the most recent successful analysis for the dashboard.
// Log and analysis are always replaced together; concurrent writers resolve
// as last write wins.
type LatestStore struct {
	mu     sync.RWMutex
	result *domain.Result
}

// NewLatestStore returns an empty store.
func NewLatestStore() *LatestStore {
	return &LatestStore{}
}

// Set replaces the stored pair.
func (s *LatestStore) Set(r domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &r
}

// Get returns a copy of the stored result and whether one exists.
func (s *LatestStore) Get() (domain.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}
