package store

import (
	"sort"
	"sync"

	"github.com/virtualtd/league-engine/internal/driver"
)

// MemoryStore keeps a thread-safe snapshot of completed season reports in
// memory for the read API. The SQLite archive is the durable copy; this one
// serves live requests without touching disk.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[int]driver.SeasonReport
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[int]driver.SeasonReport),
	}
}

// PutSeason stores or replaces one season report.
func (s *MemoryStore) PutSeason(report driver.SeasonReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.Season] = report
}

// Season retrieves a season report by number.
func (s *MemoryStore) Season(n int) (driver.SeasonReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[n]
	return r, ok
}

// Latest returns the highest-numbered season report.
func (s *MemoryStore) Latest() (driver.SeasonReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1
	for n := range s.reports {
		if n > best {
			best = n
		}
	}
	if best < 0 {
		return driver.SeasonReport{}, false
	}
	return s.reports[best], true
}

// Seasons returns the stored season numbers in ascending order.
func (s *MemoryStore) Seasons() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]int, 0, len(s.reports))
	for n := range s.reports {
		result = append(result, n)
	}
	sort.Ints(result)
	return result
}
