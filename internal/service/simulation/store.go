package simulation

import (
	"sync"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

// Store keeps the most recent frame received from the simulation service.
type Store struct {
	mu     sync.RWMutex
	latest *models.Frame
}

func NewStore() *Store {
	return &Store{}
}

// Put replaces the stored frame unless it is older than the current one of the same run.
func (s *Store) Put(f models.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest != nil && s.latest.SimID == f.SimID && f.Step < s.latest.Step {
		return
	}
	s.latest = &f
}

// Latest returns the stored frame.
func (s *Store) Latest() (*models.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, false
	}
	return s.latest, true
}
