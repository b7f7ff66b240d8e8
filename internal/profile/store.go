package profile

import (
	"sync"

	"storefront/internal/models"
)

// Store publishes the current {user, loading} pair. It starts in the
// loading state until the first auth-state notification settles it.
type Store struct {
	mu      sync.RWMutex
	user    *models.Profile
	loading bool
}

func NewStore() *Store {
	return &Store{loading: true}
}

func (s *Store) Set(p *models.Profile) {
	s.mu.Lock()
	s.user = p
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Current returns the published profile (nil when signed out) and
// whether a sync is still in flight.
func (s *Store) Current() (*models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.loading
}
