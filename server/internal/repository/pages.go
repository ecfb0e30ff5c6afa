package repository

import (
	"sync"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/calculator"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PageStore keeps one calculator controller per open page. Entries expire after
// ttl without use, which is how a closed page releases its controller.
type PageStore struct {
	cache   *cache.Cache
	ttl     time.Duration
	factory func() *calculator.Controller
	mu      sync.Mutex
}

// NewPageStore creates a store that builds controllers with factory.
func NewPageStore(ttl time.Duration, factory func() *calculator.Controller) *PageStore {
	cleanup := ttl / 2
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &PageStore{
		cache:   cache.New(ttl, cleanup),
		ttl:     ttl,
		factory: factory,
	}
}

// Get returns the controller for pageID, creating one (and a new id) when the id
// is empty or unknown. The returned id is the one to remember.
func (s *PageStore) Get(pageID string) (string, *calculator.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pageID != "" {
		if v, ok := s.cache.Get(pageID); ok {
			// Touch to extend the expiry.
			s.cache.Set(pageID, v, cache.DefaultExpiration)
			return pageID, v.(*calculator.Controller)
		}
	}

	id := uuid.New().String()
	ctrl := s.factory()
	s.cache.Set(id, ctrl, cache.DefaultExpiration)
	return id, ctrl
}

// Len returns the number of live pages.
func (s *PageStore) Len() int {
	return s.cache.ItemCount()
}
