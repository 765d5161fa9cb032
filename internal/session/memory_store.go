package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore is the single-instance fallback when Redis is not configured:
// an expirable LRU sized to the expected number of live conversations, so the
// table can never grow without bound.
type MemoryStore struct {
	cache *expirable.LRU[string, State]
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{cache: expirable.NewLRU[string, State](maxEntries, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (State, bool, error) {
	st, ok := s.cache.Get(key)
	return st, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, st State) error {
	s.cache.Add(key, st)
	return nil
}
