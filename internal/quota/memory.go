package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	usages map[string]Usage
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{usages: make(map[string]Usage)}
}

func usageKey(userID, resource string) string {
	return userID + ":" + resource
}

// Usage implements Store.
func (s *MemoryStore) Usage(ctx context.Context, userID, resource string) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usages[usageKey(userID, resource)], nil
}

// Apply implements Store.
func (s *MemoryStore) Apply(ctx context.Context, userID, resource string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := usageKey(userID, resource)
	usage := s.usages[key]
	next := usage.Count + amount
	if next < 0 {
		return usage.Count, ErrNegativeQuota
	}
	usage.Count = next
	s.usages[key] = usage
	return next, nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(ctx context.Context, userID, resource string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := usageKey(userID, resource)
	usage := s.usages[key]
	usage.Count = 0
	usage.ResetAt = at
	s.usages[key] = usage
	return nil
}
