package profile

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository builds an in-memory profile store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) Get(_ context.Context, id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) Upsert(_ context.Context, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}
