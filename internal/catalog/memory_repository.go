package catalog

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu         sync.RWMutex
	categories map[string]Category
	schemes    map[string]Scheme
}

// NewMemoryRepository builds an in-memory catalog, optionally seeded.
func NewMemoryRepository(categories []Category, schemes []Scheme) Repository {
	r := &memoryRepository{
		categories: make(map[string]Category),
		schemes:    make(map[string]Scheme),
	}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	for _, s := range schemes {
		r.schemes[s.ID] = s
	}
	return r
}

func (r *memoryRepository) ListCategories(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) ListSchemes(_ context.Context) ([]Scheme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Scheme, 0, len(r.schemes))
	for _, s := range r.schemes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) UpsertCategory(_ context.Context, c Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.categories[c.ID]; ok {
		c.CreatedAt = existing.CreatedAt
	}
	r.categories[c.ID] = c
	return nil
}

func (r *memoryRepository) UpsertScheme(_ context.Context, s Scheme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.schemes[s.ID]; ok {
		s.CreatedAt = existing.CreatedAt
	}
	r.schemes[s.ID] = s
	return nil
}
