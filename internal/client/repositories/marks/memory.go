package marks

import (
	"context"
	"sync"

	"lifeweeks/internal/common"
	"lifeweeks/internal/snapshot"
)

// MemoryRepository is an in-memory Repository used for tests and as a
// degraded fallback when the durable medium is unavailable. A slice keeps
// insertion order; the mutex guards concurrent test access.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []snapshot.Mark
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) CreateOrUpdate(_ context.Context, m *snapshot.Mark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == m.ID {
			r.items[i] = *m
			return nil
		}
	}
	r.items = append(r.items, *m)
	return nil
}

func (r *MemoryRepository) GetAll(_ context.Context) ([]snapshot.Mark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]snapshot.Mark, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*snapshot.Mark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.items {
		if r.items[i].ID == id {
			m := r.items[i]
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	return nil
}

func (r *MemoryRepository) ReplaceAll(_ context.Context, ms []snapshot.Mark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make([]snapshot.Mark, len(ms))
	copy(r.items, ms)
	return nil
}
