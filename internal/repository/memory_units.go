package repository

import (
	"context"
	"sync"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

type MemoryUnitsRepo struct {
	mu    sync.RWMutex
	units map[string]domain.Unit // keyed by slug
}

func NewMemoryUnitsRepo() *MemoryUnitsRepo {
	return &MemoryUnitsRepo{units: map[string]domain.Unit{}}
}

func (r *MemoryUnitsRepo) Put(u domain.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.Slug] = u
}

func (r *MemoryUnitsRepo) FindBySlug(_ context.Context, slug string) (*domain.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.units[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
