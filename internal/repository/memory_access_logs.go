package repository

import (
	"context"
	"sync"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

type MemoryAccessLogsRepo struct {
	mu      sync.RWMutex
	entries []domain.AccessLogEntry
}

func NewMemoryAccessLogsRepo() *MemoryAccessLogsRepo {
	return &MemoryAccessLogsRepo{}
}

func (r *MemoryAccessLogsRepo) Insert(_ context.Context, entry *domain.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *MemoryAccessLogsRepo) List(_ context.Context, filter AccessLogFilter) ([]domain.AccessLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}

	// newest first
	var out []domain.AccessLogEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if filter.UnitID != "" && e.UnitID != filter.UnitID {
			continue
		}
		if filter.DeviceID != "" && e.DeviceID != filter.DeviceID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
