package repository

import (
	"context"
	"sync"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

// MemoryDevicesRepo: 用于 DB 未就绪时的联测和单元测试
// 与 MemoryUnitsRepo 共享 unit 数据实现 binding 查询
type MemoryDevicesRepo struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
	units   *MemoryUnitsRepo
}

func NewMemoryDevicesRepo(units *MemoryUnitsRepo) *MemoryDevicesRepo {
	return &MemoryDevicesRepo{
		devices: map[string]domain.Device{},
		units:   units,
	}
}

func (r *MemoryDevicesRepo) Put(d domain.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.DeviceID] = d
}

func (r *MemoryDevicesRepo) FindByID(_ context.Context, deviceID string) (*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *MemoryDevicesRepo) FindBoundToUnit(ctx context.Context, deviceID, slug string) (*domain.Device, *domain.Unit, error) {
	r.mu.RLock()
	d, ok := r.devices[deviceID]
	r.mu.RUnlock()
	if !ok || !d.Active {
		return nil, nil, ErrNotFound
	}

	u, err := r.units.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !u.Published || !d.UnitID.Valid || d.UnitID.String != u.UnitID {
		return nil, nil, ErrNotFound
	}
	return &d, u, nil
}
