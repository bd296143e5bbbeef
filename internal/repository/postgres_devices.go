package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

type PostgresDevicesRepo struct {
	db *sql.DB
}

func NewPostgresDevicesRepo(db *sql.DB) *PostgresDevicesRepo {
	return &PostgresDevicesRepo{db: db}
}

func (r *PostgresDevicesRepo) FindByID(ctx context.Context, deviceID string) (*domain.Device, error) {
	var d domain.Device
	err := r.db.QueryRowContext(ctx,
		`SELECT device_id, unit_id, device_name, provider, external_device_id, config, active
		 FROM devices
		 WHERE device_id = $1`,
		deviceID,
	).Scan(&d.DeviceID, &d.UnitID, &d.DeviceName, &d.Provider, &d.ExternalDeviceID, &d.Config, &d.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query device %s: %w", deviceID, err)
	}
	return &d, nil
}

func (r *PostgresDevicesRepo) FindBoundToUnit(ctx context.Context, deviceID, slug string) (*domain.Device, *domain.Unit, error) {
	var d domain.Device
	var u domain.Unit
	err := r.db.QueryRowContext(ctx,
		`SELECT d.device_id, d.unit_id, d.device_name, d.provider, d.external_device_id, d.config, d.active,
		        u.unit_id, u.slug, u.unit_name, u.published
		 FROM devices d
		 JOIN units u ON u.unit_id = d.unit_id
		 WHERE d.device_id = $1
		   AND d.active = true
		   AND u.slug = $2
		   AND u.published = true`,
		deviceID, slug,
	).Scan(
		&d.DeviceID, &d.UnitID, &d.DeviceName, &d.Provider, &d.ExternalDeviceID, &d.Config, &d.Active,
		&u.UnitID, &u.Slug, &u.UnitName, &u.Published,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to query device binding %s/%s: %w", deviceID, slug, err)
	}
	return &d, &u, nil
}
