package domain

import (
	"database/sql"
)

// Device 可控设备领域模型（对应 devices 表）
// Config 为厂家私有配置 JSON（endpoint/channel/entity 等），核心层不解析
type Device struct {
	DeviceID         string         `db:"device_id"`
	UnitID           sql.NullString `db:"unit_id"` // nullable
	DeviceName       string         `db:"device_name"`
	Provider         string         `db:"provider"` // vendor identifier, e.g. RAIXER
	ExternalDeviceID sql.NullString `db:"external_device_id"`
	Config           sql.NullString `db:"config"` // JSONB, vendor-private
	Active           bool           `db:"active"`
}
