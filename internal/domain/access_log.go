package domain

import "time"

// Actions recorded in access logs.
const (
	ActionUnlock       = "unlock"
	ActionUnlockFailed = "unlock_failed"
)

// User-agent tags distinguishing the origin of an access attempt.
const (
	SourcePublicAPI             = "public-api"
	SourcePublicAPIUnauthorized = "public-api-unauthorized"
	SourceIoTAPI                = "iot-api"
)

// AccessLogEntry 不可变审计记录（对应 access_logs 表）
// 每次开门尝试写一条；写入失败只告警，绝不影响主流程
type AccessLogEntry struct {
	LogID     string    `db:"log_id"`
	UnitID    string    `db:"unit_id"`
	DeviceID  string    `db:"device_id"`
	Action    string    `db:"action"`
	Success   bool      `db:"success"`
	IPAddress string    `db:"ip_address"`
	UserAgent string    `db:"user_agent"`
	CreatedAt time.Time `db:"created_at"`
}

func (e *AccessLogEntry) ToJSON() map[string]any {
	return map[string]any{
		"log_id":     e.LogID,
		"unit_id":    e.UnitID,
		"device_id":  e.DeviceID,
		"action":     e.Action,
		"success":    e.Success,
		"ip_address": e.IPAddress,
		"user_agent": e.UserAgent,
		"created_at": e.CreatedAt,
	}
}
