package domain

import "time"

// AccessCredential 一次性访问凭证（对应 access_credentials 表）
// 由外部签发流程创建；核心只在成功开门后把 revoked 置位一次
type AccessCredential struct {
	CredentialID string    `db:"credential_id"`
	DeviceID     string    `db:"device_id"`
	Token        string    `db:"token"`
	ValidFrom    time.Time `db:"valid_from"`
	ValidTo      time.Time `db:"valid_to"`
	Revoked      bool      `db:"revoked"`
}

// ValidAt reports whether the credential is usable at the given instant.
// Both window bounds are inclusive.
func (c *AccessCredential) ValidAt(now time.Time) bool {
	if c.Revoked {
		return false
	}
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}
