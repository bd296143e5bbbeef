package provider

import (
	"database/sql"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

func testDevice(vendor, externalID, configJSON string) *domain.Device {
	d := &domain.Device{
		DeviceID:   "dev-test-1",
		DeviceName: "Front Door",
		Provider:   vendor,
		Active:     true,
	}
	if externalID != "" {
		d.ExternalDeviceID = sql.NullString{String: externalID, Valid: true}
	}
	if configJSON != "" {
		d.Config = sql.NullString{String: configJSON, Valid: true}
	}
	return d
}
