// Package provider implements the vendor adapters behind the uniform device
// command contract. Every adapter owns its own HTTP (or MQTT) client and
// recovers all vendor failures into a classified CommandResult; no vendor
// error ever escapes as a Go error to the callers.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

// Provider is the contract every vendor adapter implements.
type Provider interface {
	// Name is the vendor identifier the registry keys on, e.g. "RAIXER".
	Name() string

	// Enabled reports whether the feature flag is set AND the required
	// secrets were present at startup. A disabled adapter is still safe to
	// call; it answers with a PROVIDER_DISABLED result.
	Enabled() bool

	Open(ctx context.Context, device *domain.Device) domain.CommandResult
}

// Optional capabilities. Callers check for these via the registry's
// capability queries (or a type assertion) before invoking.

type Closer interface {
	Close(ctx context.Context, device *domain.Device) domain.CommandResult
}

type StatusQuerier interface {
	Status(ctx context.Context, device *domain.Device) domain.CommandResult
}

type AccessCodeIssuer interface {
	GenerateAccessCode(ctx context.Context, device *domain.Device, validFrom, validTo time.Time) domain.CommandResult
}

// parseDeviceConfig decodes the vendor-private config blob into the adapter's
// own struct. Missing/empty blobs decode to the zero value.
func parseDeviceConfig(device *domain.Device, out any) error {
	if !device.Config.Valid || device.Config.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(device.Config.String), out)
}

// externalID resolves the vendor-side device identifier: the config blob may
// override the column value.
func externalID(device *domain.Device, fromConfig string) string {
	if fromConfig != "" {
		return fromConfig
	}
	if device.ExternalDeviceID.Valid {
		return device.ExternalDeviceID.String
	}
	return ""
}

func disabledResult(op domain.Operation, vendor string) domain.CommandResult {
	return domain.NewFailureResult(op, vendor+" provider is not enabled", domain.ErrCodeProviderDisabled)
}

// classifyNetworkError converts a transport failure into a classified result.
// Timeouts (context deadline or client-side) become TIMEOUT, everything else
// VENDOR_ERROR.
func classifyNetworkError(op domain.Operation, err error) domain.CommandResult {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.NewFailureResult(op, "vendor call timed out", domain.ErrCodeTimeout)
	}
	return domain.NewFailureResult(op, err.Error(), domain.ErrCodeVendorError)
}
