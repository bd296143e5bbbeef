package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DevicesRepo loads device records. The core never writes devices; they are
// provisioned externally.
type DevicesRepo interface {
	FindByID(ctx context.Context, deviceID string) (*domain.Device, error)

	// FindBoundToUnit enforces the guest binding in one lookup: the device
	// must be active, belong to the unit with the given slug, and the unit
	// must be published. Any violation is ErrNotFound.
	FindBoundToUnit(ctx context.Context, deviceID, slug string) (*domain.Device, *domain.Unit, error)
}

// UnitsRepo resolves units by their public slug.
type UnitsRepo interface {
	FindBySlug(ctx context.Context, slug string) (*domain.Unit, error)
}

// CredentialsRepo validates and consumes one-time access credentials.
// Claim/Unclaim are the only mutations the core performs on credentials.
type CredentialsRepo interface {
	// FindValid returns an unrevoked credential for the device whose window
	// contains now (bounds inclusive) and whose token matches.
	FindValid(ctx context.Context, deviceID, token string, now time.Time) (*domain.AccessCredential, error)

	// Claim atomically sets revoked=true and reports whether this caller won
	// the claim. A false return means another request consumed the
	// credential first.
	Claim(ctx context.Context, credentialID string) (bool, error)

	// Unclaim restores revoked=false after a failed dispatch so the holder
	// can retry with the same token.
	Unclaim(ctx context.Context, credentialID string) error
}

// AccessLogFilter narrows access-log listings for the staff API.
type AccessLogFilter struct {
	UnitID   string
	DeviceID string
	Limit    int
}

// AccessLogsRepo appends and lists immutable audit records.
type AccessLogsRepo interface {
	Insert(ctx context.Context, entry *domain.AccessLogEntry) error
	List(ctx context.Context, filter AccessLogFilter) ([]domain.AccessLogEntry, error)
}
