package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/audit"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/provider"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capableProvider adds status and access-code support on top of the scripted
// open behaviour.
type capableProvider struct {
	scriptedProvider
	statusResult domain.CommandResult
	codeResult   domain.CommandResult
}

func (p *capableProvider) Status(_ context.Context, _ *domain.Device) domain.CommandResult {
	return p.statusResult
}

func (p *capableProvider) GenerateAccessCode(_ context.Context, _ *domain.Device, _, _ time.Time) domain.CommandResult {
	return p.codeResult
}

type disabledProvider struct{ name string }

func (p *disabledProvider) Name() string  { return p.name }
func (p *disabledProvider) Enabled() bool { return false }
func (p *disabledProvider) Open(_ context.Context, _ *domain.Device) domain.CommandResult {
	return domain.NewFailureResult(domain.OperationOpen, "disabled", domain.ErrCodeProviderDisabled)
}

type commandFixture struct {
	devices *repository.MemoryDevicesRepo
	logs    *repository.MemoryAccessLogsRepo
	svc     CommandService
}

func newCommandFixture(t *testing.T, providers ...provider.Provider) *commandFixture {
	t.Helper()
	logger := zap.NewNop()

	units := repository.NewMemoryUnitsRepo()
	units.Put(domain.Unit{UnitID: "unit-1", Slug: "seaside-loft", Published: true})

	f := &commandFixture{
		devices: repository.NewMemoryDevicesRepo(units),
		logs:    repository.NewMemoryAccessLogsRepo(),
	}
	registry := provider.NewRegistry(&scriptedProvider{name: "GENERIC", result: openedOK()}, logger, providers...)
	recorder := audit.NewRecorder(f.logs, nil, logger)
	f.svc = NewCommandService(f.devices, registry, recorder, logger)
	return f
}

func (f *commandFixture) seedDevice(providerName string, active bool) {
	f.devices.Put(domain.Device{
		DeviceID: "dev-1",
		UnitID:   sql.NullString{String: "unit-1", Valid: true},
		Provider: providerName,
		Active:   active,
	})
}

func TestOpenByDeviceID_DispatchesAndAudits(t *testing.T) {
	vendor := &scriptedProvider{name: "RAIXER", result: openedOK()}
	f := newCommandFixture(t, vendor)
	f.seedDevice("RAIXER", true)

	res, err := f.svc.OpenByDeviceID(context.Background(), "dev-1", "10.0.0.5")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, vendor.calls)

	logs, _ := f.logs.List(context.Background(), repository.AccessLogFilter{})
	require.Len(t, logs, 1)
	assert.Equal(t, domain.SourceIoTAPI, logs[0].UserAgent)
	assert.Equal(t, "10.0.0.5", logs[0].IPAddress)
}

func TestOpenByDeviceID_UnknownDevice(t *testing.T) {
	f := newCommandFixture(t, &scriptedProvider{name: "RAIXER", result: openedOK()})

	_, err := f.svc.OpenByDeviceID(context.Background(), "nope", "10.0.0.5")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenByDeviceID_InactiveDevice(t *testing.T) {
	vendor := &scriptedProvider{name: "RAIXER", result: openedOK()}
	f := newCommandFixture(t, vendor)
	f.seedDevice("RAIXER", false)

	res, err := f.svc.OpenByDeviceID(context.Background(), "dev-1", "10.0.0.5")

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeDeviceInactive, res.Error)
	assert.Equal(t, 0, vendor.calls)
}

func TestOpenByDeviceID_DisabledProviderIsStructuredFailure(t *testing.T) {
	f := newCommandFixture(t, &disabledProvider{name: "SHELLY"})
	f.seedDevice("SHELLY", true)

	res, err := f.svc.OpenByDeviceID(context.Background(), "dev-1", "10.0.0.5")

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeProviderDisabled, res.Error)

	// The failed attempt still lands in the audit trail.
	logs, _ := f.logs.List(context.Background(), repository.AccessLogFilter{})
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActionUnlockFailed, logs[0].Action)
}

func TestOpenByDeviceID_UnknownVendorUsesFallback(t *testing.T) {
	f := newCommandFixture(t)
	f.seedDevice("ACME_LOCKS", true)

	res, err := f.svc.OpenByDeviceID(context.Background(), "dev-1", "10.0.0.5")

	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestStatus_CapabilityGated(t *testing.T) {
	capable := &capableProvider{
		scriptedProvider: scriptedProvider{name: "NUKI", result: openedOK()},
		statusResult:     domain.NewSuccessResult(domain.OperationStatus, "Device status retrieved", map[string]any{"state": "locked"}),
	}
	plain := &scriptedProvider{name: "RAIXER", result: openedOK()}
	f := newCommandFixture(t, capable, plain)

	f.seedDevice("NUKI", true)
	res, err := f.svc.Status(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "locked", res.Metadata["state"])

	f.seedDevice("RAIXER", true)
	res, err = f.svc.Status(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeUnsupportedOperation, res.Error)
}

func TestGenerateAccessCode_CapabilityGated(t *testing.T) {
	capable := &capableProvider{
		scriptedProvider: scriptedProvider{name: "NUKI", result: openedOK()},
		codeResult:       domain.NewSuccessResult(domain.OperationGenerateCode, "Access code created", nil),
	}
	f := newCommandFixture(t, capable, &scriptedProvider{name: "RAIXER", result: openedOK()})

	from := time.Now()
	to := from.Add(48 * time.Hour)

	f.seedDevice("NUKI", true)
	res, err := f.svc.GenerateAccessCode(context.Background(), "dev-1", from, to)
	require.NoError(t, err)
	assert.True(t, res.Success)

	f.seedDevice("RAIXER", true)
	res, err = f.svc.GenerateAccessCode(context.Background(), "dev-1", from, to)
	require.NoError(t, err)
	assert.Equal(t, domain.ErrCodeUnsupportedOperation, res.Error)
}
