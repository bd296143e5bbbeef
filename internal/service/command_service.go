package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/audit"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/provider"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/repository"

	"go.uber.org/zap"
)

// CommandService 设备命令编排服务：解析 adapter 并下发命令（员工侧入口）
type CommandService interface {
	// OpenByDeviceID loads the device and dispatches an open. Unknown device
	// is ErrNotFound; everything vendor-side lands in the CommandResult.
	OpenByDeviceID(ctx context.Context, deviceID, sourceIP string) (domain.CommandResult, error)

	// Open dispatches for a caller that already holds the device record and
	// has done its own authorization. It does not write audit entries.
	Open(ctx context.Context, device *domain.Device) domain.CommandResult

	Status(ctx context.Context, deviceID string) (domain.CommandResult, error)
	GenerateAccessCode(ctx context.Context, deviceID string, validFrom, validTo time.Time) (domain.CommandResult, error)
}

type commandService struct {
	devices  repository.DevicesRepo
	registry *provider.Registry
	audit    *audit.Recorder
	logger   *zap.Logger
}

func NewCommandService(devices repository.DevicesRepo, registry *provider.Registry, recorder *audit.Recorder, logger *zap.Logger) CommandService {
	return &commandService{
		devices:  devices,
		registry: registry,
		audit:    recorder,
		logger:   logger,
	}
}

func (s *commandService) OpenByDeviceID(ctx context.Context, deviceID, sourceIP string) (domain.CommandResult, error) {
	device, err := s.loadDevice(ctx, deviceID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if !device.Active {
		return domain.NewFailureResult(domain.OperationOpen,
			"device is deactivated", domain.ErrCodeDeviceInactive), nil
	}

	result := s.Open(ctx, device)
	s.recordAttempt(ctx, device, result, sourceIP)
	return result, nil
}

func (s *commandService) Open(ctx context.Context, device *domain.Device) domain.CommandResult {
	p, err := s.registry.Resolve(device.Provider)
	if err != nil {
		return domain.NewFailureResult(domain.OperationOpen,
			err.Error(), domain.ErrCodeProviderDisabled)
	}

	s.logger.Info("Dispatching open command",
		zap.String("device_id", device.DeviceID),
		zap.String("provider", p.Name()),
	)
	return p.Open(ctx, device)
}

func (s *commandService) Status(ctx context.Context, deviceID string) (domain.CommandResult, error) {
	device, err := s.loadDevice(ctx, deviceID)
	if err != nil {
		return domain.CommandResult{}, err
	}

	p, err := s.registry.Resolve(device.Provider)
	if err != nil {
		return domain.NewFailureResult(domain.OperationStatus,
			err.Error(), domain.ErrCodeProviderDisabled), nil
	}
	querier, ok := p.(provider.StatusQuerier)
	if !ok {
		return domain.NewFailureResult(domain.OperationStatus,
			fmt.Sprintf("%s does not report device status", p.Name()),
			domain.ErrCodeUnsupportedOperation), nil
	}
	return querier.Status(ctx, device), nil
}

func (s *commandService) GenerateAccessCode(ctx context.Context, deviceID string, validFrom, validTo time.Time) (domain.CommandResult, error) {
	device, err := s.loadDevice(ctx, deviceID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if !device.Active {
		return domain.NewFailureResult(domain.OperationGenerateCode,
			"device is deactivated", domain.ErrCodeDeviceInactive), nil
	}

	p, err := s.registry.Resolve(device.Provider)
	if err != nil {
		return domain.NewFailureResult(domain.OperationGenerateCode,
			err.Error(), domain.ErrCodeProviderDisabled), nil
	}
	issuer, ok := p.(provider.AccessCodeIssuer)
	if !ok {
		return domain.NewFailureResult(domain.OperationGenerateCode,
			fmt.Sprintf("%s does not support access codes", p.Name()),
			domain.ErrCodeUnsupportedOperation), nil
	}
	return issuer.GenerateAccessCode(ctx, device, validFrom, validTo), nil
}

func (s *commandService) loadDevice(ctx context.Context, deviceID string) (*domain.Device, error) {
	device, err := s.devices.FindByID(ctx, deviceID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("device %s: %w", deviceID, ErrNotFound)
		}
		return nil, fmt.Errorf("load device %s: %w", deviceID, err)
	}
	return device, nil
}

// recordAttempt audits a staff-triggered open. Devices not attached to a unit
// have nothing to key the entry on, so those are only logged.
func (s *commandService) recordAttempt(ctx context.Context, device *domain.Device, result domain.CommandResult, sourceIP string) {
	if !device.UnitID.Valid {
		s.logger.Warn("Skipping audit entry for unit-less device",
			zap.String("device_id", device.DeviceID))
		return
	}

	action := domain.ActionUnlock
	if !result.Success {
		action = domain.ActionUnlockFailed
	}
	s.audit.Record(ctx, &domain.AccessLogEntry{
		UnitID:    device.UnitID.String,
		DeviceID:  device.DeviceID,
		Action:    action,
		Success:   result.Success,
		IPAddress: sourceIP,
		UserAgent: domain.SourceIoTAPI,
	})
}
