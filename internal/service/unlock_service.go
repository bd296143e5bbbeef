package service

import (
	"context"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/audit"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/repository"

	"go.uber.org/zap"
)

// UnlockService 访客开门网关：凭证校验 → 绑定校验 → 占用 → 下发 → 审计
type UnlockService interface {
	Unlock(ctx context.Context, req UnlockRequest) (*UnlockResponse, error)
}

// UnlockRequest 公开开门请求
type UnlockRequest struct {
	Slug     string // unit 的公开标识
	DeviceID string
	Token    string // 一次性凭证
	IP       string
}

// UnlockResponse 开门成功响应
type UnlockResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	DeviceID  string         `json:"deviceId"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type unlockService struct {
	units       repository.UnitsRepo
	devices     repository.DevicesRepo
	credentials repository.CredentialsRepo
	commands    CommandService
	audit       *audit.Recorder
	logger      *zap.Logger

	now func() time.Time // injected in tests
}

func NewUnlockService(
	units repository.UnitsRepo,
	devices repository.DevicesRepo,
	credentials repository.CredentialsRepo,
	commands CommandService,
	recorder *audit.Recorder,
	logger *zap.Logger,
) UnlockService {
	return &unlockService{
		units:       units,
		devices:     devices,
		credentials: credentials,
		commands:    commands,
		audit:       recorder,
		logger:      logger,
		now:         time.Now,
	}
}

// Unlock runs the full guest unlock pipeline. The credential is claimed
// BEFORE dispatch so two concurrent requests with the same token can never
// both actuate the lock; a failed dispatch unclaims it so the holder keeps a
// usable token.
func (s *unlockService) Unlock(ctx context.Context, req UnlockRequest) (*UnlockResponse, error) {
	now := s.now()

	cred, err := s.credentials.FindValid(ctx, req.DeviceID, req.Token, now)
	if err != nil {
		if err == repository.ErrNotFound {
			s.logger.Warn("Unlock rejected: no valid credential",
				zap.String("slug", req.Slug),
				zap.String("device_id", req.DeviceID),
				zap.String("ip", req.IP),
			)
			s.recordUnauthorized(ctx, req)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	device, unit, err := s.devices.FindBoundToUnit(ctx, req.DeviceID, req.Slug)
	if err != nil {
		if err == repository.ErrNotFound {
			// A valid token for a device outside this unit is a routing
			// mistake, not an intruder; answer 404, keep the token.
			s.logger.Warn("Unlock rejected: device not bound to unit",
				zap.String("slug", req.Slug),
				zap.String("device_id", req.DeviceID),
			)
			return nil, ErrNotFound
		}
		return nil, err
	}

	claimed, err := s.credentials.Claim(ctx, cred.CredentialID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.logger.Warn("Unlock rejected: credential already claimed",
			zap.String("credential_id", cred.CredentialID),
			zap.String("device_id", device.DeviceID),
		)
		s.recordUnauthorized(ctx, req)
		return nil, ErrUnauthorized
	}

	result := s.commands.Open(ctx, device)
	if !result.Success {
		if uerr := s.credentials.Unclaim(ctx, cred.CredentialID); uerr != nil {
			s.logger.Error("Failed to restore credential after failed dispatch",
				zap.String("credential_id", cred.CredentialID),
				zap.Error(uerr),
			)
		}
		s.audit.Record(ctx, &domain.AccessLogEntry{
			UnitID:    unit.UnitID,
			DeviceID:  device.DeviceID,
			Action:    domain.ActionUnlockFailed,
			Success:   false,
			IPAddress: req.IP,
			UserAgent: domain.SourcePublicAPI,
		})
		return nil, &DispatchError{Result: result}
	}

	s.audit.Record(ctx, &domain.AccessLogEntry{
		UnitID:    unit.UnitID,
		DeviceID:  device.DeviceID,
		Action:    domain.ActionUnlock,
		Success:   true,
		IPAddress: req.IP,
		UserAgent: domain.SourcePublicAPI,
	})

	return &UnlockResponse{
		Success:   true,
		Message:   result.Message,
		DeviceID:  device.DeviceID,
		Timestamp: result.Timestamp,
		Metadata:  result.Metadata,
	}, nil
}

// recordUnauthorized audits a rejected attempt when the slug resolves to a
// real unit. Resolution failures only warn; rejection never depends on them.
func (s *unlockService) recordUnauthorized(ctx context.Context, req UnlockRequest) {
	unit, err := s.units.FindBySlug(ctx, req.Slug)
	if err != nil {
		if err != repository.ErrNotFound {
			s.logger.Warn("Could not resolve unit for unauthorized attempt",
				zap.String("slug", req.Slug), zap.Error(err))
		}
		return
	}
	s.audit.Record(ctx, &domain.AccessLogEntry{
		UnitID:    unit.UnitID,
		DeviceID:  req.DeviceID,
		Action:    domain.ActionUnlockFailed,
		Success:   false,
		IPAddress: req.IP,
		UserAgent: domain.SourcePublicAPIUnauthorized,
	})
}
