package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Nuki 云端智能锁 adapter（Nuki Web API）。
// 唯一支持远程发码的厂家：GenerateAccessCode 创建限时 keypad 授权。
type Nuki struct {
	enabled bool
	http    *resty.Client
	logger  *zap.Logger
}

// Nuki smartlock actions.
const (
	nukiActionUnlock = 1
	nukiActionLock   = 2
)

// nukiAuthTypeKeypad is the authorization type for keypad codes.
const nukiAuthTypeKeypad = 13

type nukiDeviceConfig struct {
	SmartlockID string `json:"smartlockId"`
	Action      int    `json:"action"` // open action override (e.g. 3 = unlatch)
}

func NewNuki(cfg config.NukiConfig, logger *zap.Logger) *Nuki {
	p := &Nuki{logger: logger}

	if !cfg.Enabled {
		logger.Warn("Nuki provider disabled (IOT_NUKI_ENABLED != true)")
		return p
	}
	if cfg.APIToken == "" {
		logger.Error("Nuki enabled but IOT_NUKI_API_TOKEN missing, starting disabled")
		return p
	}

	p.http = resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIToken)
	p.enabled = true
	logger.Info("Nuki provider enabled")
	return p
}

func (p *Nuki) Name() string  { return "NUKI" }
func (p *Nuki) Enabled() bool { return p.enabled }

func (p *Nuki) Open(ctx context.Context, device *domain.Device) domain.CommandResult {
	return p.action(ctx, device, domain.OperationOpen, nukiActionUnlock, "Lock unlocked successfully")
}

func (p *Nuki) Close(ctx context.Context, device *domain.Device) domain.CommandResult {
	return p.action(ctx, device, domain.OperationClose, nukiActionLock, "Lock locked successfully")
}

func (p *Nuki) action(ctx context.Context, device *domain.Device, op domain.Operation, action int, okMessage string) domain.CommandResult {
	if !p.enabled {
		return disabledResult(op, "Nuki")
	}

	var cfg nukiDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(op, "invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	smartlockID := externalID(device, cfg.SmartlockID)
	if smartlockID == "" {
		return domain.NewFailureResult(op, "device has no smartlock id configured", domain.ErrCodeVendorError)
	}
	if op == domain.OperationOpen && cfg.Action != 0 {
		action = cfg.Action
	}

	p.logger.Info("Sending Nuki smartlock action",
		zap.String("device_id", device.DeviceID),
		zap.String("smartlock_id", smartlockID),
		zap.Int("action", action),
	)

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"action": action}).
		Post(fmt.Sprintf("/smartlock/%s/action", url.PathEscape(smartlockID)))
	if err != nil {
		return classifyNetworkError(op, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(op, fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(op, okMessage, map[string]any{
		"smartlockId": smartlockID,
		"provider":    p.Name(),
	})
}

func (p *Nuki) Status(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationStatus, "Nuki")
	}

	var cfg nukiDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationStatus,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	smartlockID := externalID(device, cfg.SmartlockID)

	var state map[string]any
	resp, err := p.http.R().
		SetContext(ctx).
		SetResult(&state).
		Get("/smartlock/" + url.PathEscape(smartlockID))
	if err != nil {
		return classifyNetworkError(domain.OperationStatus, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationStatus,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationStatus, "Lock status retrieved", state)
}

// GenerateAccessCode creates a time-boxed keypad authorization on the lock.
func (p *Nuki) GenerateAccessCode(ctx context.Context, device *domain.Device, validFrom, validTo time.Time) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationGenerateCode, "Nuki")
	}

	var cfg nukiDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationGenerateCode,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	smartlockID := externalID(device, cfg.SmartlockID)
	if smartlockID == "" {
		return domain.NewFailureResult(domain.OperationGenerateCode,
			"device has no smartlock id configured", domain.ErrCodeVendorError)
	}

	var out map[string]any
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"name":             fmt.Sprintf("smartstay-%d", validFrom.Unix()),
			"type":             nukiAuthTypeKeypad,
			"allowedFromDate":  validFrom.UTC().Format(time.RFC3339),
			"allowedUntilDate": validTo.UTC().Format(time.RFC3339),
		}).
		SetResult(&out).
		Put(fmt.Sprintf("/smartlock/%s/auth", url.PathEscape(smartlockID)))
	if err != nil {
		return classifyNetworkError(domain.OperationGenerateCode, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationGenerateCode,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationGenerateCode, "Access code created", out)
}
