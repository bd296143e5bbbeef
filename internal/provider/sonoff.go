package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Sonoff WiFi 开关 adapter（eWeLink Cloud / iHost 本地网关两种模式）。
// LAN 直连需要 mDNS 发现，不在本系统范围内。
type Sonoff struct {
	enabled    bool
	cloud      *resty.Client
	authToken  string
	ihostIP    string
	ihostToken string
	timeout    time.Duration
	logger     *zap.Logger
}

type sonoffDeviceConfig struct {
	Mode      string `json:"mode"` // "cloud" (default), "ihost", "lan"
	DeviceID  string `json:"deviceId"`
	AuthToken string `json:"authToken"`
	IHostIP   string `json:"ihostIp"`
}

func NewSonoff(cfg config.SonoffConfig, logger *zap.Logger) *Sonoff {
	p := &Sonoff{
		authToken:  cfg.AuthToken,
		ihostIP:    cfg.IHostIP,
		ihostToken: cfg.IHostToken,
		timeout:    cfg.Timeout,
		logger:     logger,
	}

	if !cfg.Enabled {
		logger.Warn("Sonoff provider disabled (IOT_SONOFF_ENABLED != true)")
		return p
	}

	p.cloud = resty.New().
		SetBaseURL(cfg.CloudURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	p.enabled = true
	logger.Info("Sonoff provider enabled")
	return p
}

func (p *Sonoff) Name() string  { return "SONOFF" }
func (p *Sonoff) Enabled() bool { return p.enabled }

func (p *Sonoff) Open(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationOpen, "Sonoff")
	}

	var cfg sonoffDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationOpen,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	target := externalID(device, cfg.DeviceID)
	if target == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"device has no target address configured", domain.ErrCodeVendorError)
	}

	p.logger.Info("Activating Sonoff switch",
		zap.String("device_id", device.DeviceID),
		zap.String("target", target),
		zap.String("mode", cfg.Mode),
	)

	switch cfg.Mode {
	case "ihost":
		return p.turnOniHost(ctx, target, cfg)
	case "lan":
		return domain.NewFailureResult(domain.OperationOpen,
			"Sonoff LAN mode requires local discovery and is not supported", domain.ErrCodeUnsupportedOperation)
	default:
		return p.turnOnCloud(ctx, target, cfg)
	}
}

func (p *Sonoff) turnOnCloud(ctx context.Context, deviceID string, cfg sonoffDeviceConfig) domain.CommandResult {
	token := cfg.AuthToken
	if token == "" {
		token = p.authToken
	}
	if token == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"Sonoff auth token not configured", domain.ErrCodeVendorError)
	}

	var out struct {
		Error int    `json:"error"`
		Msg   string `json:"msg"`
	}
	resp, err := p.cloud.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"type":   1,
			"id":     deviceID,
			"params": map[string]any{"switch": "on"},
		}).
		SetResult(&out).
		Post("/v2/device/thing/status")
	if err != nil {
		return classifyNetworkError(domain.OperationOpen, err)
	}
	if !resp.IsSuccess() || out.Error != 0 {
		msg := out.Msg
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode())
		}
		return domain.NewFailureResult(domain.OperationOpen, msg, domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationOpen, "Switch activated successfully", map[string]any{
		"provider": p.Name(),
		"mode":     "cloud",
	})
}

func (p *Sonoff) turnOniHost(ctx context.Context, deviceID string, cfg sonoffDeviceConfig) domain.CommandResult {
	ihostIP := cfg.IHostIP
	if ihostIP == "" {
		ihostIP = p.ihostIP
	}
	if ihostIP == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"Sonoff iHost address not configured", domain.ErrCodeVendorError)
	}
	token := cfg.AuthToken
	if token == "" {
		token = p.ihostToken
	}

	client := resty.New().SetTimeout(p.timeout)
	resp, err := client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"action": "switch",
			"params": map[string]any{"switch": "on"},
		}).
		Post(fmt.Sprintf("http://%s/api/v1/devices/%s/action", ihostIP, deviceID))
	if err != nil {
		return classifyNetworkError(domain.OperationOpen, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationOpen,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationOpen, "Switch activated successfully", map[string]any{
		"provider": p.Name(),
		"mode":     "ihost",
	})
}

func (p *Sonoff) Status(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationStatus, "Sonoff")
	}

	var cfg sonoffDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationStatus,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	target := externalID(device, cfg.DeviceID)
	token := cfg.AuthToken
	if token == "" {
		token = p.authToken
	}

	var out struct {
		Error int            `json:"error"`
		Msg   string         `json:"msg"`
		Data  map[string]any `json:"data"`
	}
	resp, err := p.cloud.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("id", target).
		SetResult(&out).
		Get("/v2/device/thing")
	if err != nil {
		return classifyNetworkError(domain.OperationStatus, err)
	}
	if !resp.IsSuccess() || out.Error != 0 {
		msg := out.Msg
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode())
		}
		return domain.NewFailureResult(domain.OperationStatus, msg, domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationStatus, "Device status retrieved", out.Data)
}
