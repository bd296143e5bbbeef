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

// Shelly 继电器 adapter（Shelly 1/1PM/2.5 等）。
// local 模式直连设备 IP，cloud 模式走 Shelly Cloud API。
type Shelly struct {
	enabled bool
	cloud   *resty.Client
	timeout time.Duration
	logger  *zap.Logger
}

// shellyDeviceConfig 设备配置 blob（adapter 私有）
type shellyDeviceConfig struct {
	Mode     string `json:"mode"` // "local" (default) or "cloud"
	DeviceID string `json:"deviceId"`
	Channel  int    `json:"channel"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewShelly(cfg config.ShellyConfig, logger *zap.Logger) *Shelly {
	p := &Shelly{timeout: cfg.Timeout, logger: logger}

	if !cfg.Enabled {
		logger.Warn("Shelly provider disabled (IOT_SHELLY_ENABLED != true)")
		return p
	}

	p.cloud = resty.New().
		SetBaseURL(cfg.CloudURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		p.cloud.SetAuthToken(cfg.APIKey)
	}
	p.enabled = true
	logger.Info("Shelly provider enabled")
	return p
}

func (p *Shelly) Name() string  { return "SHELLY" }
func (p *Shelly) Enabled() bool { return p.enabled }

func (p *Shelly) Open(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationOpen, "Shelly")
	}

	var cfg shellyDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationOpen,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	target := externalID(device, cfg.DeviceID)
	if target == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"device has no target address configured", domain.ErrCodeVendorError)
	}

	p.logger.Info("Activating Shelly relay",
		zap.String("device_id", device.DeviceID),
		zap.String("target", target),
		zap.String("mode", cfg.Mode),
		zap.Int("channel", cfg.Channel),
	)

	var on bool
	var err error
	if cfg.Mode == "cloud" {
		on, err = p.turnOnCloud(ctx, target, cfg.Channel)
	} else {
		on, err = p.turnOnLocal(ctx, target, cfg)
	}
	if err != nil {
		return p.classify(domain.OperationOpen, err)
	}
	if !on {
		return domain.NewFailureResult(domain.OperationOpen,
			"relay did not report on state", domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationOpen, "Relay activated successfully", map[string]any{
		"channel":  cfg.Channel,
		"provider": p.Name(),
	})
}

func (p *Shelly) turnOnLocal(ctx context.Context, ip string, cfg shellyDeviceConfig) (bool, error) {
	client := resty.New().SetTimeout(p.timeout)
	if cfg.Username != "" && cfg.Password != "" {
		client.SetBasicAuth(cfg.Username, cfg.Password)
	}

	var out struct {
		IsOn bool `json:"ison"`
	}
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("http://%s/relay/%d?turn=on", ip, cfg.Channel))
	if err != nil {
		return false, err
	}
	if !resp.IsSuccess() {
		return false, fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	return out.IsOn || resp.StatusCode() == 200, nil
}

func (p *Shelly) turnOnCloud(ctx context.Context, deviceID string, channel int) (bool, error) {
	var out struct {
		IsOK bool `json:"isok"`
	}
	resp, err := p.cloud.R().
		SetContext(ctx).
		SetBody(map[string]any{"id": deviceID, "channel": channel, "turn": "on"}).
		SetResult(&out).
		Post("/device/relay/control")
	if err != nil {
		return false, err
	}
	if !resp.IsSuccess() {
		return false, fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	return out.IsOK || resp.StatusCode() == 200, nil
}

func (p *Shelly) Status(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationStatus, "Shelly")
	}

	var cfg shellyDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationStatus,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	target := externalID(device, cfg.DeviceID)

	var state map[string]any
	var resp *resty.Response
	var err error
	if cfg.Mode == "cloud" {
		resp, err = p.cloud.R().
			SetContext(ctx).
			SetQueryParam("id", target).
			SetResult(&state).
			Get("/device/status")
	} else {
		resp, err = resty.New().SetTimeout(p.timeout).R().
			SetContext(ctx).
			SetResult(&state).
			Get(fmt.Sprintf("http://%s/status", target))
	}
	if err != nil {
		return p.classify(domain.OperationStatus, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationStatus,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationStatus, "Device status retrieved", state)
}

func (p *Shelly) classify(op domain.Operation, err error) domain.CommandResult {
	return classifyNetworkError(op, err)
}
