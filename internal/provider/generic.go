package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GenericHTTP 兜底 adapter：对未建模的厂家按设备配置裸发 HTTP 请求。
// 始终启用（没有 feature flag），registry 对未知厂家降级到这里。
type GenericHTTP struct {
	timeout time.Duration
	logger  *zap.Logger
}

type genericAuthConfig struct {
	Type     string `json:"type"` // bearer | apikey | basic
	Token    string `json:"token"`
	Key      string `json:"key"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type genericDeviceConfig struct {
	BaseURL        string            `json:"baseUrl"`
	Method         string            `json:"method"`
	Endpoint       string            `json:"endpoint"`
	StatusEndpoint string            `json:"statusEndpoint"`
	Headers        map[string]string `json:"headers"`
	Auth           genericAuthConfig `json:"auth"`
	Body           map[string]any    `json:"body"`
	TimeoutMillis  int               `json:"timeoutMs"`
	DeviceID       string            `json:"deviceId"`
}

func NewGenericHTTP(cfg config.GenericConfig, logger *zap.Logger) *GenericHTTP {
	logger.Info("Generic HTTP provider enabled")
	return &GenericHTTP{timeout: cfg.Timeout, logger: logger}
}

func (p *GenericHTTP) Name() string  { return "GENERIC" }
func (p *GenericHTTP) Enabled() bool { return true }

func (p *GenericHTTP) Open(ctx context.Context, device *domain.Device) domain.CommandResult {
	var cfg genericDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationOpen,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	if cfg.BaseURL == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"device has no baseUrl configured", domain.ErrCodeVendorError)
	}
	target := externalID(device, cfg.DeviceID)

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("/device/%s/action", target)
	}
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = "POST"
	}
	body := cfg.Body
	if body == nil {
		body = map[string]any{"action": "unlock"}
	}

	p.logger.Info("Executing generic HTTP action",
		zap.String("device_id", device.DeviceID),
		zap.String("method", method),
		zap.String("endpoint", endpoint),
	)

	req := p.client(cfg).R().SetContext(ctx)
	if method != "GET" {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return classifyNetworkError(domain.OperationOpen, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationOpen,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationOpen, "HTTP action executed successfully", map[string]any{
		"status":   resp.StatusCode(),
		"provider": p.Name(),
	})
}

func (p *GenericHTTP) Status(ctx context.Context, device *domain.Device) domain.CommandResult {
	var cfg genericDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationStatus,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	if cfg.BaseURL == "" {
		return domain.NewFailureResult(domain.OperationStatus,
			"device has no baseUrl configured", domain.ErrCodeVendorError)
	}
	target := externalID(device, cfg.DeviceID)

	endpoint := cfg.StatusEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("/device/%s/status", target)
	}

	var state map[string]any
	resp, err := p.client(cfg).R().
		SetContext(ctx).
		SetResult(&state).
		Get(endpoint)
	if err != nil {
		return classifyNetworkError(domain.OperationStatus, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationStatus,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationStatus, "Device status retrieved", state)
}

// client builds a per-call resty client from the device's own config: base
// URL, headers and auth scheme are entirely device-driven here.
func (p *GenericHTTP) client(cfg genericDeviceConfig) *resty.Client {
	timeout := p.timeout
	if cfg.TimeoutMillis > 0 {
		timeout = time.Duration(cfg.TimeoutMillis) * time.Millisecond
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		client.SetHeader(k, v)
	}

	switch cfg.Auth.Type {
	case "bearer":
		if cfg.Auth.Token != "" {
			client.SetAuthToken(cfg.Auth.Token)
		}
	case "apikey":
		if cfg.Auth.Key != "" {
			client.SetHeader("X-API-Key", cfg.Auth.Key)
		}
	case "basic":
		client.SetBasicAuth(cfg.Auth.Username, cfg.Auth.Password)
	}
	return client
}
