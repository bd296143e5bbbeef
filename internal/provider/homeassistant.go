package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// HomeAssistant 家庭自动化网关 adapter（Home Assistant REST API）。
// 按 entity 的 domain 选择 service：lock→unlock，switch→turn_on，cover→open_cover。
type HomeAssistant struct {
	enabled bool
	http    *resty.Client
	logger  *zap.Logger
}

type haDeviceConfig struct {
	EntityID string `json:"entityId"`
	Action   string `json:"action"` // service override for unusual entity domains
}

func NewHomeAssistant(cfg config.HomeAssistantConfig, logger *zap.Logger) *HomeAssistant {
	p := &HomeAssistant{logger: logger}

	if !cfg.Enabled {
		logger.Warn("Home Assistant provider disabled (IOT_HA_ENABLED != true)")
		return p
	}
	if cfg.AccessToken == "" {
		logger.Error("Home Assistant enabled but IOT_HA_ACCESS_TOKEN missing, starting disabled")
		return p
	}

	p.http = resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/") + "/api").
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.AccessToken)
	p.enabled = true
	logger.Info("Home Assistant provider enabled", zap.String("url", cfg.URL))
	return p
}

func (p *HomeAssistant) Name() string  { return "HOME_ASSISTANT" }
func (p *HomeAssistant) Enabled() bool { return p.enabled }

func (p *HomeAssistant) Open(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationOpen, "Home Assistant")
	}

	var cfg haDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationOpen,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	entity := externalID(device, cfg.EntityID)
	if entity == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"device has no entity id configured", domain.ErrCodeVendorError)
	}

	entityDomain, service := serviceForEntity(entity, cfg.Action)

	p.logger.Info("Calling Home Assistant service",
		zap.String("device_id", device.DeviceID),
		zap.String("entity_id", entity),
		zap.String("service", service),
	)

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"entity_id": entity}).
		Post(fmt.Sprintf("/services/%s/%s", entityDomain, service))
	if err != nil {
		return classifyNetworkError(domain.OperationOpen, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationOpen,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationOpen, "Device activated successfully", map[string]any{
		"entityId": entity,
		"service":  service,
		"provider": p.Name(),
	})
}

func (p *HomeAssistant) Status(ctx context.Context, device *domain.Device) domain.CommandResult {
	if !p.enabled {
		return disabledResult(domain.OperationStatus, "Home Assistant")
	}

	var cfg haDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationStatus,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	entity := externalID(device, cfg.EntityID)

	var state map[string]any
	resp, err := p.http.R().
		SetContext(ctx).
		SetResult(&state).
		Get("/states/" + entity)
	if err != nil {
		return classifyNetworkError(domain.OperationStatus, err)
	}
	if !resp.IsSuccess() {
		return domain.NewFailureResult(domain.OperationStatus,
			fmt.Sprintf("HTTP %d", resp.StatusCode()), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationStatus, "Device status retrieved", state)
}

// serviceForEntity maps the entity domain to the HA service that opens it.
func serviceForEntity(entityID, override string) (entityDomain, service string) {
	entityDomain = "switch"
	if i := strings.IndexByte(entityID, '.'); i > 0 {
		entityDomain = entityID[:i]
	}
	switch entityDomain {
	case "lock":
		service = "unlock"
	case "switch":
		service = "turn_on"
	case "cover":
		service = "open_cover"
	default:
		service = "turn_on"
		if override != "" {
			service = override
		}
	}
	return entityDomain, service
}
