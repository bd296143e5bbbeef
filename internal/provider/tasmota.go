package provider

import (
	"context"
	"fmt"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"go.uber.org/zap"
)

// MQTTPublisher is the slice of the MQTT client the adapter needs.
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Tasmota 继电器 adapter：通过 MQTT 下发 cmnd/{topic}/POWER ON。
// 只有配置了 broker 时才启用；QoS 1 由 broker 负责重投，adapter 不重试。
type Tasmota struct {
	publisher MQTTPublisher
	logger    *zap.Logger
}

type tasmotaDeviceConfig struct {
	Topic string `json:"topic"`
	Relay int    `json:"relay"` // 0 = single-relay device
}

// NewTasmota wires the adapter to the shared MQTT client; a nil publisher
// (broker not configured) leaves it disabled.
func NewTasmota(publisher MQTTPublisher, logger *zap.Logger) *Tasmota {
	if publisher == nil {
		logger.Warn("Tasmota provider disabled (MQTT broker not configured)")
	} else {
		logger.Info("Tasmota provider enabled")
	}
	return &Tasmota{publisher: publisher, logger: logger}
}

func (p *Tasmota) Name() string  { return "TASMOTA" }
func (p *Tasmota) Enabled() bool { return p.publisher != nil }

func (p *Tasmota) Open(_ context.Context, device *domain.Device) domain.CommandResult {
	if p.publisher == nil {
		return disabledResult(domain.OperationOpen, "Tasmota")
	}

	var cfg tasmotaDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationOpen,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	topic := externalID(device, cfg.Topic)
	if topic == "" {
		return domain.NewFailureResult(domain.OperationOpen,
			"device has no MQTT topic configured", domain.ErrCodeVendorError)
	}

	command := "POWER"
	if cfg.Relay > 0 {
		command = fmt.Sprintf("POWER%d", cfg.Relay)
	}
	fullTopic := fmt.Sprintf("cmnd/%s/%s", topic, command)

	p.logger.Info("Publishing Tasmota command",
		zap.String("device_id", device.DeviceID),
		zap.String("topic", fullTopic),
	)

	if err := p.publisher.Publish(fullTopic, 1, false, []byte("ON")); err != nil {
		return domain.NewFailureResult(domain.OperationOpen, err.Error(), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationOpen, "Relay command published", map[string]any{
		"topic":    fullTopic,
		"provider": p.Name(),
	})
}

func (p *Tasmota) Close(_ context.Context, device *domain.Device) domain.CommandResult {
	if p.publisher == nil {
		return disabledResult(domain.OperationClose, "Tasmota")
	}

	var cfg tasmotaDeviceConfig
	if err := parseDeviceConfig(device, &cfg); err != nil {
		return domain.NewFailureResult(domain.OperationClose,
			"invalid device config: "+err.Error(), domain.ErrCodeVendorError)
	}
	topic := externalID(device, cfg.Topic)
	if topic == "" {
		return domain.NewFailureResult(domain.OperationClose,
			"device has no MQTT topic configured", domain.ErrCodeVendorError)
	}

	command := "POWER"
	if cfg.Relay > 0 {
		command = fmt.Sprintf("POWER%d", cfg.Relay)
	}
	fullTopic := fmt.Sprintf("cmnd/%s/%s", topic, command)

	if err := p.publisher.Publish(fullTopic, 1, false, []byte("OFF")); err != nil {
		return domain.NewFailureResult(domain.OperationClose, err.Error(), domain.ErrCodeVendorError)
	}
	return domain.NewSuccessResult(domain.OperationClose, "Relay command published", map[string]any{
		"topic":    fullTopic,
		"provider": p.Name(),
	})
}
