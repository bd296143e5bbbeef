package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	topic   string
	payload string
	qos     byte
	err     error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.topic = topic
	f.qos = qos
	f.payload = string(payload)
	return f.err
}

func TestTasmotaOpen_PublishesPowerOn(t *testing.T) {
	pub := &fakePublisher{}
	p := NewTasmota(pub, zap.NewNop())
	require.True(t, p.Enabled())

	res := p.Open(context.Background(), testDevice("TASMOTA", "gate-relay", ""))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "cmnd/gate-relay/POWER", pub.topic)
	assert.Equal(t, "ON", pub.payload)
	assert.Equal(t, byte(1), pub.qos)
}

func TestTasmotaOpen_MultiRelayIndex(t *testing.T) {
	pub := &fakePublisher{}
	p := NewTasmota(pub, zap.NewNop())

	res := p.Open(context.Background(), testDevice("TASMOTA", "", `{"topic":"barn-sonoff","relay":2}`))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "cmnd/barn-sonoff/POWER2", pub.topic)
}

func TestTasmotaClose_PublishesPowerOff(t *testing.T) {
	pub := &fakePublisher{}
	p := NewTasmota(pub, zap.NewNop())

	res := p.Close(context.Background(), testDevice("TASMOTA", "gate-relay", ""))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "cmnd/gate-relay/POWER", pub.topic)
	assert.Equal(t, "OFF", pub.payload)
}

func TestTasmotaOpen_PublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected to broker")}
	p := NewTasmota(pub, zap.NewNop())

	res := p.Open(context.Background(), testDevice("TASMOTA", "gate-relay", ""))

	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeVendorError, res.Error)
}

func TestTasmota_DisabledWithoutBroker(t *testing.T) {
	p := NewTasmota(nil, zap.NewNop())
	assert.False(t, p.Enabled())

	res := p.Open(context.Background(), testDevice("TASMOTA", "gate-relay", ""))
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeProviderDisabled, res.Error)
}

func TestTasmotaOpen_MissingTopic(t *testing.T) {
	p := NewTasmota(&fakePublisher{}, zap.NewNop())

	res := p.Open(context.Background(), testDevice("TASMOTA", "", ""))
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeVendorError, res.Error)
}
