package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/config"
	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHA(url string) *HomeAssistant {
	return NewHomeAssistant(config.HomeAssistantConfig{
		Enabled:     true,
		URL:         url,
		AccessToken: "ha-token",
		Timeout:     2 * time.Second,
	}, zap.NewNop())
}

func TestServiceForEntity(t *testing.T) {
	tests := []struct {
		entity   string
		override string
		domain   string
		service  string
	}{
		{"lock.front_door", "", "lock", "unlock"},
		{"switch.gate_relay", "", "switch", "turn_on"},
		{"cover.garage", "", "cover", "open_cover"},
		{"light.hallway", "", "light", "turn_on"},
		{"light.hallway", "toggle", "light", "toggle"},
		{"no_dot_entity", "", "switch", "turn_on"},
	}
	for _, tt := range tests {
		d, s := serviceForEntity(tt.entity, tt.override)
		assert.Equal(t, tt.domain, d, tt.entity)
		assert.Equal(t, tt.service, s, tt.entity)
	}
}

func TestHAOpen_CallsUnlockServiceForLock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/services/lock/unlock", r.URL.Path)
		assert.Equal(t, "Bearer ha-token", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lock.front_door", body["entity_id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := newTestHA(srv.URL)
	res := p.Open(context.Background(), testDevice("HOME_ASSISTANT", "lock.front_door", ""))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "unlock", res.Metadata["service"])
}

func TestHAOpen_EntityFromConfigOverridesColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/services/switch/turn_on", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestHA(srv.URL)
	res := p.Open(context.Background(),
		testDevice("HOME_ASSISTANT", "lock.ignored", `{"entityId":"switch.gate_relay"}`))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "switch.gate_relay", res.Metadata["entityId"])
}

func TestHAStatus_ReturnsEntityState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/states/lock.front_door", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entity_id":"lock.front_door","state":"locked"}`))
	}))
	defer srv.Close()

	p := newTestHA(srv.URL)
	res := p.Status(context.Background(), testDevice("HOME_ASSISTANT", "lock.front_door", ""))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "locked", res.Metadata["state"])
}

func TestHA_DisabledWithoutToken(t *testing.T) {
	p := NewHomeAssistant(config.HomeAssistantConfig{Enabled: true, URL: "http://ha.local"}, zap.NewNop())
	assert.False(t, p.Enabled())

	res := p.Open(context.Background(), testDevice("HOME_ASSISTANT", "lock.front_door", ""))
	require.False(t, res.Success)
	assert.Equal(t, domain.ErrCodeProviderDisabled, res.Error)
}
