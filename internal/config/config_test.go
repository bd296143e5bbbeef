package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "smartstay", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "access-events", cfg.Audit.Stream)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// All vendor adapters are feature-flagged off by default.
	assert.False(t, cfg.Raixer.Enabled)
	assert.False(t, cfg.Shelly.Enabled)
	assert.False(t, cfg.Sonoff.Enabled)
	assert.False(t, cfg.HomeAssistant.Enabled)
	assert.False(t, cfg.Nuki.Enabled)
	assert.False(t, cfg.MQTT.Enabled)

	assert.Equal(t, 5*time.Second, cfg.Raixer.Timeout)
	assert.Equal(t, 3, cfg.Raixer.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Generic.Timeout)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("IOT_RAIXER_ENABLED", "true")
	t.Setenv("IOT_RAIXER_API_URL", "https://api.raixer.test")
	t.Setenv("IOT_RAIXER_API_KEY", "k-123")
	t.Setenv("IOT_RAIXER_TIMEOUT", "1500")
	t.Setenv("IOT_RAIXER_MAX_RETRIES", "5")
	t.Setenv("STAFF_JWT_SECRET", "secret")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.True(t, cfg.Raixer.Enabled)
	assert.Equal(t, "https://api.raixer.test", cfg.Raixer.APIURL)
	assert.Equal(t, "k-123", cfg.Raixer.APIKey)
	assert.Equal(t, 1500*time.Millisecond, cfg.Raixer.Timeout)
	assert.Equal(t, 5, cfg.Raixer.MaxRetries)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	os.Clearenv()
	t.Setenv("IOT_RAIXER_MAX_RETRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, 3, cfg.Raixer.MaxRetries)
}
