package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config smartstay-guide（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Auth struct {
		// HS256 secret for staff tokens. Empty secret keeps the staff
		// surface locked (every request rejected), never open.
		JWTSecret string
	}
	Audit struct {
		Stream string // Redis Stream for access events
	}

	// Per-vendor adapter configuration. Each adapter that cannot load its
	// required secrets starts disabled instead of failing the process.
	Raixer        RaixerConfig
	Shelly        ShellyConfig
	Sonoff        SonoffConfig
	HomeAssistant HomeAssistantConfig
	Nuki          NukiConfig
	Generic       GenericConfig
	MQTT          MQTTConfig
}

// DatabaseConfig PostgreSQL 连接配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RaixerConfig 锁厂家 Raixer 配置（唯一带重试策略的 adapter）
type RaixerConfig struct {
	Enabled    bool
	APIURL     string
	APIKey     string
	Timeout    time.Duration // per attempt
	MaxRetries int           // total attempts
}

// ShellyConfig 继电器厂家 Shelly（local IP / Cloud API 两种模式）
type ShellyConfig struct {
	Enabled  bool
	CloudURL string
	APIKey   string
	Timeout  time.Duration
}

// SonoffConfig 开关厂家 Sonoff/eWeLink（cloud / iHost hub 两种模式）
type SonoffConfig struct {
	Enabled    bool
	CloudURL   string
	AuthToken  string
	IHostIP    string
	IHostToken string
	Timeout    time.Duration
}

// HomeAssistantConfig 家庭自动化网关 Home Assistant REST API
type HomeAssistantConfig struct {
	Enabled     bool
	URL         string
	AccessToken string
	Timeout     time.Duration
}

// NukiConfig 云端锁 Nuki Web API
type NukiConfig struct {
	Enabled  bool
	APIURL   string
	APIToken string
	Timeout  time.Duration
}

// GenericConfig 通用 HTTP adapter（无 feature flag，始终可用）
type GenericConfig struct {
	Timeout time.Duration
}

// MQTTConfig MQTT broker（Tasmota 继电器指令下发）
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true: if DB is unavailable the service falls back to the
	// in-memory repositories instead of refusing to start.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "smartstay")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Auth.JWTSecret = getEnv("STAFF_JWT_SECRET", "")
	cfg.Audit.Stream = getEnv("AUDIT_STREAM", "access-events")

	// Raixer 配置
	cfg.Raixer.Enabled = getEnv("IOT_RAIXER_ENABLED", "false") == "true"
	cfg.Raixer.APIURL = getEnv("IOT_RAIXER_API_URL", "")
	cfg.Raixer.APIKey = getEnv("IOT_RAIXER_API_KEY", "")
	cfg.Raixer.Timeout = parseMillis(getEnv("IOT_RAIXER_TIMEOUT", "5000"), 5000)
	cfg.Raixer.MaxRetries = parseInt(getEnv("IOT_RAIXER_MAX_RETRIES", "3"), 3)

	// Shelly 配置
	cfg.Shelly.Enabled = getEnv("IOT_SHELLY_ENABLED", "false") == "true"
	cfg.Shelly.CloudURL = getEnv("IOT_SHELLY_CLOUD_URL", "https://shelly-api-cloud.shelly.cloud")
	cfg.Shelly.APIKey = getEnv("IOT_SHELLY_API_KEY", "")
	cfg.Shelly.Timeout = parseMillis(getEnv("IOT_SHELLY_TIMEOUT", "5000"), 5000)

	// Sonoff 配置
	cfg.Sonoff.Enabled = getEnv("IOT_SONOFF_ENABLED", "false") == "true"
	cfg.Sonoff.CloudURL = getEnv("IOT_SONOFF_CLOUD_URL", "https://eu-apia.coolkit.cc")
	cfg.Sonoff.AuthToken = getEnv("IOT_SONOFF_AUTH_TOKEN", "")
	cfg.Sonoff.IHostIP = getEnv("IOT_SONOFF_IHOST_IP", "")
	cfg.Sonoff.IHostToken = getEnv("IOT_SONOFF_IHOST_TOKEN", "")
	cfg.Sonoff.Timeout = parseMillis(getEnv("IOT_SONOFF_TIMEOUT", "5000"), 5000)

	// Home Assistant 配置
	cfg.HomeAssistant.Enabled = getEnv("IOT_HA_ENABLED", "false") == "true"
	cfg.HomeAssistant.URL = getEnv("IOT_HA_URL", "http://homeassistant.local:8123")
	cfg.HomeAssistant.AccessToken = getEnv("IOT_HA_ACCESS_TOKEN", "")
	cfg.HomeAssistant.Timeout = parseMillis(getEnv("IOT_HA_TIMEOUT", "5000"), 5000)

	// Nuki 配置
	cfg.Nuki.Enabled = getEnv("IOT_NUKI_ENABLED", "false") == "true"
	cfg.Nuki.APIURL = getEnv("IOT_NUKI_API_URL", "https://api.nuki.io")
	cfg.Nuki.APIToken = getEnv("IOT_NUKI_API_TOKEN", "")
	cfg.Nuki.Timeout = parseMillis(getEnv("IOT_NUKI_TIMEOUT", "5000"), 5000)

	cfg.Generic.Timeout = parseMillis(getEnv("IOT_GENERIC_TIMEOUT", "5000"), 5000)

	// MQTT 配置（Tasmota adapter，默认禁用）
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "smartstay-guide")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseMillis(s string, defMillis int) time.Duration {
	return time.Duration(parseInt(s, defMillis)) * time.Millisecond
}
