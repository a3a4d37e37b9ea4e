package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "sensors.yaml", cfg.SensorsFile)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, "https://api.weather.gov", cfg.NWSBaseURL)
	assert.NotEmpty(t, cfg.NWSUserAgent)
	assert.Equal(t, 10*time.Second, cfg.NWSTimeout)
	assert.Equal(t, 3, cfg.NWSRetryMax)
	assert.Equal(t, 256, cfg.PointsCacheSize)
	assert.False(t, cfg.HassEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "nws-warnings-sensors", cfg.KafkaSinkTopic)
	assert.Equal(t, StoreMemory, cfg.StateStore)
	assert.Equal(t, 24*time.Hour, cfg.StateTTL)
	assert.False(t, cfg.MapboxEnabled)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_FILE", "/var/log/nws.log")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SENSORS_FILE", "/etc/nws/sensors.yaml")
	t.Setenv("POLL_INTERVAL", "10m")
	t.Setenv("NWS_BASE_URL", "http://localhost:8081/")
	t.Setenv("NWS_USER_AGENT", "test-agent")
	t.Setenv("NWS_TIMEOUT", "3s")
	t.Setenv("NWS_RETRY_MAX", "0")
	t.Setenv("POINTS_CACHE_SIZE", "16")
	t.Setenv("HASS_URL", "http://homeassistant.local:8123/")
	t.Setenv("HASS_TOKEN", "secret")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("STATE_STORE", "SQLite")
	t.Setenv("STATE_DB_PATH", "/tmp/state.db")
	t.Setenv("STATE_TTL", "1h")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/var/log/nws.log", cfg.LogFile)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/etc/nws/sensors.yaml", cfg.SensorsFile)
	assert.Equal(t, 10*time.Minute, cfg.PollInterval)
	assert.Equal(t, "http://localhost:8081", cfg.NWSBaseURL)
	assert.Equal(t, "test-agent", cfg.NWSUserAgent)
	assert.Equal(t, 3*time.Second, cfg.NWSTimeout)
	assert.Equal(t, 0, cfg.NWSRetryMax)
	assert.Equal(t, 16, cfg.PointsCacheSize)
	assert.Equal(t, "http://homeassistant.local:8123", cfg.HassURL)
	assert.True(t, cfg.HassEnabled())
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, StoreSQLite, cfg.StateStore)
	assert.Equal(t, "/tmp/state.db", cfg.StateDBPath)
	assert.Equal(t, time.Hour, cfg.StateTTL)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:7070\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

func TestLoad_EnvFileDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=error\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"invalid shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, "SHUTDOWN_TIMEOUT"},
		{"poll interval too short", map[string]string{"POLL_INTERVAL": "30s"}, "POLL_INTERVAL"},
		{"invalid poll interval", map[string]string{"POLL_INTERVAL": "often"}, "POLL_INTERVAL"},
		{"invalid NWS timeout", map[string]string{"NWS_TIMEOUT": "0s"}, "NWS_TIMEOUT"},
		{"negative retry max", map[string]string{"NWS_RETRY_MAX": "-1"}, "NWS_RETRY_MAX"},
		{"invalid state ttl", map[string]string{"STATE_TTL": "forever"}, "STATE_TTL"},
		{"invalid mapbox timeout", map[string]string{"MAPBOX_TIMEOUT": "bad"}, "MAPBOX_TIMEOUT"},
		{"hass url without token", map[string]string{"HASS_URL": "http://ha:8123"}, "HASS_TOKEN"},
		{"unknown state store", map[string]string{"STATE_STORE": "etcd"}, "STATE_STORE"},
		{"redis without url", map[string]string{"STATE_STORE": "redis"}, "REDIS_URL"},
		{"mapbox enabled without token", map[string]string{"MAPBOX_ENABLED": "true"}, "MAPBOX_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("POINTS_CACHE_SIZE", "-4")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.PointsCacheSize)
}
