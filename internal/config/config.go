package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	SensorsFile  string
	PollInterval time.Duration

	// NWS API configuration.
	NWSBaseURL      string
	NWSUserAgent    string
	NWSTimeout      time.Duration
	NWSRetryMax     int
	PointsCacheSize int

	// Home Assistant REST API. Publishing and zone lookup are enabled when
	// both are set.
	HassURL   string
	HassToken string

	// Kafka sink. Disabled when no brokers are configured.
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Snapshot persistence: "memory", "sqlite" or "redis".
	StateStore  string
	StateDBPath string
	RedisURL    string
	StateTTL    time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"

	minPollInterval = time.Minute
)

// Load reads configuration from environment variables, applying defaults where
// unset. Variables from ENV_FILE (default .env) are loaded first when the file
// exists; they never override variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	if pollInterval < minPollInterval {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: must be at least %s", minPollInterval)
	}
	nwsTimeout, err := parsePositiveDuration("NWS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	nwsRetryMax, err := parseNonNegativeInt("NWS_RETRY_MAX", 3)
	if err != nil {
		return nil, err
	}
	stateTTL, err := parsePositiveDuration("STATE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,

		SensorsFile:  sharedcfg.EnvOrDefault("SENSORS_FILE", "sensors.yaml"),
		PollInterval: pollInterval,

		NWSBaseURL:      strings.TrimRight(sharedcfg.EnvOrDefault("NWS_BASE_URL", "https://api.weather.gov"), "/"),
		NWSUserAgent:    sharedcfg.EnvOrDefault("NWS_USER_AGENT", "nws-warnings (github.com/couchcryptid/nws-warnings)"),
		NWSTimeout:      nwsTimeout,
		NWSRetryMax:     nwsRetryMax,
		PointsCacheSize: parsePositiveIntOrDefault("POINTS_CACHE_SIZE", 256),

		HassURL:   strings.TrimRight(os.Getenv("HASS_URL"), "/"),
		HassToken: os.Getenv("HASS_TOKEN"),

		KafkaBrokers:   sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "nws-warnings-sensors"),

		StateStore:  strings.ToLower(sharedcfg.EnvOrDefault("STATE_STORE", StoreMemory)),
		StateDBPath: sharedcfg.EnvOrDefault("STATE_DB_PATH", "data/nws-warnings.db"),
		RedisURL:    os.Getenv("REDIS_URL"),
		StateTTL:    stateTTL,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveIntOrDefault("MAPBOX_CACHE_SIZE", 1000),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HassEnabled reports whether the Home Assistant API is configured.
func (c *Config) HassEnabled() bool {
	return c.HassURL != "" && c.HassToken != ""
}

// KafkaEnabled reports whether the Kafka sink is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c *Config) validate() error {
	if c.SensorsFile == "" {
		return errors.New("SENSORS_FILE is required")
	}
	if (c.HassURL == "") != (c.HassToken == "") {
		return errors.New("HASS_URL and HASS_TOKEN must be set together")
	}
	if c.KafkaEnabled() && c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}
	switch c.StateStore {
	case StoreMemory:
	case StoreSQLite:
		if c.StateDBPath == "" {
			return errors.New("STATE_DB_PATH is required for the sqlite state store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis state store")
		}
	default:
		return fmt.Errorf("invalid STATE_STORE %q: must be memory, sqlite or redis", c.StateStore)
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveIntOrDefault(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
