// Package config loads storefront and dev-backend settings.
//
// Precedence, lowest first: DefaultConfig, an optional YAML file, then
// STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the storefront CLI configuration.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BackendConfig points the request pipeline at the order backend.
type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig supplies the bearer token. Token wins over TokenFile.
type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`
}

type StorageConfig struct {
	// Path of the SQLite file holding carts and the checkout log.
	Path string `yaml:"path"`
	// Session selects which persisted cart the CLI operates on.
	Session string `yaml:"session"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TelemetryConfig enables OTLP export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Path:    "storefront.db",
			Session: "default",
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "storefront",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.url %q must be an absolute http(s) URL", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	if c.Storage.Session == "" {
		return errors.New("storage.session is required")
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Backend.URL = getEnv("STOREFRONT_BACKEND_URL", c.Backend.URL)
	c.Backend.Timeout = getEnvDuration("STOREFRONT_BACKEND_TIMEOUT", c.Backend.Timeout)
	c.Auth.Token = getEnv("STOREFRONT_TOKEN", c.Auth.Token)
	c.Auth.TokenFile = getEnv("STOREFRONT_TOKEN_FILE", c.Auth.TokenFile)
	c.Storage.Path = getEnv("STOREFRONT_DB", c.Storage.Path)
	c.Storage.Session = getEnv("STOREFRONT_SESSION", c.Storage.Session)
	c.Log.Level = getEnv("STOREFRONT_LOG_LEVEL", c.Log.Level)
	c.Telemetry.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.Endpoint)
	c.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
}

// ServerConfig configures the dev backend. It is read from the environment
// only, the way the other service binaries are configured.
type ServerConfig struct {
	Port          string
	RedisAddr     string
	OperatorToken string
	// IdempotencyTTL bounds how long a submitted order id is replayed.
	IdempotencyTTL time.Duration
	LogLevel       string
	OTelEndpoint   string
	ServiceName    string
}

func LoadServer() ServerConfig {
	return ServerConfig{
		Port:           getEnv("PORT", "8080"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		OperatorToken:  getEnv("OPERATOR_TOKEN", ""),
		IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OTelEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "dev-backend"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45").
// Unparseable values fall back.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
