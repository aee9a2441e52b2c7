// Package config loads campusbite settings.
//
// Priority, lowest to highest:
//  1. Default values
//  2. Environment variables (CAMPUSBITE_*, plus LOG_LEVEL and OTEL_* fallbacks)
//  3. Functional options, applied in order; WithConfigFile overlays a YAML or
//     JSON file at that point
//
//	cfg, err := config.New(
//	    config.WithBaseURL("http://localhost:8000"),
//	    config.WithStore("redis"),
//	    config.WithRedisURL("redis://localhost:6379/0"),
//	)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sentinel errors wrapped by ConfigError
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// ConfigError describes a rejected setting
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds every setting for the client and the domain checker
type Config struct {
	API       APIConfig       `json:"api" yaml:"api"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	Checker   CheckerConfig   `json:"checker" yaml:"checker"`
}

// APIConfig points at the ordering backend
type APIConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig selects where the session credential is kept
type StoreConfig struct {
	Provider   string `json:"provider" yaml:"provider"`
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`
	RedisURL   string `json:"redis_url" yaml:"redis_url"`
	Namespace  string `json:"namespace" yaml:"namespace"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// TelemetryConfig controls trace export
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Exporter    string `json:"exporter" yaml:"exporter"`
	Endpoint    string `json:"endpoint" yaml:"endpoint"`
	Insecure    bool   `json:"insecure" yaml:"insecure"`
	ServiceName string `json:"service_name" yaml:"service_name"`
}

// CheckerConfig drives the domain blocklist checker
type CheckerConfig struct {
	DomainsFile string        `json:"domains_file" yaml:"domains_file"`
	Resolver    string        `json:"resolver" yaml:"resolver"`
	Delay       time.Duration `json:"delay" yaml:"delay"`
	BlockedIPs  []string      `json:"blocked_ips" yaml:"blocked_ips"`
}

// DefaultBlockedIPs is the static blocklist shipped with the checker
var DefaultBlockedIPs = []string{
	"192.0.2.1",
	"203.0.113.1",
	"198.51.100.1",
	"142.250.207.174",
	"192.178.211.100",
}

// DefaultResolvers lists the upstream resolvers; only the first is queried
var DefaultResolvers = []string{"8.8.8.8", "8.8.4.4", "1.1.1.1"}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Provider:   "sqlite",
			SQLitePath: defaultSQLitePath(),
			Namespace:  "campusbite",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Exporter:    "otlp",
			Insecure:    true,
			ServiceName: "campusbite",
		},
		Checker: CheckerConfig{
			DomainsFile: "domains.json",
			Resolver:    DefaultResolvers[0],
			Delay:       time.Second,
			BlockedIPs:  append([]string(nil), DefaultBlockedIPs...),
		},
	}
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "campusbite.db"
	}
	return filepath.Join(home, ".campusbite", "session.db")
}

// LoadFromEnv overlays environment variables onto c
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("CAMPUSBITE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CAMPUSBITE_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigError{Field: "CAMPUSBITE_API_TIMEOUT", Message: err.Error(), Err: ErrInvalidConfiguration}
		}
		c.API.Timeout = d
	}

	if v := os.Getenv("CAMPUSBITE_STORE"); v != "" {
		c.Store.Provider = v
	}
	if v := os.Getenv("CAMPUSBITE_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := firstEnv("CAMPUSBITE_REDIS_URL", "REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("CAMPUSBITE_NAMESPACE"); v != "" {
		c.Store.Namespace = v
	}

	if v := firstEnv("CAMPUSBITE_LOG_LEVEL", "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := firstEnv("CAMPUSBITE_LOG_FORMAT", "LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("CAMPUSBITE_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("CAMPUSBITE_TELEMETRY_EXPORTER"); v != "" {
		c.Telemetry.Exporter = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		c.Telemetry.ServiceName = v
	}

	if v := os.Getenv("CAMPUSBITE_DOMAINS_FILE"); v != "" {
		c.Checker.DomainsFile = v
	}
	if v := os.Getenv("CAMPUSBITE_DNS_RESOLVER"); v != "" {
		c.Checker.Resolver = v
	}
	if v := os.Getenv("CAMPUSBITE_CHECK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigError{Field: "CAMPUSBITE_CHECK_DELAY", Message: err.Error(), Err: ErrInvalidConfiguration}
		}
		c.Checker.Delay = d
	}
	if v := os.Getenv("CAMPUSBITE_BLOCKED_IPS"); v != "" {
		c.Checker.BlockedIPs = parseStringList(v)
	}

	return nil
}

// LoadFromFile overlays a YAML (.yaml, .yml) or JSON (.json) file onto c
func (c *Config) LoadFromFile(path string) error {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return &ConfigError{Field: "file", Message: "unsupported extension " + ext, Err: ErrInvalidConfiguration}
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	switch ext {
	case ".json":
		var raw fileConfig
		if err := json.Unmarshal(data, &raw); err != nil {
			return &ConfigError{Field: "file", Message: err.Error(), Err: ErrInvalidConfiguration}
		}
		return raw.apply(c)
	default:
		var raw fileConfig
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return &ConfigError{Field: "file", Message: err.Error(), Err: ErrInvalidConfiguration}
		}
		return raw.apply(c)
	}
}

// Validate checks the final configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return &ConfigError{Field: "api.base_url", Message: "base URL is required", Err: ErrMissingConfiguration}
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return &ConfigError{Field: "api.base_url", Message: "base URL must be http or https", Err: ErrInvalidConfiguration}
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "timeout must be positive", Err: ErrInvalidConfiguration}
	}

	switch c.Store.Provider {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return &ConfigError{Field: "store.sqlite_path", Message: "sqlite path is required for the sqlite store", Err: ErrMissingConfiguration}
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return &ConfigError{Field: "store.redis_url", Message: "redis URL is required for the redis store", Err: ErrMissingConfiguration}
		}
	default:
		return &ConfigError{Field: "store.provider", Message: fmt.Sprintf("unknown provider %q", c.Store.Provider), Err: ErrInvalidConfiguration}
	}

	if c.Telemetry.Enabled && c.Telemetry.Exporter == "otlp" && c.Telemetry.Endpoint == "" {
		return &ConfigError{Field: "telemetry.endpoint", Message: "endpoint is required for the otlp exporter", Err: ErrMissingConfiguration}
	}

	if c.Checker.Delay < 0 {
		return &ConfigError{Field: "checker.delay", Message: "delay cannot be negative", Err: ErrInvalidConfiguration}
	}
	if c.Checker.Resolver == "" {
		return &ConfigError{Field: "checker.resolver", Message: "resolver is required", Err: ErrMissingConfiguration}
	}

	return nil
}

// New builds a config from defaults, environment and options, then validates it
func New(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// parseStringList splits a comma-separated string, dropping empty entries
func parseStringList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseBool accepts true, 1, yes and on
func parseBool(s string) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return b
	}
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "yes" || s == "on"
}
