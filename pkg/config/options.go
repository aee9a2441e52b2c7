package config

import (
	"fmt"
	"time"
)

// Option mutates a Config during New
type Option func(*Config) error

// WithBaseURL sets the backend base URL
func WithBaseURL(url string) Option {
	return func(c *Config) error {
		c.API.BaseURL = url
		return nil
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return &ConfigError{Field: "api.timeout", Message: "timeout must be positive", Err: ErrInvalidConfiguration}
		}
		c.API.Timeout = d
		return nil
	}
}

// WithStore selects the credential store provider: memory, sqlite or redis
func WithStore(provider string) Option {
	return func(c *Config) error {
		c.Store.Provider = provider
		return nil
	}
}

// WithSQLitePath sets the sqlite database file
func WithSQLitePath(path string) Option {
	return func(c *Config) error {
		c.Store.SQLitePath = path
		return nil
	}
}

// WithRedisURL sets the Redis connection URL
func WithRedisURL(url string) Option {
	return func(c *Config) error {
		c.Store.RedisURL = url
		return nil
	}
}

// WithLogLevel sets the minimum log level
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = level
		return nil
	}
}

// WithLogFormat sets the log encoder: json or console
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		c.Logging.Format = format
		return nil
	}
}

// WithTelemetry turns trace export on with the given exporter and endpoint
func WithTelemetry(exporter, endpoint string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = true
		c.Telemetry.Exporter = exporter
		c.Telemetry.Endpoint = endpoint
		return nil
	}
}

// WithResolver sets the DNS server the checker queries
func WithResolver(addr string) Option {
	return func(c *Config) error {
		c.Checker.Resolver = addr
		return nil
	}
}

// WithCheckDelay sets the pause between lookups
func WithCheckDelay(d time.Duration) Option {
	return func(c *Config) error {
		c.Checker.Delay = d
		return nil
	}
}

// WithDomainsFile sets the JSON domain list path
func WithDomainsFile(path string) Option {
	return func(c *Config) error {
		c.Checker.DomainsFile = path
		return nil
	}
}

// WithConfigFile overlays a YAML or JSON file
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		if err := c.LoadFromFile(path); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		return nil
	}
}

// fileConfig mirrors Config with optional fields and string durations
type fileConfig struct {
	API *struct {
		BaseURL *string `json:"base_url" yaml:"base_url"`
		Timeout *string `json:"timeout" yaml:"timeout"`
	} `json:"api" yaml:"api"`
	Store *struct {
		Provider   *string `json:"provider" yaml:"provider"`
		SQLitePath *string `json:"sqlite_path" yaml:"sqlite_path"`
		RedisURL   *string `json:"redis_url" yaml:"redis_url"`
		Namespace  *string `json:"namespace" yaml:"namespace"`
	} `json:"store" yaml:"store"`
	Logging *struct {
		Level  *string `json:"level" yaml:"level"`
		Format *string `json:"format" yaml:"format"`
	} `json:"logging" yaml:"logging"`
	Telemetry *struct {
		Enabled     *bool   `json:"enabled" yaml:"enabled"`
		Exporter    *string `json:"exporter" yaml:"exporter"`
		Endpoint    *string `json:"endpoint" yaml:"endpoint"`
		Insecure    *bool   `json:"insecure" yaml:"insecure"`
		ServiceName *string `json:"service_name" yaml:"service_name"`
	} `json:"telemetry" yaml:"telemetry"`
	Checker *struct {
		DomainsFile *string  `json:"domains_file" yaml:"domains_file"`
		Resolver    *string  `json:"resolver" yaml:"resolver"`
		Delay       *string  `json:"delay" yaml:"delay"`
		BlockedIPs  []string `json:"blocked_ips" yaml:"blocked_ips"`
	} `json:"checker" yaml:"checker"`
}

func (f *fileConfig) apply(c *Config) error {
	if a := f.API; a != nil {
		setString(&c.API.BaseURL, a.BaseURL)
		if err := setDuration(&c.API.Timeout, a.Timeout, "api.timeout"); err != nil {
			return err
		}
	}
	if s := f.Store; s != nil {
		setString(&c.Store.Provider, s.Provider)
		setString(&c.Store.SQLitePath, s.SQLitePath)
		setString(&c.Store.RedisURL, s.RedisURL)
		setString(&c.Store.Namespace, s.Namespace)
	}
	if l := f.Logging; l != nil {
		setString(&c.Logging.Level, l.Level)
		setString(&c.Logging.Format, l.Format)
	}
	if t := f.Telemetry; t != nil {
		setBool(&c.Telemetry.Enabled, t.Enabled)
		setString(&c.Telemetry.Exporter, t.Exporter)
		setString(&c.Telemetry.Endpoint, t.Endpoint)
		setBool(&c.Telemetry.Insecure, t.Insecure)
		setString(&c.Telemetry.ServiceName, t.ServiceName)
	}
	if ch := f.Checker; ch != nil {
		setString(&c.Checker.DomainsFile, ch.DomainsFile)
		setString(&c.Checker.Resolver, ch.Resolver)
		if err := setDuration(&c.Checker.Delay, ch.Delay, "checker.delay"); err != nil {
			return err
		}
		if len(ch.BlockedIPs) > 0 {
			c.Checker.BlockedIPs = ch.BlockedIPs
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, field string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return &ConfigError{Field: field, Message: err.Error(), Err: ErrInvalidConfiguration}
	}
	*dst = d
	return nil
}
