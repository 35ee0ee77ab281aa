// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Prefix   string         `yaml:"prefix"`
	Server   ServerConfig   `yaml:"server"`
	Web      WebConfig      `yaml:"web"`
	Cooldown CooldownConfig `yaml:"cooldown"`
	Usage    UsageConfig    `yaml:"usage"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	OpenAPI  OpenAPIConfig  `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WebConfig configures the introspection API.
type WebConfig struct {
	// Enabled is a pointer to distinguish "not set" (default: on)
	// from an explicit false.
	Enabled *bool `yaml:"enabled"`

	// AdminTokenHash is the bcrypt hash of the bearer token that
	// guards the dry-run validation endpoint. Empty leaves the
	// endpoint open (local development).
	AdminTokenHash string `yaml:"admin_token_hash,omitempty"`
}

// On reports whether the introspection API is enabled.
func (w WebConfig) On() bool {
	return w.Enabled == nil || *w.Enabled
}

// CooldownConfig limits how often one author may run one command.
// Zero uses or a zero window disables the cooldown.
type CooldownConfig struct {
	Uses   int           `yaml:"uses"`
	Window time.Duration `yaml:"window"`
}

// UsageConfig configures dispatch record batching.
type UsageConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DatabaseConfig configures dispatch record storage.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"` // Enable /metrics endpoint (default: on)
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// On reports whether the /metrics endpoint is enabled.
func (m MetricsConfig) On() bool {
	return m.Enabled == nil || *m.Enabled
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled *bool `yaml:"enabled"` // Enable /openapi.json and /swagger (default: on)
}

// On reports whether the OpenAPI endpoints are enabled.
func (o OpenAPIConfig) On() bool {
	return o.Enabled == nil || *o.Enabled
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables
// and defaults. This is useful for Docker deployments where no config
// file is needed.
//
// Environment variables:
//
//	CMDGATE_PREFIX            - Command prefix (default: !)
//	CMDGATE_DATABASE_DRIVER   - Record storage: sqlite or memory (default: sqlite)
//	CMDGATE_DATABASE_DSN      - Database path (default: cmdgate.db)
//	CMDGATE_SERVER_HOST       - Server host (default: 0.0.0.0)
//	CMDGATE_SERVER_PORT       - Server port (default: 8080)
//	CMDGATE_WEB_ENABLED       - Enable the introspection API (default: true)
//	CMDGATE_ADMIN_TOKEN_HASH  - bcrypt hash guarding the dry-run endpoint
//	CMDGATE_COOLDOWN_USES     - Invocations per cooldown window (default: 5)
//	CMDGATE_COOLDOWN_WINDOW   - Cooldown window duration (default: 1m)
//	CMDGATE_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	CMDGATE_LOG_FORMAT        - Log format: json or console (default: json)
//	CMDGATE_METRICS_ENABLED   - Enable /metrics endpoint (default: true)
//	CMDGATE_OPENAPI_ENABLED   - Enable OpenAPI/Swagger (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falling back to environment
// variables and defaults when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// Default returns the configuration used when no file and no
// environment overrides are present.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides applies CMDGATE_* environment variables to the
// config. Environment variables always override file-based
// configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CMDGATE_PREFIX"); v != "" {
		cfg.Prefix = v
	}

	// Server configuration
	if v := os.Getenv("CMDGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CMDGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CMDGATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("CMDGATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Web configuration
	if v := os.Getenv("CMDGATE_WEB_ENABLED"); v != "" {
		cfg.Web.Enabled = boolPtr(parseBool(v))
	}
	if v := os.Getenv("CMDGATE_ADMIN_TOKEN_HASH"); v != "" {
		cfg.Web.AdminTokenHash = v
	}

	// Cooldown configuration
	if v := os.Getenv("CMDGATE_COOLDOWN_USES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cooldown.Uses = n
		}
	}
	if v := os.Getenv("CMDGATE_COOLDOWN_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cooldown.Window = d
		}
	}

	// Usage configuration
	if v := os.Getenv("CMDGATE_USAGE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Usage.BatchSize = n
		}
	}
	if v := os.Getenv("CMDGATE_USAGE_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Usage.FlushInterval = d
		}
	}

	// Database configuration
	if v := os.Getenv("CMDGATE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("CMDGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Logging configuration
	if v := os.Getenv("CMDGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CMDGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("CMDGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = boolPtr(parseBool(v))
	}
	if v := os.Getenv("CMDGATE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// OpenAPI configuration
	if v := os.Getenv("CMDGATE_OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = boolPtr(parseBool(v))
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Cooldown.Uses == 0 && cfg.Cooldown.Window == 0 {
		cfg.Cooldown.Uses = 5
		cfg.Cooldown.Window = time.Minute
	}

	if cfg.Usage.BatchSize == 0 {
		cfg.Usage.BatchSize = 100
	}
	if cfg.Usage.FlushInterval == 0 {
		cfg.Usage.FlushInterval = 10 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "cmdgate.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Web.Enabled == nil {
		cfg.Web.Enabled = boolPtr(true)
	}
	if cfg.Metrics.Enabled == nil {
		cfg.Metrics.Enabled = boolPtr(true)
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.OpenAPI.Enabled == nil {
		cfg.OpenAPI.Enabled = boolPtr(true)
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Prefix) == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if strings.ContainsAny(cfg.Prefix, " \t\n") {
		return fmt.Errorf("prefix must not contain whitespace, got %q", cfg.Prefix)
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0-65535, got %d", cfg.Server.Port)
	}

	if cfg.Cooldown.Uses < 0 {
		return fmt.Errorf("cooldown.uses must not be negative, got %d", cfg.Cooldown.Uses)
	}
	if cfg.Cooldown.Window < 0 {
		return fmt.Errorf("cooldown.window must not be negative, got %s", cfg.Cooldown.Window)
	}

	validDrivers := map[string]bool{"sqlite": true, "memory": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be 'sqlite' or 'memory', got %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.driver is 'sqlite'")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
