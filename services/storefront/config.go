// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storefront

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sakil470004/tea-with-me/services/storefront/auth"
	"github.com/sakil470004/tea-with-me/services/storefront/cart"
	"github.com/sakil470004/tea-with-me/services/storefront/orders"
	"github.com/sakil470004/tea-with-me/services/storefront/telemetry"
)

// DefaultConfigPath is the config file read when --config is not given.
const DefaultConfigPath = "teawithme.yaml"

// ErrInvalidConfig is returned when a config value cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// =============================================================================
// Configuration
// =============================================================================

// Config holds storefront configuration.
//
// # Description
//
// Values come from an optional YAML file, then environment variables, then
// defaults for whatever is still zero. Durations in YAML use Go syntax
// ("168h", "30m").
//
// # Examples
//
//	// Minimal config (uses all defaults)
//	cfg := Config{}
//
//	// Demo mode without a data directory
//	cfg := Config{Port: 9090, InMemory: true}
type Config struct {
	// Port is the HTTP server port. Default: 8080
	Port int `yaml:"port"`

	// DataDir holds the BadgerDB files. Default: "./data"
	DataDir string `yaml:"data_dir"`

	// InMemory keeps all data in RAM; nothing survives a restart.
	InMemory bool `yaml:"in_memory"`

	// GinMode sets the Gin framework mode: "debug", "release" or "test".
	// Default: "release"
	GinMode string `yaml:"gin_mode"`

	// LogLevel is the minimum log level. Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogDir enables JSON file logging in this directory.
	LogDir string `yaml:"log_dir"`

	// SessionTTL is how long an admin session lasts. Default: 7 days
	SessionTTL time.Duration `yaml:"session_ttl"`

	// CartTTL is how long an untouched cart is kept. Default: 30 days
	CartTTL time.Duration `yaml:"cart_ttl"`

	// CookieSecure marks session and cart cookies Secure.
	CookieSecure bool `yaml:"cookie_secure"`

	// StaticDir, if set, is served under /ui.
	StaticDir string `yaml:"static_dir"`

	// DeliveryFees overrides the fee table. Nil means standard 0,
	// express 15, pickup 0.
	DeliveryFees *orders.DeliveryFees `yaml:"delivery_fees"`

	// Telemetry configures tracing and metrics exporters.
	Telemetry telemetry.Config `yaml:"telemetry"`

	// RateLimit configures the login and checkout limiters.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// BootstrapAdmin is created at startup when no account has its email.
	BootstrapAdmin AdminConfig `yaml:"bootstrap_admin"`

	// BcryptCost is the password hashing cost. Out-of-range values,
	// including zero, mean bcrypt.DefaultCost.
	BcryptCost int `yaml:"bcrypt_cost"`

	// GCInterval is how often BadgerDB's value log is collected.
	// Default: 5 minutes
	GCInterval time.Duration `yaml:"gc_interval"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10 seconds
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Version is reported by /health and telemetry. Set by the binary.
	Version string `yaml:"-"`
}

// RateLimitConfig holds the per-client limits of sensitive endpoints.
type RateLimitConfig struct {
	Login    Limit `yaml:"login"`
	Checkout Limit `yaml:"checkout"`
}

// Limit is a token bucket: RPS tokens per second up to Burst. A negative
// RPS disables the limit.
type Limit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Enabled reports whether the limit applies.
func (l Limit) Enabled() bool {
	return l.RPS >= 0
}

// AdminConfig describes the bootstrap admin account.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Enabled reports whether a bootstrap admin is configured.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// =============================================================================
// Loading
// =============================================================================

// LoadConfig reads path (if non-empty), applies environment overrides and
// fills defaults.
//
// # Outputs
//
//   - Config: the effective configuration
//   - error: the file cannot be read or parsed, or an environment value is
//     malformed (wraps ErrInvalidConfig)
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return applyConfigDefaults(cfg), nil
}

// applyEnvOverrides replaces fields whose environment variable is set.
func applyEnvOverrides(cfg *Config) error {
	if v, ok := os.LookupEnv("TEAWITHME_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%w: TEAWITHME_PORT=%q", ErrInvalidConfig, v)
		}
		cfg.Port = port
	}
	if v, ok := os.LookupEnv("TEAWITHME_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv("TEAWITHME_IN_MEMORY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: TEAWITHME_IN_MEMORY=%q", ErrInvalidConfig, v)
		}
		cfg.InMemory = b
	}
	if v, ok := os.LookupEnv("TEAWITHME_COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: TEAWITHME_COOKIE_SECURE=%q", ErrInvalidConfig, v)
		}
		cfg.CookieSecure = b
	}
	if v, ok := os.LookupEnv("TEAWITHME_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("GIN_MODE"); ok {
		cfg.GinMode = v
	}
	if v, ok := os.LookupEnv("OTEL_TRACES_EXPORTER"); ok {
		cfg.Telemetry.TraceExporter = v
	}
	if v, ok := os.LookupEnv("OTEL_METRICS_EXPORTER"); ok {
		cfg.Telemetry.MetricExporter = v
	}
	if v, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v, ok := os.LookupEnv("TEAWITHME_ADMIN_EMAIL"); ok {
		cfg.BootstrapAdmin.Email = v
	}
	if v, ok := os.LookupEnv("TEAWITHME_ADMIN_PASSWORD"); ok {
		cfg.BootstrapAdmin.Password = v
	}
	return nil
}

// validate rejects values New cannot run with.
func (c Config) validate() error {
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("%w: gin_mode %q", ErrInvalidConfig, c.GinMode)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if c.DeliveryFees.Standard < 0 || c.DeliveryFees.Express < 0 || c.DeliveryFees.Pickup < 0 {
		return fmt.Errorf("%w: negative delivery fee", ErrInvalidConfig)
	}
	return nil
}

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = auth.DefaultSessionTTL
	}
	if cfg.CartTTL <= 0 {
		cfg.CartTTL = cart.DefaultTTL
	}
	if cfg.DeliveryFees == nil {
		fees := orders.DefaultDeliveryFees()
		cfg.DeliveryFees = &fees
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	defaults := telemetry.DefaultConfig()
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = defaults.ServiceName
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = cfg.Version
	}
	if cfg.Telemetry.Environment == "" {
		cfg.Telemetry.Environment = defaults.Environment
	}
	if cfg.Telemetry.TraceExporter == "" {
		cfg.Telemetry.TraceExporter = defaults.TraceExporter
	}
	if cfg.Telemetry.MetricExporter == "" {
		cfg.Telemetry.MetricExporter = defaults.MetricExporter
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		cfg.Telemetry.OTLPEndpoint = defaults.OTLPEndpoint
		cfg.Telemetry.OTLPInsecure = defaults.OTLPInsecure
	}

	// Five attempts, then one per ten seconds.
	if cfg.RateLimit.Login.RPS == 0 {
		cfg.RateLimit.Login = Limit{RPS: 0.1, Burst: 5}
	}
	if cfg.RateLimit.Checkout.RPS == 0 {
		cfg.RateLimit.Checkout = Limit{RPS: 1, Burst: 5}
	}

	if cfg.BootstrapAdmin.Name == "" {
		cfg.BootstrapAdmin.Name = "Admin"
	}
	if cfg.GCInterval == 0 {
		cfg.GCInterval = 5 * time.Minute
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	cfg.GinMode = strings.ToLower(cfg.GinMode)
	return cfg
}
