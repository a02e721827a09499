// Package config loads service configuration from the environment, optionally
// overlaid on a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// Config holds server configuration.
type Config struct {
	Port             string
	LogLevel         string
	PentahoServerURL string
	MaxParams        int

	DatabaseDriver string
	DatabaseURL    string
	RedisAddr      string
	SessionTTL     time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	OTelEnabled  bool
	OTelEndpoint string

	Host HostConfig

	// Formulas maps extra default-value tokens to CEL expressions.
	Formulas map[string]string
}

// HostConfig describes how the reporting server reaches the host
// application and its database.
type HostConfig struct {
	XMLRPCInterface  string `yaml:"xmlrpc_interface"`
	XMLRPCPort       string `yaml:"xmlrpc_port"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresLogin    string `yaml:"postgres_login"`
	PostgresPassword string `yaml:"postgres_password"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:             "8080",
		LogLevel:         "INFO",
		PentahoServerURL: "http://localhost:8090",
		MaxParams:        report.DefaultMaxParams,
		DatabaseDriver:   "sqlite",
		DatabaseURL:      "file:reportprompt.db",
		SessionTTL:       30 * time.Minute,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
		OTelEndpoint:     "localhost:4317",
		Host:             HostConfig{XMLRPCPort: "8069"},
		Formulas:         map[string]string{},
	}
}

// Load loads configuration. Defaults are overlaid by the YAML file named in
// REPORTPROMPT_CONFIG, if any, then by environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("REPORTPROMPT_CONFIG"); path != "" {
		f, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		f.apply(cfg)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxParams < 1 || c.MaxParams > report.MaxParamsCeiling {
		return fmt.Errorf("config: max params %d outside [1, %d]", c.MaxParams, report.MaxParamsCeiling)
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.DatabaseDriver)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("config: rate limit must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("PENTAHO_SERVER_URL", &cfg.PentahoServerURL)
	str("DATABASE_DRIVER", &cfg.DatabaseDriver)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("OTEL_ENDPOINT", &cfg.OTelEndpoint)
	str("HOST_XMLRPC_INTERFACE", &cfg.Host.XMLRPCInterface)
	str("HOST_XMLRPC_PORT", &cfg.Host.XMLRPCPort)
	str("POSTGRES_HOST", &cfg.Host.PostgresHost)
	str("POSTGRES_PORT", &cfg.Host.PostgresPort)
	str("POSTGRES_LOGIN", &cfg.Host.PostgresLogin)
	str("POSTGRES_PASSWORD", &cfg.Host.PostgresPassword)

	if v := os.Getenv("MAX_PARAMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MAX_PARAMS: %w", err)
		}
		cfg.MaxParams = n
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		cfg.OTelEnabled = strings.EqualFold(v, "true")
	}
	return nil
}
