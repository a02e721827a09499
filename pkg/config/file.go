package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file. Unset keys leave the defaults alone.
type File struct {
	Port             string            `yaml:"port"`
	LogLevel         string            `yaml:"log_level"`
	PentahoServerURL string            `yaml:"pentaho_server_url"`
	MaxParams        *int              `yaml:"max_params"`
	DatabaseDriver   string            `yaml:"database_driver"`
	DatabaseURL      string            `yaml:"database_url"`
	RedisAddr        string            `yaml:"redis_addr"`
	SessionTTL       string            `yaml:"session_ttl"`
	RateLimitRPS     float64           `yaml:"rate_limit_rps"`
	RateLimitBurst   int               `yaml:"rate_limit_burst"`
	OTelEnabled      *bool             `yaml:"otel_enabled"`
	OTelEndpoint     string            `yaml:"otel_endpoint"`
	Host             HostConfig        `yaml:"host"`
	Formulas         map[string]string `yaml:"formulas"`

	sessionTTL time.Duration
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if f.SessionTTL != "" {
		f.sessionTTL, err = time.ParseDuration(f.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("parse config %q: session_ttl: %w", path, err)
		}
	}
	return &f, nil
}

func (f *File) apply(cfg *Config) {
	set := func(v string, dst *string) {
		if v != "" {
			*dst = v
		}
	}
	set(f.Port, &cfg.Port)
	set(f.LogLevel, &cfg.LogLevel)
	set(f.PentahoServerURL, &cfg.PentahoServerURL)
	set(f.DatabaseDriver, &cfg.DatabaseDriver)
	set(f.DatabaseURL, &cfg.DatabaseURL)
	set(f.RedisAddr, &cfg.RedisAddr)
	set(f.OTelEndpoint, &cfg.OTelEndpoint)
	set(f.Host.XMLRPCInterface, &cfg.Host.XMLRPCInterface)
	set(f.Host.XMLRPCPort, &cfg.Host.XMLRPCPort)
	set(f.Host.PostgresHost, &cfg.Host.PostgresHost)
	set(f.Host.PostgresPort, &cfg.Host.PostgresPort)
	set(f.Host.PostgresLogin, &cfg.Host.PostgresLogin)
	set(f.Host.PostgresPassword, &cfg.Host.PostgresPassword)

	if f.MaxParams != nil {
		cfg.MaxParams = *f.MaxParams
	}
	if f.sessionTTL != 0 {
		cfg.SessionTTL = f.sessionTTL
	}
	if f.RateLimitRPS != 0 {
		cfg.RateLimitRPS = f.RateLimitRPS
	}
	if f.RateLimitBurst != 0 {
		cfg.RateLimitBurst = f.RateLimitBurst
	}
	if f.OTelEnabled != nil {
		cfg.OTelEnabled = *f.OTelEnabled
	}
	for token, expr := range f.Formulas {
		cfg.Formulas[token] = expr
	}
}
