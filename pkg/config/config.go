// Package config provides unified configuration for the alchemy binaries.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (ALCHEMY_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/rhuss/alchemy/pkg/alchemy"
)

// Config holds all configuration for the alchemy CLI and mock backend.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Logging       LoggingConfig       `yaml:"logging"`
	Mock          MockConfig          `yaml:"mock"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServiceConfig holds settings for talking to the analysis service.
type ServiceConfig struct {
	APIKey     string        `yaml:"api_key"`      // 40 characters
	APIKeyFile string        `yaml:"api_key_file"` // _file variant for api_key
	BaseURL    string        `yaml:"base_url"`     // default: alchemy.DefaultBaseURL
	Timeout    time.Duration `yaml:"timeout"`      // default: 60s, 0 disables
	RateLimit  float64       `yaml:"rate_limit"`   // requests per second, 0 disables
	Burst      int           `yaml:"burst"`        // default: 1
}

// LoggingConfig holds debug logging settings. ALCHEMY_DEBUG and
// ALCHEMY_LOG_LEVEL still win over these at runtime.
type LoggingConfig struct {
	Debug  string `yaml:"debug"`  // comma separated categories
	Level  string `yaml:"level"`  // default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
}

// MockConfig holds settings for the fake service binary.
type MockConfig struct {
	Port   int    `yaml:"port"`    // default: 8090
	APIKey string `yaml:"api_key"` // empty accepts any well-formed key
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL: alchemy.DefaultBaseURL,
			Timeout: 60 * time.Second,
			Burst:   1,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Mock: MockConfig{
			Port: 8090,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// ClientConfig converts the service section into a client configuration.
func (c *Config) ClientConfig() alchemy.Config {
	return alchemy.Config{
		APIKey:    c.Service.APIKey,
		BaseURL:   c.Service.BaseURL,
		Timeout:   c.Service.Timeout,
		RateLimit: c.Service.RateLimit,
		Burst:     c.Service.Burst,
	}
}
