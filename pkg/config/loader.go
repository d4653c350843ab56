package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/alchemy/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, ALCHEMY_CONFIG env, ./alchemy.yaml, /etc/alchemy/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. ALCHEMY_CONFIG environment variable
// 3. ./alchemy.yaml in the current directory
// 4. /etc/alchemy/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("ALCHEMY_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"alchemy.yaml",
		"/etc/alchemy/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps ALCHEMY_* environment variables to config fields.
// Malformed numeric, duration and boolean values are reported rather than
// silently ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ALCHEMY_API_KEY"); v != "" {
		cfg.Service.APIKey = v
	}
	if v := os.Getenv("ALCHEMY_API_KEY_FILE"); v != "" {
		cfg.Service.APIKeyFile = v
	}
	if v := os.Getenv("ALCHEMY_BASE_URL"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := os.Getenv("ALCHEMY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ALCHEMY_TIMEOUT: %w", err)
		}
		cfg.Service.Timeout = d
	}
	if v := os.Getenv("ALCHEMY_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ALCHEMY_RATE_LIMIT: %w", err)
		}
		cfg.Service.RateLimit = limit
	}
	if v := os.Getenv("ALCHEMY_MOCK_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ALCHEMY_MOCK_PORT: %w", err)
		}
		cfg.Mock.Port = port
	}
	if v := os.Getenv("ALCHEMY_MOCK_API_KEY"); v != "" {
		cfg.Mock.APIKey = v
	}
	if v := os.Getenv("ALCHEMY_METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALCHEMY_METRICS_ENABLED: %w", err)
		}
		cfg.Observability.Metrics.Enabled = enabled
	}
	if v := os.Getenv("ALCHEMY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// The file is only read when the value field is empty.
func resolveFileReferences(cfg *Config) error {
	if cfg.Service.APIKeyFile != "" && cfg.Service.APIKey == "" {
		val, err := readSecretFile(cfg.Service.APIKeyFile)
		if err != nil {
			return fmt.Errorf("service.api_key_file: %w", err)
		}
		cfg.Service.APIKey = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
