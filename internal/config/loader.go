package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig     = "AIPROXY_CONFIG"
	EnvBaseURL    = "AIPROXY_BASE_URL"
	EnvAPIKey     = "AIPROXY_API_KEY"
	EnvToken      = "AIPROXY_TOKEN"
	EnvTimeout    = "AIPROXY_TIMEOUT"
	EnvMaxRetries = "AIPROXY_MAX_RETRIES"
	EnvModel      = "AIPROXY_MODEL"
	EnvLogLevel   = "AIPROXY_LOG_LEVEL"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, AIPROXY_CONFIG env, $XDG_CONFIG_HOME/aiproxy/config.yaml)
//  3. AIPROXY_* environment variables
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if path := discoverConfigFile(configPath); path != "" {
		if err := loadYAMLFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// discoverConfigFile returns the first config file found, or "".
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "aiproxy", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadYAMLFile reads path into cfg. Fields absent from the file keep their
// current values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	var result *multierror.Error

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvTimeout, err))
		} else {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", EnvMaxRetries, err))
		} else {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.DefaultModel = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	return result.ErrorOrNil()
}

// resolveFileReferences fills empty secrets from their _file counterparts.
func resolveFileReferences(cfg *Config) error {
	if cfg.APIKeyFile != "" && cfg.APIKey == "" {
		val, err := readSecretFile(cfg.APIKeyFile)
		if err != nil {
			return fmt.Errorf("api_key_file: %w", err)
		}
		cfg.APIKey = val
	}
	if cfg.TokenFile != "" && cfg.Token == "" {
		val, err := readSecretFile(cfg.TokenFile)
		if err != nil {
			return fmt.Errorf("token_file: %w", err)
		}
		cfg.Token = val
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
