// Package config loads the command-line client configuration.
package config

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/tomblancdev/aiproxy-go"
)

// Config is the command-line client configuration.
type Config struct {
	// BaseURL is the gateway URL.
	BaseURL string `yaml:"base_url"`

	// APIKey is a proxy key. APIKeyFile names a file holding it instead.
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"`

	// Token is a session token. TokenFile names a file holding it instead.
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`

	// Timeout bounds each request attempt.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for failed requests.
	MaxRetries int `yaml:"max_retries"`

	// DefaultModel is used by the chat command when -model is not given.
	DefaultModel string `yaml:"default_model"`

	// LogLevel is an hclog level name.
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:    aiproxy.DefaultBaseURL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		LogLevel:   "warn",
	}
}

// ClientOptions returns the client options for this configuration.
func (c *Config) ClientOptions(logger hclog.Logger) []aiproxy.Option {
	return []aiproxy.Option{
		aiproxy.WithBaseURL(c.BaseURL),
		aiproxy.WithAPIKey(c.APIKey),
		aiproxy.WithToken(c.Token),
		aiproxy.WithTimeout(c.Timeout),
		aiproxy.WithRetries(c.MaxRetries),
		aiproxy.WithLogger(logger),
	}
}
