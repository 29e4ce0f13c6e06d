package config

import (
	"fmt"
	"net/url"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		result = multierror.Append(result,
			fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.Timeout <= 0 {
		result = multierror.Append(result,
			fmt.Errorf("timeout must be > 0, got %s", c.Timeout))
	}
	if c.MaxRetries < 0 {
		result = multierror.Append(result,
			fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result,
			fmt.Errorf("log_level must be one of trace, debug, info, warn, error, off, got %q", c.LogLevel))
	}

	return result.ErrorOrNil()
}
