package aiproxy

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the gateway URL. A trailing slash is removed.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.cfg.BaseURL = baseURL
	}
}

// WithAPIKey sets the proxy key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.cfg.APIKey = key
	}
}

// WithToken sets the session token. It takes precedence over the proxy key.
func WithToken(token string) Option {
	return func(c *Client) {
		c.cfg.Token = token
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.cfg.Timeout = d
	}
}

// WithRetries sets the maximum number of retries for failed requests.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.cfg.Retry.MaxRetries = n
	}
}

// WithBackoff sets the delay before the first retry and the delay cap.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.cfg.Retry.InitialDelay = initial
		c.cfg.Retry.MaxDelay = max
	}
}

// WithHTTPClient sets a custom HTTP client. Passing nil makes [NewClient]
// fail with [ErrNoHTTPClient].
func WithHTTPClient(httpClient Doer) Option {
	return func(c *Client) {
		c.cfg.HTTPClient = httpClient
		c.noHTTPClient = httpClient == nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.cfg.UserAgent = ua
	}
}

// WithLogger sets the logger. Requests are logged at debug level and
// retries at warn level.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics registers client metrics with reg.
// Registering twice with the same registry reuses the existing collectors.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = NewMetrics(reg)
	}
}
