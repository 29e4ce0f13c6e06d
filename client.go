package aiproxy

import (
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultBaseURL is the production gateway URL.
	DefaultBaseURL = "https://api.aiproxy.dev"

	defaultTimeout = 30 * time.Second
)

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig is the immutable configuration of a [Client].
//
// Use [Client.Config] to inspect it and [Client.WithCredentials] or
// [Client.With] to derive a client with different settings.
type ClientConfig struct {
	// BaseURL is the gateway URL without a trailing slash.
	BaseURL string

	// APIKey is a proxy key, sent as a bearer credential.
	APIKey string

	// Token is a session token. It takes precedence over APIKey.
	Token string

	// Timeout bounds each attempt of a buffered call and the connection
	// phase of a stream.
	Timeout time.Duration

	// Retry controls retries of buffered calls.
	Retry RetryPolicy

	// UserAgent is sent with every request.
	UserAgent string

	// HTTPClient sends the requests.
	HTTPClient Doer
}

// Client is the gateway API client.
//
// A Client holds only immutable configuration and is safe for concurrent
// use by multiple goroutines.
type Client struct {
	cfg     ClientConfig
	logger  hclog.Logger
	metrics *Metrics

	// noHTTPClient records an explicit WithHTTPClient(nil).
	noHTTPClient bool
}

// NewClient creates a new gateway client.
//
// Without options the client talks to [DefaultBaseURL] with a 30s timeout
// and 3 retries:
//
//	client, err := aiproxy.NewClient(
//	    aiproxy.WithBaseURL("https://gateway.internal"),
//	    aiproxy.WithAPIKey(os.Getenv("AIPROXY_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		cfg: ClientConfig{
			BaseURL:    DefaultBaseURL,
			Timeout:    defaultTimeout,
			Retry:      DefaultRetryPolicy(),
			UserAgent:  "aiproxy-go/" + Version,
			HTTPClient: &http.Client{},
		},
		logger: hclog.NewNullLogger(),
	}
	return c.apply(opts)
}

func (c *Client) apply(opts []Option) (*Client, error) {
	for _, opt := range opts {
		opt(c)
	}

	if c.noHTTPClient || c.cfg.HTTPClient == nil {
		return nil, ErrNoHTTPClient
	}
	if c.cfg.Timeout <= 0 {
		return nil, newError(CodeBadRequest, "timeout must be positive", 0, nil)
	}
	if c.cfg.Retry.MaxRetries < 0 {
		return nil, newError(CodeBadRequest, "max retries must not be negative", 0, nil)
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = DefaultBaseURL
	}
	c.cfg.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	return c, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() ClientConfig {
	return c.cfg
}

// With returns a new client with opts applied on top of this client's
// configuration. The receiver is left unchanged.
//
//	slow, err := client.With(aiproxy.WithTimeout(2 * time.Minute))
func (c *Client) With(opts ...Option) (*Client, error) {
	clone := &Client{
		cfg:     c.cfg,
		logger:  c.logger,
		metrics: c.metrics,
	}
	return clone.apply(opts)
}

// WithCredentials returns a new client using apiKey and token, with every
// other setting copied unchanged. Empty values clear the credential.
//
//	userClient := client.WithCredentials("", sessionToken)
func (c *Client) WithCredentials(apiKey, token string) *Client {
	clone := *c
	clone.cfg.APIKey = apiKey
	clone.cfg.Token = token
	return &clone
}
