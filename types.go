package aiproxy

import (
	"context"
	"net/http"
)

// HealthResponse represents the health status of the gateway.
//
// Use [Client.Health] to retrieve the current health status:
//
//	health, err := client.Health(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %s, Version: %s\n", health.Status, health.Version)
type HealthResponse struct {
	// Status indicates the overall health status.
	// Values: "ok" (healthy) or "error" (unhealthy).
	Status string `json:"status"`

	// Version is the gateway version, e.g. "1.4.2".
	Version string `json:"version"`

	// Components lists the health status of individual components,
	// such as the database or upstream providers.
	Components []ComponentHealth `json:"components,omitempty"`
}

// IsHealthy returns true if the overall status is "ok".
func (h *HealthResponse) IsHealthy() bool {
	return h.Status == StatusOK
}

// Compatibility checks the gateway version against this SDK.
func (h *HealthResponse) Compatibility() CompatibilityResult {
	return CheckCompatibility(h.Version)
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	// Name is the component identifier, e.g. "database".
	Name string `json:"name"`

	// Status indicates the component health: "ok" or "error".
	Status string `json:"status"`

	// Error contains the error message when Status is "error".
	Error string `json:"error,omitempty"`
}

// IsHealthy returns true if the component status is "ok".
func (c *ComponentHealth) IsHealthy() bool {
	return c.Status == StatusOK
}

// HealthStatus constants for convenience.
const (
	// StatusOK indicates the service or component is healthy.
	StatusOK = "ok"

	// StatusError indicates the service or component has an error.
	StatusError = "error"
)

// Model is a model routable through the gateway.
type Model struct {
	// ID is the model identifier used in requests, e.g. "openai/gpt-4o".
	ID string `json:"id"`

	// Object is always "model".
	Object string `json:"object"`

	// Created is the Unix time the model was registered.
	Created int64 `json:"created"`

	// OwnedBy is the upstream provider.
	OwnedBy string `json:"owned_by"`

	// ContextLength is the maximum context window in tokens, if known.
	ContextLength int64 `json:"context_length,omitempty"`
}

// ModelList is the response of [Client.ListModels].
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// Health retrieves the gateway health status.
//
// An unhealthy gateway still answers 200 with Status "error"; a non-nil
// error means the health endpoint itself could not be queried.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.Get(ctx, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// ListModels lists the models available to the configured credentials.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: "/v1/models"})
	if err != nil {
		return nil, err
	}
	var list ModelList
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}
	return list.Data, nil
}
