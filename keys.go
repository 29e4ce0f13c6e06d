package aiproxy

import (
	"context"
	"time"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// ProxyKey is a gateway credential handed to downstream applications.
//
// The secret Key is only returned by [Client.CreateKey]; later reads carry
// the Prefix alone.
type ProxyKey struct {
	// ID is the key identifier used in paths.
	ID string `json:"id"`

	// Name is a human-readable label.
	Name string `json:"name"`

	// Key is the full secret. Only set on creation.
	Key string `json:"key,omitempty"`

	// Prefix is the first characters of the secret, for display.
	Prefix string `json:"prefix"`

	// Models restricts the key to these model ids. Empty means all models.
	Models []string `json:"models,omitempty"`

	// RateLimit is the allowed requests per minute, 0 for unlimited.
	RateLimit int64 `json:"rate_limit,omitempty"`

	// Disabled keys are rejected with 401.
	Disabled bool `json:"disabled"`

	// ExpiresAt is when the key stops working, if set.
	ExpiresAt *strfmt.DateTime `json:"expires_at,omitempty"`

	// CreatedAt is when the key was created.
	CreatedAt strfmt.DateTime `json:"created_at"`

	// LastUsedAt is the time of the last authenticated request.
	LastUsedAt *strfmt.DateTime `json:"last_used_at,omitempty"`
}

// IsExpired reports whether the key has an expiry in the past.
func (k *ProxyKey) IsExpired(now strfmt.DateTime) bool {
	if k.ExpiresAt == nil {
		return false
	}
	return !time.Time(now).Before(time.Time(*k.ExpiresAt))
}

// KeyList is a page of keys.
type KeyList struct {
	Data   []ProxyKey `json:"data"`
	Total  int64      `json:"total"`
	Limit  int64      `json:"limit"`
	Offset int64      `json:"offset"`
}

// HasMore reports whether more keys follow this page.
func (l *KeyList) HasMore() bool {
	return l.Offset+int64(len(l.Data)) < l.Total
}

// ListKeysParams are the optional parameters of [Client.ListKeys].
type ListKeysParams struct {
	// Limit is the page size, between 1 and 100.
	Limit *int64

	// Offset is the number of keys to skip.
	Offset *int64
}

// Validate validates the list parameters.
func (p *ListKeysParams) Validate(formats strfmt.Registry) error {
	var res []error

	if p.Limit != nil {
		if err := validate.MinimumInt("limit", "query", *p.Limit, 1, false); err != nil {
			res = append(res, err)
		}
		if err := validate.MaximumInt("limit", "query", *p.Limit, 100, false); err != nil {
			res = append(res, err)
		}
	}
	if p.Offset != nil {
		if err := validate.MinimumInt("offset", "query", *p.Offset, 0, false); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (p *ListKeysParams) query() Query {
	if p == nil {
		return nil
	}
	return Query{}.
		Set("limit", p.Limit).
		Set("offset", p.Offset)
}

// CreateKeyRequest creates a proxy key. Also used by [Client.ReplaceKey].
type CreateKeyRequest struct {
	// Name is a human-readable label. Required.
	Name string `json:"name"`

	// Models restricts the key to these model ids.
	Models []string `json:"models,omitempty"`

	// RateLimit is the allowed requests per minute, 0 for unlimited.
	RateLimit int64 `json:"rate_limit,omitempty"`

	// ExpiresAt is when the key stops working.
	ExpiresAt *strfmt.DateTime `json:"expires_at,omitempty"`
}

// Validate validates this create key request.
func (m *CreateKeyRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("name", "body", m.Name); err != nil {
		res = append(res, err)
	} else if err := validate.MaxLength("name", "body", m.Name, 128); err != nil {
		res = append(res, err)
	}
	if err := validate.MinimumInt("rate_limit", "body", m.RateLimit, 0, false); err != nil {
		res = append(res, err)
	}
	if err := validate.UniqueItems("models", "body", m.Models); err != nil {
		res = append(res, err)
	}
	if m.ExpiresAt != nil {
		if err := validate.FormatOf("expires_at", "body", "date-time", m.ExpiresAt.String(), formats); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// UpdateKeyRequest changes selected fields of a key. Nil fields are left
// unchanged.
//
//	key, err := client.UpdateKey(ctx, "key_123", &aiproxy.UpdateKeyRequest{
//	    Disabled: swag.Bool(true),
//	})
type UpdateKeyRequest struct {
	Name      *string  `json:"name,omitempty"`
	Models    []string `json:"models,omitempty"`
	RateLimit *int64   `json:"rate_limit,omitempty"`
	Disabled  *bool    `json:"disabled,omitempty"`
}

// Validate validates this update key request.
func (m *UpdateKeyRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if m.Name != nil {
		if err := validate.MinLength("name", "body", swag.StringValue(m.Name), 1); err != nil {
			res = append(res, err)
		}
	}
	if m.RateLimit != nil {
		if err := validate.MinimumInt("rate_limit", "body", swag.Int64Value(m.RateLimit), 0, false); err != nil {
			res = append(res, err)
		}
	}
	if m.Name == nil && m.Models == nil && m.RateLimit == nil && m.Disabled == nil {
		res = append(res, errors.Required("body", "body", m))
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// ListKeys lists proxy keys. params may be nil.
func (c *Client) ListKeys(ctx context.Context, params *ListKeysParams) (*KeyList, error) {
	if params != nil {
		if err := validateRequest(params, false); err != nil {
			return nil, err
		}
	}
	var list KeyList
	if err := c.Get(ctx, "/keys", params.query(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateKey creates a proxy key. The returned key carries the secret, which
// cannot be retrieved again.
func (c *Client) CreateKey(ctx context.Context, req *CreateKeyRequest) (*ProxyKey, error) {
	if err := validateRequest(req, req == nil); err != nil {
		return nil, err
	}
	var key ProxyKey
	if err := c.Post(ctx, "/keys", req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// GetKey retrieves a proxy key by ID.
func (c *Client) GetKey(ctx context.Context, id string) (*ProxyKey, error) {
	seg, err := pathSegment("key id", id)
	if err != nil {
		return nil, err
	}
	var key ProxyKey
	if err := c.Get(ctx, "/keys/"+seg, nil, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// UpdateKey applies a partial update to a proxy key.
func (c *Client) UpdateKey(ctx context.Context, id string, req *UpdateKeyRequest) (*ProxyKey, error) {
	seg, err := pathSegment("key id", id)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req, req == nil); err != nil {
		return nil, err
	}
	var key ProxyKey
	if err := c.Patch(ctx, "/keys/"+seg, req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// ReplaceKey replaces every mutable field of a proxy key. The secret is kept.
func (c *Client) ReplaceKey(ctx context.Context, id string, req *CreateKeyRequest) (*ProxyKey, error) {
	seg, err := pathSegment("key id", id)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req, req == nil); err != nil {
		return nil, err
	}
	var key ProxyKey
	if err := c.Put(ctx, "/keys/"+seg, req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// DeleteKey revokes a proxy key. The gateway answers 204 No Content.
func (c *Client) DeleteKey(ctx context.Context, id string) error {
	seg, err := pathSegment("key id", id)
	if err != nil {
		return err
	}
	return c.Delete(ctx, "/keys/"+seg, nil)
}
