package aiproxy

import (
	"context"
	"net/http"
	"time"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

// LogEntry is one request recorded by the gateway.
type LogEntry struct {
	ID        string            `json:"id"`
	RequestID string            `json:"request_id"`
	KeyID     string            `json:"key_id"`
	Model     string            `json:"model"`
	Provider  string            `json:"provider"`
	Status    int               `json:"status"`
	LatencyMs int64             `json:"latency_ms"`
	Usage     *Usage            `json:"usage,omitempty"`
	Cost      float64           `json:"cost,omitempty"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt strfmt.DateTime   `json:"created_at"`
}

// Failed reports whether the logged request did not succeed.
func (e *LogEntry) Failed() bool {
	return e.Status >= 400 || e.Error != ""
}

// LogList is a page of log entries.
type LogList struct {
	Data   []LogEntry `json:"data"`
	Total  int64      `json:"total"`
	Limit  int64      `json:"limit"`
	Offset int64      `json:"offset"`
}

// ListLogsParams filters [Client.ListLogs]. Nil fields are not sent.
type ListLogsParams struct {
	KeyID  *string
	Model  *string
	Status *int64

	// Since and Until bound CreatedAt.
	Since *strfmt.DateTime
	Until *strfmt.DateTime

	Limit  *int64
	Offset *int64
}

// Validate validates the filters.
func (p *ListLogsParams) Validate(formats strfmt.Registry) error {
	var res []error

	if p.Status != nil {
		if err := validate.MinimumInt("status", "query", *p.Status, 100, false); err != nil {
			res = append(res, err)
		}
		if err := validate.MaximumInt("status", "query", *p.Status, 599, false); err != nil {
			res = append(res, err)
		}
	}
	if p.Limit != nil {
		if err := validate.MinimumInt("limit", "query", *p.Limit, 1, false); err != nil {
			res = append(res, err)
		}
		if err := validate.MaximumInt("limit", "query", *p.Limit, 500, false); err != nil {
			res = append(res, err)
		}
	}
	if p.Offset != nil {
		if err := validate.MinimumInt("offset", "query", *p.Offset, 0, false); err != nil {
			res = append(res, err)
		}
	}
	if p.Since != nil && p.Until != nil && time.Time(*p.Until).Before(time.Time(*p.Since)) {
		res = append(res, errors.New(http.StatusUnprocessableEntity, "until must not be before since"))
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (p *ListLogsParams) query() Query {
	if p == nil {
		return nil
	}
	return Query{}.
		Set("key_id", p.KeyID).
		Set("model", p.Model).
		Set("status", p.Status).
		Set("since", p.Since).
		Set("until", p.Until).
		Set("limit", p.Limit).
		Set("offset", p.Offset)
}

// ListLogs lists request logs, newest first. params may be nil.
//
//	logs, err := client.ListLogs(ctx, &aiproxy.ListLogsParams{
//	    Model: swag.String("openai/gpt-4o"),
//	    Limit: swag.Int64(50),
//	})
func (c *Client) ListLogs(ctx context.Context, params *ListLogsParams) (*LogList, error) {
	if params != nil {
		if err := validateRequest(params, false); err != nil {
			return nil, err
		}
	}
	var list LogList
	if err := c.Get(ctx, "/logs", params.query(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}
