package aiproxy

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/swag"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	headerUserAgent     = "User-Agent"
	eventStreamMime     = "text/event-stream"
	anyMime             = "*/*"
)

// Request describes a single gateway call.
//
// Resource methods build a Request and hand it to [Client.Do]; most callers
// use the shorthand methods ([Client.Get], [Client.Post], ...) instead.
type Request struct {
	// Method is the HTTP method. Defaults to GET.
	Method string

	// Path is resolved against the client's base URL, e.g. "/v1/models".
	Path string

	// Query holds the query parameters, encoded in insertion order.
	Query Query

	// Body is JSON-encoded when non-nil.
	Body any

	// Header holds extra headers merged over the defaults.
	// Authorization is always overwritten by configured credentials.
	Header http.Header

	binary bool
}

// RequestOption customizes a single call.
type RequestOption func(*Request)

// WithHeader sets an extra header on the call.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
	}
}

// WithHeaders merges h into the call's extra headers.
func WithHeaders(h http.Header) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		for k, vv := range h {
			r.Header.Del(k)
			for _, v := range vv {
				r.Header.Add(k, v)
			}
		}
	}
}

// WithRequestID sets the X-Request-ID of the call instead of a generated one.
func WithRequestID(id string) RequestOption {
	return WithHeader(headerRequestID, id)
}

// QueryParam is a single query parameter. A nil Value (or a nil pointer)
// omits the parameter.
type QueryParam struct {
	Key   string
	Value any
}

// Query is an ordered list of query parameters.
//
//	q := aiproxy.Query{}.
//	    Set("limit", 20).
//	    Set("model", params.Model) // *string, omitted when nil
type Query []QueryParam

// Set returns q with key set to value, replacing an existing entry in place.
func (q Query) Set(key string, value any) Query {
	for i := range q {
		if q[i].Key == key {
			q[i].Value = value
			return q
		}
	}
	return append(q, QueryParam{Key: key, Value: value})
}

// Encode renders the parameters in insertion order, skipping absent values.
func (q Query) Encode() string {
	var b strings.Builder
	for _, p := range q {
		v, ok := formatQueryValue(p.Value)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String()
}

func formatQueryValue(v any) (string, bool) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case *string:
		return swag.StringValue(val), true
	case bool:
		return swag.FormatBool(val), true
	case *bool:
		return swag.FormatBool(swag.BoolValue(val)), true
	case int:
		return swag.FormatInt64(int64(val)), true
	case *int:
		return swag.FormatInt64(int64(*val)), true
	case int32:
		return swag.FormatInt32(val), true
	case int64:
		return swag.FormatInt64(val), true
	case *int64:
		return swag.FormatInt64(swag.Int64Value(val)), true
	case uint:
		return swag.FormatUint64(uint64(val)), true
	case uint64:
		return swag.FormatUint64(val), true
	case float32:
		return swag.FormatFloat32(val), true
	case float64:
		return swag.FormatFloat64(val), true
	case *float64:
		return swag.FormatFloat64(swag.Float64Value(val)), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// buildURL joins the base URL, the path and the encoded query.
func (c *Client) buildURL(path string, q Query) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.cfg.BaseURL + path
	if enc := q.Encode(); enc != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + enc
	}
	return u
}

// buildHeader assembles the outgoing headers: defaults, then caller headers,
// then credentials.
func (c *Client) buildHeader(accept string, extra http.Header) http.Header {
	h := make(http.Header)
	h.Set(runtime.HeaderContentType, runtime.JSONMime)
	h.Set(runtime.HeaderAccept, runtime.JSONMime)
	h.Set(headerUserAgent, c.cfg.UserAgent)

	for k, vv := range extra {
		h.Del(k)
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	if accept != "" {
		h.Set(runtime.HeaderAccept, accept)
	}

	if c.cfg.APIKey != "" {
		h.Set(headerAuthorization, "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.Token != "" {
		h.Set(headerAuthorization, "Bearer "+c.cfg.Token)
	}
	return h
}
