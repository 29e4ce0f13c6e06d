package aiproxy

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
)

// Error represents a failed gateway call.
//
// Every buffered or streaming call returns failures as *Error, so callers
// can branch on the outcome:
//
//   - Status > 0 with a Code: the gateway answered with an error payload
//   - Status == 408: the client gave up waiting ([ErrTimeout])
//   - Status == 0: the gateway could not be reached ([ErrNetwork])
//   - Status >= 500: the gateway kept failing after all retries
//
// Example:
//
//	_, err := client.GetKey(ctx, "key_123")
//	var apiErr *aiproxy.Error
//	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
//	    // Handle missing key
//	}
type Error struct {
	// Code is the machine-readable error code, e.g. "NOT_FOUND".
	// Gateway error payloads may omit it.
	Code string

	// Message is the human-readable error message.
	Message string

	// Status is the HTTP status code, 408 for client timeouts and
	// 0 when no response was received.
	Status int

	// Details holds the optional structured details of the error payload.
	Details map[string]any

	// RequestID is the X-Request-ID sent with the failing call.
	RequestID string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("aiproxy: %s: %v", msg, e.Cause)
	}
	return "aiproxy: " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a sentinel with the same code.
//
//	if errors.Is(err, aiproxy.ErrTimeout) { ... }
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return t.Status != 0 && e.Status == t.Status
}

// DecodeDetails decodes the error details into out, which must be a pointer
// to a struct. Snake-case detail keys match the corresponding Go field names,
// so "retry_after_ms" populates a RetryAfterMs field.
//
// Example:
//
//	var details struct {
//	    Provider     string
//	    RetryAfterMs int
//	}
//	if err := apiErr.DecodeDetails(&details); err != nil { ... }
func (e *Error) DecodeDetails(out any) error {
	if len(e.Details) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName || strcase.ToCamel(mapKey) == fieldName
		},
	})
	if err != nil {
		return err
	}
	return dec.Decode(e.Details)
}

// Error codes set by the client itself. Codes in gateway payloads are passed
// through unchanged.
const (
	CodeTimeout      = "TIMEOUT"
	CodeNetwork      = "NETWORK_ERROR"
	CodeCanceled     = "CANCELED"
	CodeNoHTTPClient = "NO_HTTP_CLIENT"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNoBody       = "NO_RESPONSE_BODY"
)

// Sentinel errors.
var (
	ErrNotFound     = &Error{Code: "NOT_FOUND", Message: "resource not found", Status: 404}
	ErrTimeout      = &Error{Code: CodeTimeout, Message: "Request timeout", Status: 408}
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "invalid credentials", Status: 401}
	ErrBadRequest   = &Error{Code: CodeBadRequest, Message: "invalid request", Status: 400}
	ErrInternal     = &Error{Code: "INTERNAL", Message: "internal server error", Status: 500}
	ErrNetwork      = &Error{Code: CodeNetwork, Message: "gateway unreachable"}
	ErrCanceled     = &Error{Code: CodeCanceled, Message: "request canceled"}
)

// ErrNoHTTPClient is returned by [NewClient] when the HTTP client was
// explicitly set to nil.
var ErrNoHTTPClient = &Error{Code: CodeNoHTTPClient, Message: "no HTTP client available"}

func newError(code, message string, status int, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Cause:   cause,
	}
}

// errorPayload is the gateway's error body: { error, code?, details? }.
type errorPayload struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// errorFromResponse builds an *Error from a non-2xx response body. Bodies that
// are not a JSON error payload fall back to the status text.
func errorFromResponse(status int, body []byte) *Error {
	e := &Error{Status: status}

	var payload errorPayload
	if len(body) > 0 && jsonConsume(body, &payload) == nil && payload.Error != "" {
		e.Message = payload.Error
		e.Code = payload.Code
		e.Details = payload.Details
		return e
	}

	e.Message = http.StatusText(status)
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	return e
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsTimeout reports whether err is a client-side timeout (status 408).
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsNetworkError reports whether err means the gateway could not be reached.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsRetryable reports whether the transport would retry a call failing with err.
func IsRetryable(err error) bool {
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}
	return apiErr.Status >= 500 || apiErr.Code == CodeNetwork
}
