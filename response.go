package aiproxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-openapi/runtime"
)

// emptyObject is the result of a 204 No Content response.
var emptyObject = json.RawMessage(`{}`)

// Response is the buffered result of a successful call.
type Response struct {
	// Status is the HTTP status code (always 2xx).
	Status int

	// Header holds the response headers.
	Header http.Header

	// RequestID is the X-Request-ID sent with the call.
	RequestID string

	// Body is the raw response body. It is valid JSON for JSON calls
	// ({} for 204 No Content) and the raw bytes for binary calls.
	Body []byte
}

// NoContent reports whether the gateway answered 204 No Content.
func (r *Response) NoContent() bool {
	return r.Status == http.StatusNoContent
}

// JSON returns the body as a raw JSON value.
func (r *Response) JSON() json.RawMessage {
	return json.RawMessage(r.Body)
}

// Decode decodes the JSON body into out.
//
// A body that does not match out yields a *[DecodeError], distinct from
// the *[Error] returned for failed calls.
func (r *Response) Decode(out any) error {
	if out == nil {
		return nil
	}
	if err := jsonConsume(r.Body, out); err != nil {
		return &DecodeError{Status: r.Status, Body: r.Body, Err: err}
	}
	return nil
}

// DecodeError is returned when a successful response cannot be decoded
// into the requested type.
type DecodeError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("aiproxy: decoding response (status %d): %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func jsonConsume(body []byte, out any) error {
	return runtime.JSONConsumer().Consume(bytes.NewReader(body), out)
}

func jsonValid(data []byte) bool {
	return json.Valid(data)
}

func jsonProduce(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := runtime.JSONProducer().Produce(&buf, v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func readBytes(r io.Reader) ([]byte, error) {
	var data []byte
	if err := runtime.ByteStreamConsumer().Consume(r, &data); err != nil {
		return nil, err
	}
	return data, nil
}
