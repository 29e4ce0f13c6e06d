package aiproxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxErrorBodySize limits the size of error response bodies read from the gateway.
const maxErrorBodySize = 64 * 1024

// attemptResult is the outcome of one attempt. Exactly one of resp and err is set.
type attemptResult struct {
	resp  *Response
	err   *Error
	retry bool
}

// Do executes req with the client's timeout and retry policy.
//
// A 204 response yields a [Response] with an empty JSON object body; any
// other 2xx body must be valid JSON. Failures are returned as *[Error].
//
//	resp, err := client.Do(ctx, &aiproxy.Request{
//	    Method: http.MethodGet,
//	    Path:   "/v1/models",
//	})
//	if err != nil {
//	    return err
//	}
//	var list aiproxy.ModelList
//	if err := resp.Decode(&list); err != nil {
//	    return err
//	}
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, newError(CodeBadRequest, "request is required", 400, nil)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body []byte
	if req.Body != nil {
		b, err := jsonProduce(req.Body)
		if err != nil {
			return nil, newError(CodeBadRequest, "failed to encode request body", 400, err)
		}
		body = b
	}

	accept := ""
	if req.binary {
		accept = anyMime
	}
	header := c.buildHeader(accept, req.Header)
	requestID := header.Get(headerRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
		header.Set(headerRequestID, requestID)
	}
	url := c.buildURL(req.Path, req.Query)

	logger := c.logger.Named("transport").With("method", method, "path", req.Path, "request_id", requestID)
	schedule := c.cfg.Retry.newBackOff()
	attempts := c.cfg.Retry.Attempts()

	for attempt := 0; ; attempt++ {
		logger.Debug("sending request", "attempt", attempt)

		res := c.attempt(ctx, method, url, header, body, req.binary)
		if res.err == nil {
			res.resp.RequestID = requestID
			return res.resp, nil
		}
		res.err.RequestID = requestID

		if !res.retry || attempt+1 >= attempts {
			return nil, res.err
		}

		delay := schedule.NextBackOff()
		logger.Warn("retrying request",
			"attempt", attempt,
			"status", res.err.Status,
			"error", res.err.Message,
			"delay", delay,
		)
		c.metrics.observeRetry(method)
		if err := sleep(ctx, delay); err != nil {
			failure := backoffFailure(err, res.err)
			failure.RequestID = requestID
			return nil, failure
		}
	}
}

// attempt performs one round trip under its own timeout. The timeout is
// released before attempt returns, so it can never fire into a later attempt.
func (c *Client) attempt(ctx context.Context, method, url string, header http.Header, body []byte, binary bool) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return attemptResult{err: newError(CodeBadRequest, "failed to create request", 400, err)}
	}
	httpReq.Header = header.Clone()

	start := time.Now()
	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		c.metrics.observeAttempt(method, 0, time.Since(start))
		return c.transportFailure(ctx, attemptCtx, err)
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		c.metrics.observeAttempt(method, resp.StatusCode, time.Since(start))
		return attemptResult{
			err:   errorFromResponse(resp.StatusCode, data),
			retry: resp.StatusCode >= 500,
		}
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header}
	if resp.StatusCode == http.StatusNoContent {
		out.Body = emptyObject
		c.metrics.observeAttempt(method, resp.StatusCode, time.Since(start))
		return attemptResult{resp: out}
	}

	data, err := readBytes(resp.Body)
	c.metrics.observeAttempt(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return c.transportFailure(ctx, attemptCtx, err)
	}
	if !binary {
		if len(bytes.TrimSpace(data)) == 0 {
			data = emptyObject
		} else if !jsonValid(data) {
			return attemptResult{err: &Error{
				Code:    "INVALID_RESPONSE",
				Message: "response body is not valid JSON",
				Status:  resp.StatusCode,
			}}
		}
	}
	out.Body = data
	return attemptResult{resp: out}
}

// backoffFailure classifies a context error raised while waiting to retry.
// The last attempt's error stays reachable through the cause.
func backoffFailure(err error, last *Error) *Error {
	cause := errors.Join(err, last)
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(CodeTimeout, "Request timeout", http.StatusRequestTimeout, cause)
	}
	return newError(CodeCanceled, err.Error(), 0, cause)
}

// transportFailure classifies an error raised before a complete response was read.
func (c *Client) transportFailure(ctx, attemptCtx context.Context, err error) attemptResult {
	switch {
	case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		return attemptResult{err: newError(CodeTimeout, "Request timeout", http.StatusRequestTimeout, err)}
	case ctx.Err() != nil:
		return attemptResult{err: newError(CodeCanceled, ctx.Err().Error(), 0, err)}
	default:
		return attemptResult{
			err:   newError(CodeNetwork, err.Error(), 0, err),
			retry: true,
		}
	}
}

// Get issues a GET request and decodes the JSON response into out.
// out may be nil to discard the body.
func (c *Client) Get(ctx context.Context, path string, query Query, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out, opts)
}

// Post issues a POST request with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out, opts)
}

// Put issues a PUT request with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out, opts)
}

// Patch issues a PATCH request with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, &Request{Method: http.MethodDelete, Path: path}, out, opts)
}

// GetBinary issues a GET request and returns the raw response.
func (c *Client) GetBinary(ctx context.Context, path string, query Query, opts ...RequestOption) (*Response, error) {
	req := &Request{Method: http.MethodGet, Path: path, Query: query, binary: true}
	for _, opt := range opts {
		opt(req)
	}
	return c.Do(ctx, req)
}

// PostBinary issues a POST request with a JSON body and returns the raw response,
// e.g. generated audio.
func (c *Client) PostBinary(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	req := &Request{Method: http.MethodPost, Path: path, Body: body, binary: true}
	for _, opt := range opts {
		opt(req)
	}
	return c.Do(ctx, req)
}

func (c *Client) doJSON(ctx context.Context, req *Request, out any, opts []RequestOption) error {
	for _, opt := range opts {
		opt(req)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
