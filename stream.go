package aiproxy

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// maxLineSize limits a single event-stream line to prevent memory exhaustion
// from servers that never send a newline.
const maxLineSize = 10 * 1024 * 1024 // 10MB

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Stream is a live sequence of event-stream payloads.
//
// Each payload is the raw text after "data: " on one line, typically a JSON
// document. The sequence ends at the "[DONE]" sentinel or when the gateway
// closes the connection. A Stream is single-pass and must not be shared
// between goroutines.
//
//	stream, err := client.Stream(ctx, "/v1/chat/completions", req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for stream.Next() {
//	    fmt.Println(stream.Payload())
//	}
//	if err := stream.Err(); err != nil {
//	    log.Fatal(err)
//	}
type Stream struct {
	resp    *http.Response
	decoder *lineDecoder
	cancel  context.CancelFunc
	current string
	err     error
	done    bool

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
	onClose   func()
}

// Next advances to the next payload.
//
// Returns false once the stream is exhausted, closed or failed; call
// [Stream.Err] to tell them apart. The stream is closed automatically when
// Next returns false.
func (s *Stream) Next() bool {
	if s.done || s.err != nil || s.closed.Load() {
		return false
	}

	payload, err := s.decoder.next()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		s.done = true
		_ = s.Close()
		return false
	}

	s.current = payload
	return true
}

// Payload returns the current payload. Call it after [Stream.Next] returns true.
func (s *Stream) Payload() string {
	return s.current
}

// Err returns the error that ended the stream, if any.
//
// Read failures, including those caused by cancelling the context passed to
// [Client.Stream], are returned as-is.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the underlying connection.
//
// Close is safe to call multiple times and from another goroutine, where it
// unblocks a pending [Stream.Next].
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.resp != nil && s.resp.Body != nil {
			s.closeErr = s.resp.Body.Close()
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.onClose != nil {
			s.onClose()
		}
	})
	return s.closeErr
}

// All returns an iterator over the remaining payloads. The stream is closed
// when the loop ends, including on break. A read failure is yielded once as
// the final element.
//
//	for payload, err := range stream.All() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(payload)
//	}
func (s *Stream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer func() { _ = s.Close() }()
		for s.Next() {
			if !yield(s.current, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

// lineDecoder turns a byte stream into "data: " payloads.
type lineDecoder struct {
	reader *bufio.Reader
}

func newLineDecoder(r io.Reader) *lineDecoder {
	return &lineDecoder{reader: bufio.NewReader(r)}
}

// next returns the next payload, or io.EOF when the sentinel is seen or the
// input ends. A trailing line without newline is decoded with the same rule.
func (d *lineDecoder) next() (string, error) {
	for {
		line, err := d.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		eof := err != nil

		if payload, ok := strings.CutPrefix(line, dataPrefix); ok {
			if payload == doneSentinel {
				return "", io.EOF
			}
			return payload, nil
		}
		if eof {
			return "", io.EOF
		}
	}
}

// readLine reads up to the next newline, which is stripped along with a
// preceding carriage return.
func (d *lineDecoder) readLine() (string, error) {
	var b strings.Builder
	for {
		chunk, err := d.reader.ReadSlice('\n')
		if b.Len()+len(chunk) > maxLineSize {
			return "", fmt.Errorf("aiproxy: stream line exceeds maximum size of %d bytes", maxLineSize)
		}
		b.Write(chunk)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		line := strings.TrimSuffix(b.String(), "\n")
		line = strings.TrimSuffix(line, "\r")
		return line, err
	}
}

// Stream POSTs body to path and returns the event-stream response.
//
// Streams are never retried. The client timeout applies only until the
// response headers arrive; after that the stream lives as long as ctx, so
// bound long streams with a context deadline:
//
//	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
//	defer cancel()
//	stream, err := client.Stream(ctx, "/v1/chat/completions", req)
//
// A non-2xx response is returned as *[Error] with the gateway's payload.
func (c *Client) Stream(ctx context.Context, path string, body any, opts ...RequestOption) (*Stream, error) {
	req := &Request{Method: http.MethodPost, Path: path, Body: body}
	for _, opt := range opts {
		opt(req)
	}

	data, err := jsonProduce(req.Body)
	if err != nil {
		return nil, newError(CodeBadRequest, "failed to encode request body", 400, err)
	}

	header := c.buildHeader(eventStreamMime, req.Header)
	header.Set("Cache-Control", "no-cache")
	requestID := header.Get(headerRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
		header.Set(headerRequestID, requestID)
	}
	logger := c.logger.Named("transport").With("method", http.MethodPost, "path", path, "request_id", requestID)

	streamCtx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, c.buildURL(path, nil), bytes.NewReader(data))
	if err != nil {
		cancel()
		return nil, newError(CodeBadRequest, "failed to create request", 400, err)
	}
	httpReq.Header = header

	// The connection phase shares the buffered timeout; reads do not.
	// When Stop loses the race the callback may still be running, so wait
	// for it before reading timedOut.
	var timedOut atomic.Bool
	fired := make(chan struct{})
	timer := time.AfterFunc(c.cfg.Timeout, func() {
		defer close(fired)
		timedOut.Store(true)
		cancel()
	})

	logger.Debug("opening stream")
	start := time.Now()
	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if !timer.Stop() {
		<-fired
	}
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		cancel()
		c.metrics.observeAttempt(http.MethodPost, 0, time.Since(start))
		return nil, c.streamConnectError(ctx, &timedOut, err, requestID)
	}
	c.metrics.observeAttempt(http.MethodPost, resp.StatusCode, time.Since(start))
	if resp.Body == nil {
		resp.Body = http.NoBody
	}

	if timedOut.Load() {
		_ = resp.Body.Close()
		cancel()
		return nil, c.streamConnectError(ctx, &timedOut, context.DeadlineExceeded, requestID)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer cancel()
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		apiErr := errorFromResponse(resp.StatusCode, body)
		apiErr.RequestID = requestID
		return nil, apiErr
	}

	if resp.Body == http.NoBody {
		cancel()
		return nil, &Error{
			Code:      CodeNoBody,
			Message:   "No response body for stream",
			Status:    http.StatusInternalServerError,
			RequestID: requestID,
		}
	}

	c.metrics.streamOpened()
	return &Stream{
		resp:    resp,
		decoder: newLineDecoder(resp.Body),
		cancel:  cancel,
		onClose: streamCloser(c.metrics, logger),
	}, nil
}

func streamCloser(m *Metrics, logger hclog.Logger) func() {
	return func() {
		m.streamClosed()
		logger.Debug("stream closed")
	}
}

func (c *Client) streamConnectError(ctx context.Context, timedOut *atomic.Bool, err error, requestID string) *Error {
	var apiErr *Error
	switch {
	case timedOut.Load():
		apiErr = newError(CodeTimeout, "Request timeout", http.StatusRequestTimeout, err)
	case ctx.Err() != nil:
		apiErr = newError(CodeCanceled, ctx.Err().Error(), 0, err)
	default:
		apiErr = newError(CodeNetwork, err.Error(), 0, err)
	}
	apiErr.RequestID = requestID
	return apiErr
}
