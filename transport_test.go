package aiproxy_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomblancdev/aiproxy-go"
)

// TestDo_RetriesServerErrors verifies that a persistent 500 is attempted
// MaxRetries+1 times and then surfaced with its status.
func TestDo_RetriesServerErrors(t *testing.T) {
	// Arrange
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "upstream exploded")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, aiproxy.WithRetries(3))

	// Act
	err := client.Get(context.Background(), "/v1/models", nil, nil)

	// Assert
	require.Error(t, err)
	assert.Equal(t, int32(4), hits.Load())

	var apiErr *aiproxy.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "INTERNAL", apiErr.Code)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.True(t, aiproxy.IsRetryable(err))
}

// TestDo_RetriesNetworkErrors verifies that transport failures are retried
// and reported with status 0 once the attempts are exhausted.
func TestDo_RetriesNetworkErrors(t *testing.T) {
	// Arrange
	doer := newDoer(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	client := newTestClient(t, "http://gateway.test",
		aiproxy.WithHTTPClient(doer),
		aiproxy.WithRetries(2),
	)

	// Act
	err := client.Get(context.Background(), "/health", nil, nil)

	// Assert
	require.Error(t, err)
	assert.Equal(t, int32(3), doer.calls.Load())

	var apiErr *aiproxy.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, aiproxy.CodeNetwork, apiErr.Code)
	assert.Equal(t, "connection refused", apiErr.Message)
	assert.True(t, aiproxy.IsNetworkError(err))
}

// TestDo_RecoversAfterServerError verifies that a retry can succeed and that
// every attempt carries the same request id.
func TestDo_RecoversAfterServerError(t *testing.T) {
	// Arrange
	var (
		mu  sync.Mutex
		ids []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		n := len(ids)
		mu.Unlock()

		if n < 3 {
			writeError(w, http.StatusBadGateway, "", "bad gateway")
			return
		}
		mustEncode(w, map[string]string{"status": "ok", "version": "1.4.0"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	resp, err := client.Do(context.Background(), &aiproxy.Request{Path: "/health"})

	// Assert
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[0], ids[2])
	assert.Equal(t, ids[0], resp.RequestID)
}

// TestDo_ClientErrorNotRetried verifies that 4xx responses are returned at
// once with the gateway's code.
func TestDo_ClientErrorNotRetried(t *testing.T) {
	// Arrange
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeError(w, http.StatusNotFound, "NOT_FOUND", "key not found")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	_, err := client.GetKey(context.Background(), "key_missing")

	// Assert
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())

	var apiErr *aiproxy.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "key not found", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.ErrorIs(t, err, aiproxy.ErrNotFound)
	assert.False(t, aiproxy.IsRetryable(err))
}

// TestDo_NoContent verifies that 204 yields an empty JSON object.
func TestDo_NoContent(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	resp, err := client.Do(context.Background(), &aiproxy.Request{
		Method: http.MethodDelete,
		Path:   "/keys/key_1",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.NoContent())
	assert.JSONEq(t, `{}`, string(resp.JSON()))

	var out map[string]interface{}
	require.NoError(t, resp.Decode(&out))
	assert.Empty(t, out)
}

// TestDo_Timeout verifies that an attempt exceeding the timeout is reported
// as 408 and not retried.
func TestDo_Timeout(t *testing.T) {
	// Arrange
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, aiproxy.WithTimeout(20*time.Millisecond))

	// Act
	err := client.Get(context.Background(), "/health", nil, nil)

	// Assert
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())

	var apiErr *aiproxy.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestTimeout, apiErr.Status)
	assert.Equal(t, "Request timeout", apiErr.Message)
	assert.True(t, aiproxy.IsTimeout(err))
}

// TestDo_Canceled verifies that caller cancellation is neither retried nor
// reported as a timeout.
func TestDo_Canceled(t *testing.T) {
	// Arrange
	doer := newDoer(func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	})
	client := newTestClient(t, "http://gateway.test", aiproxy.WithHTTPClient(doer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := client.Get(ctx, "/health", nil, nil)

	// Assert
	require.Error(t, err)
	assert.Equal(t, int32(1), doer.calls.Load())
	assert.ErrorIs(t, err, aiproxy.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, aiproxy.IsTimeout(err))
}

// TestDo_CanceledDuringBackoff verifies that cancelling while waiting for a
// retry stops the call.
func TestDo_CanceledDuringBackoff(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeError(w, http.StatusServiceUnavailable, "", "try later")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, aiproxy.WithBackoff(time.Minute, time.Minute))

	// Act
	time.AfterFunc(50*time.Millisecond, cancel)
	start := time.Now()
	err := client.Get(ctx, "/health", nil, nil)

	// Assert
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, int32(1), hits.Load())
	assert.ErrorIs(t, err, aiproxy.ErrCanceled)
}

// TestDo_DeadlineDuringBackoff verifies that a caller deadline expiring while
// waiting for a retry is a timeout that keeps the last gateway failure.
func TestDo_DeadlineDuringBackoff(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeError(w, http.StatusServiceUnavailable, "OVERLOADED", "try later")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, aiproxy.WithBackoff(time.Second, time.Second))

	// Act
	err := client.Get(ctx, "/health", nil, nil)

	// Assert
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, aiproxy.IsTimeout(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, aiproxy.ErrCanceled)

	apiErr, ok := aiproxy.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestTimeout, apiErr.Status)
	assert.Equal(t, aiproxy.CodeTimeout, apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)

	var last *aiproxy.Error
	require.ErrorAs(t, apiErr.Unwrap(), &last)
	assert.Equal(t, "OVERLOADED", last.Code)
	assert.Equal(t, http.StatusServiceUnavailable, last.Status)
}

// TestDo_InvalidJSON verifies that a 2xx body that is not JSON is an error.
func TestDo_InvalidJSON(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	_, err := client.Do(context.Background(), &aiproxy.Request{Path: "/health"})

	// Assert
	var apiErr *aiproxy.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_RESPONSE", apiErr.Code)
	assert.Equal(t, http.StatusOK, apiErr.Status)
}

// TestDo_DecodeMismatch verifies that a body of the wrong shape yields a
// DecodeError rather than an *Error.
func TestDo_DecodeMismatch(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 5}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	_, err := client.Health(context.Background())

	// Assert
	var decodeErr *aiproxy.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, http.StatusOK, decodeErr.Status)
	assert.JSONEq(t, `{"status": 5}`, string(decodeErr.Body))

	_, isAPIErr := aiproxy.AsError(err)
	assert.False(t, isAPIErr)
}

// TestDo_QueryEncoding verifies that absent parameters are skipped and the
// order is kept.
func TestDo_QueryEncoding(t *testing.T) {
	// Arrange
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		mustEncode(w, map[string]interface{}{})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	query := aiproxy.Query{}.
		Set("a", 1).
		Set("b", nil).
		Set("c", "x")

	// Act
	err := client.Get(context.Background(), "/logs", query, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "a=1&c=x", rawQuery)
}

func TestQuery_Encode(t *testing.T) {
	var nilString *string
	limit := int64(20)

	tests := []struct {
		name  string
		query aiproxy.Query
		want  string
	}{
		{
			name:  "empty",
			query: nil,
			want:  "",
		},
		{
			name:  "nil pointer skipped",
			query: aiproxy.Query{}.Set("model", nilString).Set("limit", &limit),
			want:  "limit=20",
		},
		{
			name:  "values escaped",
			query: aiproxy.Query{}.Set("model", "openai/gpt-4o").Set("q", "a b"),
			want:  "model=openai%2Fgpt-4o&q=a+b",
		},
		{
			name:  "set replaces in place",
			query: aiproxy.Query{}.Set("a", 1).Set("b", true).Set("a", 2),
			want:  "a=2&b=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Encode())
		})
	}
}

// TestDo_Headers verifies the default headers and that the token wins over
// the API key.
func TestDo_Headers(t *testing.T) {
	tests := []struct {
		name     string
		opts     []aiproxy.Option
		header   http.Header
		wantAuth string
	}{
		{
			name:     "api key",
			opts:     []aiproxy.Option{aiproxy.WithAPIKey("sk-key")},
			wantAuth: "Bearer sk-key",
		},
		{
			name:     "token wins over api key",
			opts:     []aiproxy.Option{aiproxy.WithAPIKey("sk-key"), aiproxy.WithToken("tok")},
			wantAuth: "Bearer tok",
		},
		{
			name:     "credentials overwrite caller header",
			opts:     []aiproxy.Option{aiproxy.WithToken("tok")},
			header:   http.Header{"Authorization": []string{"Bearer caller"}},
			wantAuth: "Bearer tok",
		},
		{
			name:     "caller header kept without credentials",
			header:   http.Header{"Authorization": []string{"Bearer caller"}},
			wantAuth: "Bearer caller",
		},
		{
			name:     "no credentials",
			wantAuth: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var got http.Header
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				mustEncode(w, map[string]interface{}{})
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, tt.opts...)

			// Act
			err := client.Get(context.Background(), "/health", nil, nil, aiproxy.WithHeaders(tt.header))

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuth, got.Get("Authorization"))
			assert.Equal(t, "application/json", got.Get("Accept"))
			assert.Equal(t, "aiproxy-go/"+aiproxy.Version, got.Get("User-Agent"))
			assert.NotEmpty(t, got.Get("X-Request-ID"))
		})
	}
}

// TestDo_CallerRequestID verifies that a caller-supplied request id is used.
func TestDo_CallerRequestID(t *testing.T) {
	// Arrange
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "nope")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	err := client.Post(context.Background(), "/keys", map[string]string{}, nil, aiproxy.WithRequestID("req-42"))

	// Assert
	assert.Equal(t, "req-42", got)
	var apiErr *aiproxy.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "req-42", apiErr.RequestID)
	assert.ErrorIs(t, err, aiproxy.ErrBadRequest)
}

// TestDo_Idempotent verifies that identical GETs decode to identical results.
func TestDo_Idempotent(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mustEncode(w, map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"id": "openai/gpt-4o", "object": "model", "owned_by": "openai"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	first, err1 := client.ListModels(context.Background())
	second, err2 := client.ListModels(context.Background())

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

// TestDo_JSONBody verifies that the body is sent as JSON with the method.
func TestDo_JSONBody(t *testing.T) {
	methods := []struct {
		method string
		call   func(c *aiproxy.Client, body, out any) error
	}{
		{http.MethodPost, func(c *aiproxy.Client, body, out any) error {
			return c.Post(context.Background(), "/echo", body, out)
		}},
		{http.MethodPut, func(c *aiproxy.Client, body, out any) error {
			return c.Put(context.Background(), "/echo", body, out)
		}},
		{http.MethodPatch, func(c *aiproxy.Client, body, out any) error {
			return c.Patch(context.Background(), "/echo", body, out)
		}},
	}

	for _, m := range methods {
		t.Run(m.method, func(t *testing.T) {
			// Arrange
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, m.method, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var in map[string]interface{}
				mustDecode(r, &in)
				mustEncode(w, in)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)

			// Act
			var out map[string]string
			err := m.call(client, map[string]string{"name": "ci"}, &out)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "ci", out["name"])
		})
	}
}

// TestGetBinary verifies that binary calls return the body verbatim.
func TestGetBinary(t *testing.T) {
	// Arrange
	payload := []byte{0x00, 0xff, 0x10, 'n', 'o', 't', ' ', 'j', 's', 'o', 'n'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Act
	resp, err := client.GetBinary(context.Background(), "/files/f1/content", nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, payload, resp.Body)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
}

// TestDo_NilResponseBody verifies that a Doer returning no body is handled.
func TestDo_NilResponseBody(t *testing.T) {
	// Arrange
	doer := newDoer(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}, nil
	})
	client := newTestClient(t, "http://gateway.test", aiproxy.WithHTTPClient(doer))

	// Act
	resp, err := client.Do(context.Background(), &aiproxy.Request{Path: "/health"})

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(resp.Body))
}
