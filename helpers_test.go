package aiproxy_test

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomblancdev/aiproxy-go"
)

// mustEncode encodes v as JSON and writes it to w.
// Panics on error - safe in tests since errors indicate test bugs.
func mustEncode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic("failed to encode response: " + err.Error())
	}
}

// mustDecode decodes JSON from r.Body into v.
// Panics on error - safe in tests since errors indicate test bugs.
func mustDecode(r *http.Request, v interface{}) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		panic("failed to decode request: " + err.Error())
	}
}

// newTestClient creates a client for baseURL with millisecond backoff so
// retry tests stay fast.
func newTestClient(t *testing.T, baseURL string, opts ...aiproxy.Option) *aiproxy.Client {
	t.Helper()
	opts = append([]aiproxy.Option{
		aiproxy.WithBaseURL(baseURL),
		aiproxy.WithBackoff(time.Millisecond, 5*time.Millisecond),
	}, opts...)
	client, err := aiproxy.NewClient(opts...)
	require.NoError(t, err)
	return client
}

// doerFunc adapts a function to aiproxy.Doer and counts calls.
type doerFunc struct {
	calls atomic.Int32
	fn    func(*http.Request) (*http.Response, error)
}

func (d *doerFunc) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return d.fn(req)
}

func newDoer(fn func(*http.Request) (*http.Response, error)) *doerFunc {
	return &doerFunc{fn: fn}
}

// writeError writes a gateway error payload.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]interface{}{"error": message}
	if code != "" {
		payload["code"] = code
	}
	mustEncode(w, payload)
}
