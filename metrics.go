package aiproxy

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// latencyBuckets suit gateway latencies, from 50ms to 120s.
var latencyBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Metrics holds the Prometheus collectors of a client.
// A nil *Metrics records nothing.
type Metrics struct {
	// RequestsTotal counts attempts by method and status ("0" for
	// transport failures).
	RequestsTotal *prometheus.CounterVec

	// RetriesTotal counts scheduled retries by method.
	RetriesTotal *prometheus.CounterVec

	// RequestDuration records attempt duration in seconds by method.
	RequestDuration *prometheus.HistogramVec

	// StreamsActive tracks open streams.
	StreamsActive prometheus.Gauge
}

// NewMetrics creates the client collectors and registers them with reg.
// Collectors already registered with reg are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiproxy_client_requests_total",
				Help: "Gateway request attempts",
			},
			[]string{"method", "status"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiproxy_client_retries_total",
				Help: "Gateway request retries",
			},
			[]string{"method"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiproxy_client_request_duration_seconds",
				Help:    "Gateway request attempt duration",
				Buckets: latencyBuckets,
			},
			[]string{"method"},
		),
		StreamsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "aiproxy_client_streams_active",
				Help: "Open gateway streams",
			},
		),
	}
	if reg == nil {
		return m
	}

	m.RequestsTotal = register(reg, m.RequestsTotal)
	m.RetriesTotal = register(reg, m.RetriesTotal)
	m.RequestDuration = register(reg, m.RequestDuration)
	m.StreamsActive = register(reg, m.StreamsActive)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) observeAttempt(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) observeRetry(method string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(method).Inc()
}

func (m *Metrics) streamOpened() {
	if m == nil {
		return
	}
	m.StreamsActive.Inc()
}

func (m *Metrics) streamClosed() {
	if m == nil {
		return
	}
	m.StreamsActive.Dec()
}
