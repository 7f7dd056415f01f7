// Package metrics holds the Prometheus collectors of the service. Collectors
// are registered lazily on first use against the default registry, so tests
// and binaries can share them without double registration.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coinledger"

type ledgerMetrics struct {
	operations *prometheus.CounterVec
	floored    prometheus.Counter
}

type eventMetrics struct {
	emitted *prometheus.CounterVec
	dropped prometheus.Counter
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *ledgerMetrics

	eventsOnce     sync.Once
	eventsRegistry *eventMetrics

	httpOnce     sync.Once
	httpRegistry *httpMetrics
)

// Ledger returns the collectors tracking ledger engine operations.
func Ledger() *ledgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &ledgerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Ledger operations segmented by operation and outcome.",
			}, []string{"op", "outcome"}),
			floored: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "balance_floored_total",
				Help:      "Stored negative balances that were floored to zero on read.",
			}),
		}
		prometheus.MustRegister(ledgerRegistry.operations, ledgerRegistry.floored)
	})
	return ledgerRegistry
}

// Observe counts one ledger operation. outcome is "ok" or an error kind.
func (m *ledgerMetrics) Observe(op, outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// BalanceFloored counts a negative balance hidden by the read path.
func (m *ledgerMetrics) BalanceFloored() {
	if m == nil {
		return
	}
	m.floored.Inc()
}

// Events returns the collectors of the notification dispatcher.
func Events() *eventMetrics {
	eventsOnce.Do(func() {
		eventsRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "total",
				Help:      "Ledger notifications delivered to sinks, by event name.",
			}, []string{"name"}),
			dropped: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "dropped_total",
				Help:      "Notifications dropped because the dispatch buffer was full.",
			}),
		}
		prometheus.MustRegister(eventsRegistry.emitted, eventsRegistry.dropped)
	})
	return eventsRegistry
}

func (m *eventMetrics) Emitted(name string) {
	if m == nil {
		return
	}
	if name == "" {
		name = "unknown"
	}
	m.emitted.WithLabelValues(name).Inc()
}

func (m *eventMetrics) Dropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

// HTTP returns the request collectors of the API server.
func HTTP() *httpMetrics {
	httpOnce.Do(func() {
		httpRegistry = &httpMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests segmented by route pattern and status code.",
			}, []string{"route", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution of HTTP handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"}),
		}
		prometheus.MustRegister(httpRegistry.requests, httpRegistry.latency)
	})
	return httpRegistry
}

func (m *httpMetrics) Observe(route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(took.Seconds())
}
