package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotel"

// Metrics holds the Prometheus collectors for the desk.
type Metrics struct {
	// Allocations counts allocation attempts by strategy and outcome.
	Allocations *prometheus.CounterVec
	// AllocationDuration observes allocation latency by strategy.
	AllocationDuration *prometheus.HistogramVec
	// Rooms reports the current room count per status.
	Rooms *prometheus.GaugeVec
	// HTTPRequests counts HTTP requests by method, route template, and code.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes HTTP latency by method and route template.
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics registers the desk collectors with reg.
//
// Precondition: reg must be non-nil and must not already hold these collectors.
// Postcondition: Returns Metrics whose collectors are registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Room allocation attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		AllocationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_duration_seconds",
			Help:      "Time spent selecting rooms.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"strategy"}),
		Rooms: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms by current status.",
		}, []string{"status"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveAllocation records one allocation attempt. A nil receiver is a no-op.
func (m *Metrics) ObserveAllocation(strategy, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Allocations.WithLabelValues(strategy, outcome).Inc()
	m.AllocationDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// SetRooms publishes the room count per status. A nil receiver is a no-op.
func (m *Metrics) SetRooms(counts map[string]int) {
	if m == nil {
		return
	}
	for status, n := range counts {
		m.Rooms.WithLabelValues(status).Set(float64(n))
	}
}

// ObserveHTTP records one completed HTTP request. A nil receiver is a no-op.
func (m *Metrics) ObserveHTTP(method, route, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, code).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
