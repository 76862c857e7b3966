// ABOUTME: Prometheus metrics for cache controller operations
// ABOUTME: Counts operations by entity, op, and outcome and tracks requests in flight
package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "rapport"

type Metrics struct {
	// OperationsTotal counts controller operations.
	// Labels: entity, op (load, add, update, remove, get, set_relations), outcome (success, error)
	OperationsTotal *prometheus.CounterVec

	// OperationSeconds measures gateway round trips seen by the controller.
	OperationSeconds *prometheus.HistogramVec

	// InFlight is the number of operations currently waiting on the gateway.
	InFlight *prometheus.GaugeVec
}

// NewMetrics builds the collectors and registers them with reg. A nil reg
// leaves them unregistered, which tests use to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "operations_total",
				Help:      "Cache controller operations by entity, op and outcome",
			},
			[]string{"entity", "op", "outcome"},
		),
		OperationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "operation_seconds",
				Help:      "Duration of cache controller operations in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"entity", "op"},
		),
		InFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "in_flight",
				Help:      "Cache operations currently waiting on the remote store",
			},
			[]string{"entity"},
		),
	}
}

// begin marks an operation in flight and returns the function that records its end.
func (m *Metrics) begin(entity, op string) func(error) {
	if m == nil {
		return func(error) {}
	}
	start := time.Now()
	m.InFlight.WithLabelValues(entity).Inc()
	return func(err error) {
		m.InFlight.WithLabelValues(entity).Dec()
		m.OperationSeconds.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.OperationsTotal.WithLabelValues(entity, op, outcome).Inc()
	}
}
