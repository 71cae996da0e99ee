package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registrar's Prometheus metrics.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New creates and registers registrar metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_operations_total",
			Help: "Registrar operations by kind and outcome code.",
		}, []string{"operation", "code"}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_operation_duration_seconds",
			Help:    "Registrar operation latency by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// ObserveOperation records one completed operation. Code is "ok" on success
// or the domain error code on failure.
func (m *Metrics) ObserveOperation(operation, code string, seconds float64) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, code).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}
