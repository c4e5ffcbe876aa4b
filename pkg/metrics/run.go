package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics records outcomes of planning runs.
type RunMetrics struct {
	duration      prometheus.Histogram
	plannedOrders prometheus.Counter
	plannedQty    prometheus.Counter
	success       prometheus.Counter
	failure       *prometheus.CounterVec
}

// NewRunMetrics registers the planning run metrics on the provided registerer.
func NewRunMetrics(reg prometheus.Registerer) *RunMetrics {
	if reg == nil {
		return &RunMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mrp_run_duration_seconds",
		Help:    "Duration of planning runs in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	plannedOrders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mrp_planned_orders_total",
		Help: "Planned orders emitted across runs.",
	})
	plannedQty := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mrp_planned_quantity_total",
		Help: "Total planned quantity emitted across runs.",
	})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mrp_run_success_total",
		Help: "Successful planning runs.",
	})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mrp_run_failure_total",
		Help: "Failed planning runs by error code.",
	}, []string{"code"})
	reg.MustRegister(duration, plannedOrders, plannedQty, success, failure)
	return &RunMetrics{
		duration:      duration,
		plannedOrders: plannedOrders,
		plannedQty:    plannedQty,
		success:       success,
		failure:       failure,
	}
}

// ObserveRun records a successful run.
func (m *RunMetrics) ObserveRun(duration time.Duration, orders int, totalQty float64) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
	m.plannedOrders.Add(float64(orders))
	m.plannedQty.Add(totalQty)
	m.success.Inc()
}

// ObserveFailure records a failed run under its error code.
func (m *RunMetrics) ObserveFailure(code string) {
	if m == nil || m.failure == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.failure.WithLabelValues(code).Inc()
}
