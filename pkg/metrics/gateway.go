package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RPCMetrics records upstream service call behavior.
type RPCMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewRPCMetrics registers the upstream call metrics on the provided registerer.
func NewRPCMetrics(reg prometheus.Registerer) *RPCMetrics {
	if reg == nil {
		return &RPCMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rpc_request_duration_seconds",
		Help:    "Duration of upstream service calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "command"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_request_failures",
		Help: "Upstream service calls that failed, by classification.",
	}, []string{"service", "kind"})
	reg.MustRegister(duration, failures)
	return &RPCMetrics{
		duration: duration,
		failures: failures,
	}
}

// ObserveCall records the duration of one upstream call.
func (m *RPCMetrics) ObserveCall(service, command string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(service), normalizeLabel(command)).Observe(duration.Seconds())
}

// IncFailure counts one failed upstream call.
func (m *RPCMetrics) IncFailure(service, kind string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(service), normalizeLabel(kind)).Inc()
}

// CheckoutMetrics records checkout pipeline outcomes.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	committed prometheus.Counter
	aborted   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_committed",
		Help: "Checkouts that produced an order.",
	})
	aborted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_aborted",
		Help: "Checkouts aborted before order creation, by reason.",
	}, []string{"reason"})
	reg.MustRegister(duration, committed, aborted)
	return &CheckoutMetrics{
		duration:  duration,
		committed: committed,
		aborted:   aborted,
	}
}

// ObserveDuration records one checkout attempt.
func (m *CheckoutMetrics) ObserveDuration(result string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// IncCommitted counts one successful checkout.
func (m *CheckoutMetrics) IncCommitted() {
	if m == nil || m.committed == nil {
		return
	}
	m.committed.Inc()
}

// IncAborted counts one aborted checkout for the given reason.
func (m *CheckoutMetrics) IncAborted(reason string) {
	if m == nil || m.aborted == nil {
		return
	}
	m.aborted.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
