package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics exposes counters/histograms for calls to the booking API.
type BackendMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	m := &BackendMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slybarber",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total requests sent to the booking API",
		}, []string{"operation", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slybarber",
			Subsystem: "backend",
			Name:      "request_latency_seconds",
			Help:      "Latency of booking API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency)
	return m
}

// ObserveRequest records one finished request. status 0 means no response arrived.
func (m *BackendMetrics) ObserveRequest(operation string, status int, seconds float64) {
	if m == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(operation, label).Inc()
	m.requestLatency.WithLabelValues(operation).Observe(seconds)
}

// WorkflowMetrics counts user-facing workflow outcomes.
type WorkflowMetrics struct {
	staleResponses *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	mutations      *prometheus.CounterVec
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	m := &WorkflowMetrics{
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slybarber",
			Subsystem: "workflow",
			Name:      "stale_responses_total",
			Help:      "Responses dropped because a newer request was issued",
		}, []string{"workflow", "request"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slybarber",
			Subsystem: "workflow",
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slybarber",
			Subsystem: "workflow",
			Name:      "admin_mutations_total",
			Help:      "Admin cancel/delete/edit actions by outcome",
		}, []string{"action", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.staleResponses, m.submissions, m.mutations)
	return m
}

func (m *WorkflowMetrics) ObserveStale(workflow, request string) {
	if m == nil {
		return
	}
	m.staleResponses.WithLabelValues(workflow, request).Inc()
}

// ObserveSubmission records "invalid", "success" or "failure".
func (m *WorkflowMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *WorkflowMetrics) ObserveMutation(action, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(action, outcome).Inc()
}
