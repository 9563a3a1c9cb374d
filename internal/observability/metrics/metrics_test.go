package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok && want == pair.GetValue() {
			found++
		}
	}
	return found == len(labels)
}

func TestBackendMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBackendMetrics(reg)
	m.ObserveRequest("available_slots", 200, 0.05)
	m.ObserveRequest("available_slots", 0, 0.5)

	if got := counterValue(t, reg, "slybarber_backend_requests_total", map[string]string{"operation": "available_slots", "status": "200"}); got != 1 {
		t.Fatalf("200 counter = %v, want 1", got)
	}
	if got := counterValue(t, reg, "slybarber_backend_requests_total", map[string]string{"status": "network_error"}); got != 1 {
		t.Fatalf("network error counter = %v, want 1", got)
	}
}

func TestWorkflowMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkflowMetrics(reg)
	m.ObserveStale("booking", "slots")
	m.ObserveStale("booking", "slots")
	m.ObserveSubmission("invalid")
	m.ObserveMutation("cancel", "success")

	if got := counterValue(t, reg, "slybarber_workflow_stale_responses_total", map[string]string{"workflow": "booking"}); got != 2 {
		t.Fatalf("stale counter = %v, want 2", got)
	}
	if got := counterValue(t, reg, "slybarber_workflow_admin_mutations_total", map[string]string{"action": "cancel", "outcome": "success"}); got != 1 {
		t.Fatalf("mutation counter = %v, want 1", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var b *BackendMetrics
	b.ObserveRequest("list", 500, 0.1)
	var w *WorkflowMetrics
	w.ObserveStale("admin", "list")
	w.ObserveSubmission("success")
	w.ObserveMutation("delete", "failure")
}
