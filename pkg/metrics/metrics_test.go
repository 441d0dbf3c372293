package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "notification_retention"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "procureflow_cron_job_runs_total", map[string]string{"job": job, "outcome": "success"}); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 2 {
		t.Fatalf("expected success=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "procureflow_cron_job_runs_total", map[string]string{"job": job, "outcome": "failure"}); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "procureflow_cron_job_duration_seconds", map[string]string{"job": job}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestWorkflowMetricsCountTransitionsAndDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkflowMetrics(reg)
	metrics.ObserveTransition("material_request", "pending_executive_review", "approved_for_po")
	metrics.ObserveDispatch("mrf_submitted", DispatchDelivered)
	metrics.ObserveDispatch("mrf_submitted", DispatchDelivered)
	metrics.ObserveDispatch("mrf_submitted", "")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "procureflow_workflow_transitions_total", map[string]string{
		"entity": "material_request",
		"from":   "pending_executive_review",
		"to":     "approved_for_po",
	})
	if err != nil || got != 1 {
		t.Fatalf("expected one transition, got %f err=%v", got, err)
	}
	got, err = fetchCounterValue(mfs, "procureflow_notification_dispatch_total", map[string]string{"event": "mrf_submitted", "outcome": "delivered"})
	if err != nil || got != 2 {
		t.Fatalf("expected two deliveries, got %f err=%v", got, err)
	}
	got, err = fetchCounterValue(mfs, "procureflow_notification_dispatch_total", map[string]string{"event": "mrf_submitted", "outcome": "unknown"})
	if err != nil || got != 1 {
		t.Fatalf("expected empty outcome normalized, got %f err=%v", got, err)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var cron *CronJobMetrics
	cron.IncSuccess("job")
	cron.ObserveDuration("job", time.Second)

	var workflow *WorkflowMetrics
	workflow.ObserveTransition("grn", "a", "b")
	NewWorkflowMetrics(nil).ObserveDispatch("e", DispatchFailed)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest("POST", "/api/v1/material-requests/{id}/submit", 200, 30*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/material-requests/{id}/submit", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "procureflow_http_requests_total", map[string]string{
		"method": "POST", "route": "/api/v1/material-requests/{id}/submit", "status": "200",
	})
	if err != nil || got != 2 {
		t.Fatalf("expected 2 submits, got %f err=%v", got, err)
	}
	if _, err := fetchCounterValue(mfs, "procureflow_http_requests_total", map[string]string{
		"method": "GET", "route": "unmatched", "status": "404",
	}); err != nil {
		t.Fatalf("expected unmatched route label: %v", err)
	}

	var nilMetrics *HTTPMetrics
	nilMetrics.ObserveRequest("GET", "/health/live", 200, time.Millisecond)
}
