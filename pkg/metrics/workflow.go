package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dispatch outcomes recorded per notification attempt.
const (
	DispatchDelivered  = "delivered"
	DispatchSuppressed = "suppressed"
	DispatchDuplicate  = "duplicate"
	DispatchFailed     = "failed"
	DispatchDegraded   = "degraded"
)

// WorkflowMetrics counts stage transitions and notification dispatch outcomes.
type WorkflowMetrics struct {
	transitions *prometheus.CounterVec
	dispatch    *prometheus.CounterVec
}

func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_transitions_total",
		Help:      "Committed workflow stage transitions.",
	}, []string{"entity", "from", "to"})
	dispatch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_dispatch_total",
		Help:      "Notification dispatch attempts per event type and outcome.",
	}, []string{"event", "outcome"})
	reg.MustRegister(transitions, dispatch)
	return &WorkflowMetrics{transitions: transitions, dispatch: dispatch}
}

// ObserveTransition records a committed move of entity from one stage to another.
func (w *WorkflowMetrics) ObserveTransition(entity, from, to string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(entity), normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (w *WorkflowMetrics) ObserveDispatch(event, outcome string) {
	if w == nil || w.dispatch == nil {
		return
	}
	w.dispatch.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}
