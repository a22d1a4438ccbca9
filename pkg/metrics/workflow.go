package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics counts per-line outcomes of the order and restock workflows.
type WorkflowMetrics struct {
	orderLines *prometheus.CounterVec
	restocks   *prometheus.CounterVec
	lockWait   prometheus.Histogram
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	orderLines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "lines_total",
		Help:      "Order lines processed, by resulting status.",
	}, []string{"status"})
	restocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "restock",
		Name:      "items_total",
		Help:      "Restock attempts, by resulting status.",
	}, []string{"trigger", "status"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "item_lock_wait_seconds",
		Help:      "Time spent waiting for a per-item lock.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	reg.MustRegister(orderLines, restocks, lockWait)
	return &WorkflowMetrics{
		orderLines: orderLines,
		restocks:   restocks,
		lockWait:   lockWait,
	}
}

// IncOrderLine records one processed order line.
func (w *WorkflowMetrics) IncOrderLine(status string) {
	if w == nil || w.orderLines == nil {
		return
	}
	w.orderLines.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncRestock records one restock attempt. trigger is "batch", "order" or "single".
func (w *WorkflowMetrics) IncRestock(trigger, status string) {
	if w == nil || w.restocks == nil {
		return
	}
	w.restocks.WithLabelValues(normalizeLabel(trigger), normalizeLabel(status)).Inc()
}

// ObserveLockWait records how long a line waited for its item lock.
func (w *WorkflowMetrics) ObserveLockWait(wait time.Duration) {
	if w == nil || w.lockWait == nil {
		return
	}
	w.lockWait.Observe(wait.Seconds())
}
