package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWorkflowMetricsCountByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkflowMetrics(reg)

	metrics.IncOrderLine("processed")
	metrics.IncOrderLine("processed")
	metrics.IncOrderLine("insufficient_stock")
	metrics.IncRestock("order", "restocked")
	metrics.ObserveLockWait(20 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "paperledger_orders_lines_total", "status", "processed"); err != nil {
		t.Fatalf("fetch processed: %v", err)
	} else if got != 2 {
		t.Fatalf("expected processed=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "paperledger_orders_lines_total", "status", "insufficient_stock"); err != nil {
		t.Fatalf("fetch insufficient: %v", err)
	} else if got != 1 {
		t.Fatalf("expected insufficient_stock=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "paperledger_restock_items_total", "trigger", "order"); err != nil {
		t.Fatalf("fetch restock: %v", err)
	} else if got != 1 {
		t.Fatalf("expected order restock=1, got %f", got)
	}
	if mf := findMetricFamily(mfs, "paperledger_orders_item_lock_wait_seconds"); mf == nil {
		t.Fatal("lock wait histogram not exported")
	} else if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected one lock wait sample")
	}
}

func TestNilWorkflowMetricsAreSafe(t *testing.T) {
	var metrics *WorkflowMetrics
	metrics.IncOrderLine("processed")
	metrics.IncRestock("batch", "error")
	metrics.ObserveLockWait(time.Millisecond)
}
