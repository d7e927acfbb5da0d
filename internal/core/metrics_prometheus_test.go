package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderCountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(reg)
	ctx := context.Background()

	rec.Observe(ctx, "sow_seed", true, 5*time.Millisecond)
	rec.Observe(ctx, "sow_seed", true, 7*time.Millisecond)
	rec.Observe(ctx, "sow_seed", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	if got := promtest.ToFloat64(rec.operations.WithLabelValues("sow_seed", "success")); got != 2 {
		t.Fatalf("success count = %v, want 2", got)
	}
	if got := promtest.ToFloat64(rec.operations.WithLabelValues("sow_seed", "error")); got != 1 {
		t.Fatalf("error count = %v, want 1", got)
	}
	if n := promtest.CollectAndCount(rec.durations); n != 1 {
		t.Fatalf("duration series = %d, want one operation label", n)
	}
}

func TestPrometheusRecorderRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(reg)
	rec.Observe(context.Background(), "advance_day", true, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"gardencore_service_operations_total",
		"gardencore_service_operation_duration_seconds",
	} {
		if !names[want] {
			t.Fatalf("metric %s not gathered, got %v", want, names)
		}
	}
}
