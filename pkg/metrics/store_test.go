package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.IncMutation("products", "add")
	m.IncMutation("products", "add")
	m.IncMutation("Sales", "remove")
	m.IncPersistFailure("products")
	m.SetSubscribers("products", 3)

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("products", "add")); got != 2 {
		t.Fatalf("expected 2 adds, got %v", got)
	}
	if got := testutil.ToFloat64(m.mutations.WithLabelValues("sales", "remove")); got != 1 {
		t.Fatalf("expected normalized entity label, got %v", got)
	}
	if got := testutil.ToFloat64(m.persistFailures.WithLabelValues("products")); got != 1 {
		t.Fatalf("expected 1 persist failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.subscribers.WithLabelValues("products")); got != 3 {
		t.Fatalf("expected 3 subscribers, got %v", got)
	}
}

func TestStoreMetricsNilSafe(t *testing.T) {
	var m *StoreMetrics
	m.IncMutation("products", "add")
	m.IncPersistFailure("products")
	m.SetSubscribers("products", 1)

	empty := NewStoreMetrics(nil)
	empty.IncMutation("products", "add")
}
