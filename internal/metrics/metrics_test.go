package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"partpulse/internal"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLookup(internal.LookupSuccess)
	m.ObserveLookup(internal.LookupSuccess)
	m.ObserveLookup(internal.LookupNotFound)
	m.ObserveRun("success", 5, time.Second, time.Unix(1700000000, 0))
	m.ObserveRun("sink_failed", 9, time.Second, time.Unix(1700000100, 0))

	if got := testutil.ToFloat64(m.lookups.WithLabelValues("success")); got != 2 {
		t.Fatalf("success lookups=%v", got)
	}
	if got := testutil.ToFloat64(m.rowsAppended); got != 5 {
		t.Fatalf("rows=%v", got)
	}
	if got := testutil.ToFloat64(m.lastSuccess); got != 1700000000 {
		t.Fatalf("last success=%v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLookup(internal.LookupTransientError)
	m.ObserveSkippedOffers(3)
	m.ObserveRun("success", 1, time.Second, time.Now())
}
