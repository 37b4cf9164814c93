package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordSnapshotLoad("loaded")
	r.RecordSnapshotLoad("loaded")
	r.RecordSnapshotLoad("missing")
	r.RecordFetch("ok")
	r.RecordLastClose("US_10Y", 4.25)
	r.RecordLatency("snapshot_load", 0.01)
	r.RecordError("fetch")

	if got := testutil.ToFloat64(r.snapshotLoads.WithLabelValues("loaded")); got != 2 {
		t.Fatalf("loaded = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.lastClose.WithLabelValues("US_10Y")); got != 4.25 {
		t.Fatalf("last close = %v, want 4.25", got)
	}
	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Fatalf("gather: n=%d err=%v", n, err)
	}
}
