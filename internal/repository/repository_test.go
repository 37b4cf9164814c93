package repository

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/parquet-go/parquet-go"

	"GovTracker/internal/domain/models"
	"GovTracker/pkg/cache"
)

type countingMetrics struct {
	mu    sync.Mutex
	loads map[string]int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{loads: map[string]int{}} }

func (m *countingMetrics) RecordSnapshotLoad(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[result]++
}
func (m *countingMetrics) RecordFetch(string) {}
func (m *countingMetrics) RecordError(string) {}
func (m *countingMetrics) RecordLastClose(string, float64) {}
func (m *countingMetrics) RecordLatency(string, float64) {}

func (m *countingMetrics) count(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[result]
}

var us10 = models.SeriesKey{Issuer: "US", Maturity: "10Y"}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewParquetSnapshotStore(t.TempDir())

	records := []models.EODRecord{
		{Date: "2024-01-03", Open: 4.0, Close: 4.1},
		{Date: "2024-01-02", Open: 3.9, Close: 4.0},
		{Date: "2024-01-04", Close: 4.2},
	}
	if err := store.Save(ctx, us10, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(store.Path(us10)); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}

	s, found, err := store.Load(ctx, us10)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if s.Name != "US_10Y" || s.Len() != 3 {
		t.Fatalf("unexpected series %s len=%d", s.Name, s.Len())
	}
	want := []float64{4.0, 4.1, 4.2}
	for i, v := range s.Values() {
		if v != want[i] {
			t.Fatalf("value %d = %v, want %v", i, v, want[i])
		}
	}
	if s.First().Date != (civil.Date{Year: 2024, Month: 1, Day: 2}) {
		t.Fatalf("series not sorted: first=%v", s.First().Date)
	}
}

func TestSnapshotSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewParquetSnapshotStore(t.TempDir())

	_ = store.Save(ctx, us10, []models.EODRecord{{Date: "2024-01-02", Close: 1}, {Date: "2024-01-03", Close: 2}})
	if err := store.Save(ctx, us10, []models.EODRecord{{Date: "2024-02-01", Close: 9}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, _, err := store.Load(ctx, us10)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 1 || s.Last().Value != 9 {
		t.Fatalf("expected overwritten snapshot, got %+v", s.Observations)
	}

	entries, _ := os.ReadDir(filepath.Dir(store.Path(us10)))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	m := newCountingMetrics()
	store := NewParquetSnapshotStore(t.TempDir(), WithStoreMetrics(m))

	_, found, err := store.Load(context.Background(), models.SeriesKey{Issuer: "ZZ", Maturity: "99Y"})
	if err != nil || found {
		t.Fatalf("expected not found without error, found=%v err=%v", found, err)
	}
	if m.count("missing") != 1 {
		t.Fatalf("missing load not recorded")
	}
}

func TestSnapshotInvalidKeyIsMissing(t *testing.T) {
	store := NewParquetSnapshotStore(t.TempDir())
	_, found, err := store.Load(context.Background(), models.SeriesKey{Issuer: "../etc", Maturity: "10Y"})
	if err != nil || found {
		t.Fatalf("expected invalid key to be missing, found=%v err=%v", found, err)
	}
	if err := store.Save(context.Background(), models.SeriesKey{Issuer: "us", Maturity: "10Y"}, nil); err == nil {
		t.Fatalf("expected save to reject lower-case issuer")
	}
}

func TestSnapshotEmptyFile(t *testing.T) {
	ctx := context.Background()
	store := NewParquetSnapshotStore(t.TempDir())
	if err := store.Save(ctx, us10, []models.EODRecord{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, found, err := store.Load(ctx, us10)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if !s.Empty() {
		t.Fatalf("expected empty series")
	}
}

func TestSnapshotDedupeKeepsLastRow(t *testing.T) {
	dir := t.TempDir()
	store := NewParquetSnapshotStore(dir)

	rows := []snapshotRow{
		{Date: "2024-01-02", Close: f64(1)},
		{Date: "2024-01-03", Close: f64(2)},
		{Date: "2024-01-02", Close: f64(3)},
		{Date: "not-a-date", Close: f64(4)},
	}
	if err := parquet.WriteFile(store.Path(us10), rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, _, err := store.Load(context.Background(), us10)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 observations, got %d", s.Len())
	}
	if s.First().Value != 3 {
		t.Fatalf("duplicate date must keep the last row, got %v", s.First().Value)
	}
}

// nullableRow has the nullable date and close columns dataframe exports write.
type nullableRow struct {
	Date  *string  `parquet:"date,optional"`
	Close *float64 `parquet:"close,optional"`
}

func f64(v float64) *float64 { return &v }

func str(v string) *string { return &v }

func TestSnapshotDropsNonFiniteClose(t *testing.T) {
	store := NewParquetSnapshotStore(t.TempDir())
	rows := []nullableRow{
		{Date: str("2024-01-02"), Close: f64(4.0)},
		{Date: str("2024-01-03"), Close: nil},
		{Date: str("2024-01-04"), Close: f64(math.NaN())},
		{Date: str("2024-01-05"), Close: f64(math.Inf(1))},
		{Date: nil, Close: f64(3.0)},
		{Date: str("2024-01-08"), Close: f64(4.2)},
		{Date: str("2024-01-09"), Close: f64(0)},
	}
	if err := parquet.WriteFile(store.Path(us10), rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, found, err := store.Load(context.Background(), us10)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	got := s.Values()
	if len(got) != 3 || got[0] != 4.0 || got[1] != 4.2 || got[2] != 0 {
		t.Fatalf("values = %v", got)
	}
	for _, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite value leaked: %v", got)
		}
	}
}

func TestSnapshotCacheHit(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer mc.Close()
	m := newCountingMetrics()
	store := NewParquetSnapshotStore(t.TempDir(),
		WithSeriesCache(NewSeriesCache(mc), time.Minute),
		WithStoreMetrics(m),
	)

	_ = store.Save(ctx, us10, []models.EODRecord{{Date: "2024-01-02", Close: 4}})
	if _, _, err := store.Load(ctx, us10); err != nil {
		t.Fatalf("first load: %v", err)
	}
	s, found, err := store.Load(ctx, us10)
	if err != nil || !found || s.Last().Value != 4 {
		t.Fatalf("second load: found=%v err=%v", found, err)
	}
	if m.count("loaded") != 1 || m.count("cache_hit") != 1 {
		t.Fatalf("unexpected load counters %+v", m.loads)
	}

	if err := NewSeriesCache(mc).Purge(ctx, us10); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("purge left %d entries", mc.Len())
	}
}

func TestBuildYieldInsert(t *testing.T) {
	ingested := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	q, args := buildYieldInsert("gov_yields", us10, []models.EODRecord{
		{Date: "2024-01-02", Close: 4},
		{Date: "bad", Close: 5},
		{Date: "2024-01-03", Close: 4.1},
	}, ingested)

	if strings.Count(q, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)") != 2 {
		t.Fatalf("expected two value tuples: %s", q)
	}
	if len(args) != 20 {
		t.Fatalf("args = %d, want 20", len(args))
	}
	if args[0] != "US" || args[1] != "10Y" {
		t.Fatalf("unexpected key args %v", args[:2])
	}

	if q, _ := buildYieldInsert("gov_yields", us10, nil, ingested); q != "" {
		t.Fatalf("expected no statement for empty input")
	}
}
