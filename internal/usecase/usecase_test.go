package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"GovTracker/internal/domain/models"
	pkgkafka "GovTracker/pkg/kafka"
)

// memStore is an in-memory SnapshotStore.
type memStore struct {
	mu     sync.Mutex
	series map[string]models.Series
	saved  map[string][]models.EODRecord
	broken map[string]bool
}

func newMemStore() *memStore {
	return &memStore{series: map[string]models.Series{}, saved: map[string][]models.EODRecord{}, broken: map[string]bool{}}
}

func (m *memStore) put(key string, closes ...float64) {
	obs := make([]models.Observation, len(closes))
	for i, c := range closes {
		obs[i] = models.Observation{Date: civil.Date{Year: 2024, Month: 1, Day: i + 1}, Value: c}
	}
	m.series[key] = models.Series{Name: key, Observations: obs}
}

func (m *memStore) Load(_ context.Context, key models.SeriesKey) (models.Series, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken[key.String()] {
		return models.Series{}, false, errors.New("corrupt file")
	}
	s, ok := m.series[key.String()]
	return s, ok, nil
}

func (m *memStore) Save(_ context.Context, key models.SeriesKey, recs []models.EODRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken[key.String()] {
		return errors.New("disk full")
	}
	m.saved[key.String()] = recs
	return nil
}

type nopMetrics struct {
	mu      sync.Mutex
	fetches map[string]int
	errs    map[string]int
}

func newNopMetrics() *nopMetrics {
	return &nopMetrics{fetches: map[string]int{}, errs: map[string]int{}}
}

func (m *nopMetrics) RecordSnapshotLoad(string) {}
func (m *nopMetrics) RecordFetch(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[result]++
}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}
func (m *nopMetrics) RecordLastClose(string, float64) {}
func (m *nopMetrics) RecordLatency(string, float64) {}

var universe = models.Universe{
	Issuers:    []string{"US", "DE"},
	Maturities: []string{"2Y", "10Y"},
	Defaults:   models.UniverseDefaults{Issuer: "US", PeerIssuer: "DE", Maturity: "10Y"},
}

func newDashboard(store *memStore) *DashboardUseCase {
	return NewDashboardUseCase(store, universe, newNopMetrics(), nil)
}

func TestOutrightEqualsClose(t *testing.T) {
	store := newMemStore()
	store.put("US_10Y", 4.0, 4.1, 3.9)
	p, err := newDashboard(store).Outright(context.Background(), "us", "10y")
	if err != nil {
		t.Fatalf("outright: %v", err)
	}
	if p.NoData {
		t.Fatalf("unexpected no-data panel")
	}
	if p.Figure.Title != "US 10Y Government Bond" {
		t.Fatalf("title = %q", p.Figure.Title)
	}
	y := p.Figure.Traces[0].Y
	if len(y) != 3 || y[0] != 4.0 || y[1] != 4.1 || y[2] != 3.9 {
		t.Fatalf("y = %v", y)
	}
	if p.Figure.Traces[0].X[0] != "2024-01-01" {
		t.Fatalf("x = %v", p.Figure.Traces[0].X)
	}
	if p.Stats.Count != 3 || *p.Stats.Last != 3.9 {
		t.Fatalf("stats = %+v", p.Stats)
	}
}

func TestMissingSeriesIsNoData(t *testing.T) {
	p, err := newDashboard(newMemStore()).Outright(context.Background(), "ZZ", "99Y")
	if err != nil {
		t.Fatalf("missing series must not error: %v", err)
	}
	if !p.NoData || p.Figure.Title != "No data for ZZ 99Y" {
		t.Fatalf("unexpected panel %+v", p.Figure)
	}
	if p.Stats.Status != models.StatsEmpty || p.Stats.Last != nil {
		t.Fatalf("unexpected stats %+v", p.Stats)
	}
}

func TestCorruptSnapshotIsNoData(t *testing.T) {
	store := newMemStore()
	store.broken["US_10Y"] = true
	store.put("DE_10Y", 2.0)

	p, err := newDashboard(store).CreditSpread(context.Background(), "US", "DE", "10Y")
	if err != nil {
		t.Fatalf("credit spread: %v", err)
	}
	if !p.NoData {
		t.Fatalf("corrupt snapshot must render as no data")
	}
}

func TestCreditSpread(t *testing.T) {
	store := newMemStore()
	store.put("US_10Y", 4.0, 4.2)
	store.put("DE_10Y", 2.5, 2.6)

	p, err := newDashboard(store).CreditSpread(context.Background(), "US", "DE", "10Y")
	if err != nil {
		t.Fatalf("credit spread: %v", err)
	}
	if p.Figure.Title != "Credit Spread: US - DE (10Y)" {
		t.Fatalf("title = %q", p.Figure.Title)
	}
	y := p.Figure.Traces[0].Y
	if math.Abs(y[0]-1.5) > 1e-12 || math.Abs(y[1]-1.6) > 1e-12 {
		t.Fatalf("y = %v", y)
	}
}

func TestCurveSpreadAndFly(t *testing.T) {
	store := newMemStore()
	store.put("US_2Y", 4.5, 4.6)
	store.put("US_5Y", 4.0, 4.0)
	store.put("US_10Y", 4.1, 4.3)
	uc := newDashboard(store)

	cs, err := uc.CurveSpread(context.Background(), "US", "10Y", "2Y")
	if err != nil {
		t.Fatalf("curve spread: %v", err)
	}
	if cs.Figure.Title != "Curve Spread: 10Y - 2Y (US)" {
		t.Fatalf("title = %q", cs.Figure.Title)
	}
	if math.Abs(cs.Figure.Traces[0].Y[0]-(-0.4)) > 1e-12 {
		t.Fatalf("y = %v", cs.Figure.Traces[0].Y)
	}

	fly, err := uc.Fly(context.Background(), "US", "2Y", "5Y", "10Y")
	if err != nil {
		t.Fatalf("fly: %v", err)
	}
	if fly.Figure.Title != "US Fly (2Y, 5Y, 10Y)" {
		t.Fatalf("title = %q", fly.Figure.Title)
	}
	if len(fly.Figure.HLines) != 1 || fly.Figure.HLines[0] != 0 {
		t.Fatalf("fly needs a zero line, got %v", fly.Figure.HLines)
	}
	want := 2*4.0 - 4.5 - 4.1
	if math.Abs(fly.Figure.Traces[0].Y[0]-want) > 1e-12 {
		t.Fatalf("fly = %v, want %v", fly.Figure.Traces[0].Y[0], want)
	}
}

func TestRateCurveLatest(t *testing.T) {
	store := newMemStore()
	store.put("US_2Y", 4.5, 4.6)
	store.put("US_10Y", 4.1, 4.3)
	store.put("DE_10Y", 2.4)

	rc, err := newDashboard(store).RateCurve(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("rate curve: %v", err)
	}
	if rc.NoData || len(rc.Rows) != 4 {
		t.Fatalf("unexpected curve %+v", rc)
	}
	byKey := map[string]*float64{}
	for _, r := range rc.Rows {
		byKey[r.Issuer+"_"+r.Maturity] = r.Value
	}
	if *byKey["US_2Y"] != 4.6 || *byKey["DE_10Y"] != 2.4 || byKey["DE_2Y"] != nil {
		t.Fatalf("unexpected rows %+v", rc.Rows)
	}
	if len(rc.Figure.Traces) != 2 || rc.Figure.Traces[0].Name != "US" || len(rc.Figure.Traces[1].X) != 1 {
		t.Fatalf("unexpected traces %+v", rc.Figure.Traces)
	}
}

func TestRateCurveVariation(t *testing.T) {
	store := newMemStore()
	// days 1..3
	store.put("US_10Y", 4.0, 4.5, 5.0)
	start := civil.Date{Year: 2024, Month: 1, Day: 1}
	end := civil.Date{Year: 2024, Month: 1, Day: 10}

	rc, err := newDashboard(store).RateCurve(context.Background(), &start, &end)
	if err != nil {
		t.Fatalf("rate curve: %v", err)
	}
	for _, r := range rc.Rows {
		if r.Issuer == "US" && r.Maturity == "10Y" {
			if r.Value == nil || math.Abs(*r.Value-1.0) > 1e-12 {
				t.Fatalf("variation = %v, want 1", r.Value)
			}
			return
		}
	}
	t.Fatalf("US_10Y row missing")
}

func TestRateCurveRejectsReversedRange(t *testing.T) {
	start := civil.Date{Year: 2024, Month: 2, Day: 1}
	end := civil.Date{Year: 2024, Month: 1, Day: 1}
	if _, err := newDashboard(newMemStore()).RateCurve(context.Background(), &start, &end); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseDateRange(t *testing.T) {
	if s, e, err := ParseDateRange("", ""); err != nil || s != nil || e != nil {
		t.Fatalf("empty range: %v %v %v", s, e, err)
	}
	if _, _, err := ParseDateRange("2024-01-01", ""); err == nil {
		t.Fatalf("expected error for half range")
	}
	if _, _, err := ParseDateRange("2024-02-01", "2024-01-01"); err == nil {
		t.Fatalf("expected error for reversed range")
	}
	s, e, err := ParseDateRange("2024-01-01", "2024-01-31")
	if err != nil || s.Day != 1 || e.Day != 31 {
		t.Fatalf("range: %v %v %v", s, e, err)
	}
}

type fakeSource struct {
	fail map[string]bool
}

func (f *fakeSource) FetchEOD(_ context.Context, key models.SeriesKey) ([]models.EODRecord, error) {
	if f.fail[key.String()] {
		return nil, fmt.Errorf("upstream 500 for %s", key)
	}
	if key.Maturity == "2Y" {
		return []models.EODRecord{}, nil
	}
	return []models.EODRecord{{Date: "2024-01-02", Close: 4}, {Date: "2024-01-03", Close: 4.1}}, nil
}

type fakeMirror struct{ calls int }

func (m *fakeMirror) Replace(context.Context, models.SeriesKey, []models.EODRecord) error {
	m.calls++
	return errors.New("clickhouse down")
}
func (m *fakeMirror) Close() error { return nil }

type fakePublisher struct{ events []models.SnapshotRefreshed }

func (p *fakePublisher) PublishRefreshed(_ context.Context, ev models.SnapshotRefreshed) error {
	p.events = append(p.events, ev)
	return nil
}
func (p *fakePublisher) Close() error { return nil }

func TestRefreshAllContinuesPastFailure(t *testing.T) {
	store := newMemStore()
	metrics := newNopMetrics()
	mirror := &fakeMirror{}
	pub := &fakePublisher{}
	r := NewSnapshotRefresher(&fakeSource{fail: map[string]bool{"US_10Y": true}}, store,
		WithMirror(mirror),
		WithPublisher(pub),
		WithRefresherMetrics(metrics),
	)

	var progressed []string
	rep := r.RefreshAll(context.Background(), universe.Keys(), func(done, total int, key models.SeriesKey, outcome string) {
		progressed = append(progressed, fmt.Sprintf("%d/%d %s %s", done, total, key, outcome))
	})

	if rep.Total != 4 || rep.Failed != 1 || rep.Empty != 2 || rep.OK != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.AllFailed() {
		t.Fatalf("one success must not count as all failed")
	}
	if rep.Failures[0].Key.String() != "US_10Y" {
		t.Fatalf("unexpected failure %+v", rep.Failures)
	}
	if len(progressed) != 4 || progressed[3] != "4/4 DE_10Y ok" {
		t.Fatalf("unexpected progress %v", progressed)
	}
	if _, ok := store.saved["DE_10Y"]; !ok {
		t.Fatalf("DE_10Y not saved")
	}
	if mirror.calls != 3 || metrics.errs["mirror"] != 3 {
		t.Fatalf("mirror errors must be logged, not fatal: calls=%d errs=%v", mirror.calls, metrics.errs)
	}
	if len(pub.events) != 3 || pub.events[2].LastDate != "2024-01-03" {
		t.Fatalf("unexpected events %+v", pub.events)
	}
	if metrics.fetches[FetchFailed] != 1 {
		t.Fatalf("fetch failure not recorded")
	}
}

func TestRefreshAllFailed(t *testing.T) {
	src := &fakeSource{fail: map[string]bool{"US_2Y": true, "US_10Y": true}}
	r := NewSnapshotRefresher(src, newMemStore())
	rep := r.RefreshAll(context.Background(), []models.SeriesKey{{Issuer: "US", Maturity: "2Y"}, {Issuer: "US", Maturity: "10Y"}}, nil)
	if !rep.AllFailed() {
		t.Fatalf("expected all failed, got %+v", rep)
	}
}

func TestRefreshAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewSnapshotRefresher(&fakeSource{}, newMemStore())
	r.now = func() time.Time { return time.Unix(0, 0) }
	rep := r.RefreshAll(ctx, universe.Keys(), nil)
	if rep.Failed != 4 || !errors.Is(rep.Failures[0].Err, context.Canceled) {
		t.Fatalf("unexpected report %+v", rep)
	}
}

type fakeSeriesCache struct{ purged []string }

func (c *fakeSeriesCache) Get(context.Context, models.SeriesKey, string) (models.Series, bool, error) {
	return models.Series{}, false, nil
}
func (c *fakeSeriesCache) Set(context.Context, models.SeriesKey, string, models.Series, time.Duration) error {
	return nil
}
func (c *fakeSeriesCache) Purge(_ context.Context, key models.SeriesKey) error {
	c.purged = append(c.purged, key.String())
	return nil
}

func TestRefreshEventsHandler(t *testing.T) {
	c := &fakeSeriesCache{}
	h := NewRefreshEventsHandler("govtracker.snapshot.refreshed", c, newNopMetrics(), nil)

	if err := h.Handle(context.Background(), []byte(`{"issuer":"us","maturity":"10y","rows":2}`)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(c.purged) != 1 || c.purged[0] != "US_10Y" {
		t.Fatalf("unexpected purges %v", c.purged)
	}

	if err := h.Handle(context.Background(), []byte(`not json`)); !errors.Is(err, pkgkafka.ErrPermanent) {
		t.Fatalf("bad payload must be permanent, got %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"issuer":"../x","maturity":"10Y"}`)); !errors.Is(err, pkgkafka.ErrPermanent) {
		t.Fatalf("bad key must be permanent, got %v", err)
	}
}
