package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"GovTracker/internal/domain/models"
	"GovTracker/internal/usecase"
	"GovTracker/pkg/config"
	xhttp "GovTracker/pkg/http"
)

type closeRecorder struct {
	mu    *sync.Mutex
	order *[]string
	name  string
}

func (c closeRecorder) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.order = append(*c.order, c.name)
	return nil
}

func TestRunContextShutsDownInReverseOrder(t *testing.T) {
	cfg := &config.Config{Environment: "test"}
	cfg.Server.ShutdownTimeout = time.Second

	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0))
	app := New(cfg, nil, srv, nil, nil)

	var mu sync.Mutex
	var order []string
	app.OnShutdown(closeRecorder{&mu, &order, "cache"}, nil, closeRecorder{&mu, &order, "producer"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.RunContext(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(order) != 2 || order[0] != "producer" || order[1] != "cache" {
		t.Fatalf("close order = %v", order)
	}
}

type stubSource struct {
	fail map[string]bool
}

func (s stubSource) FetchEOD(_ context.Context, key models.SeriesKey) ([]models.EODRecord, error) {
	if s.fail[key.String()] {
		return nil, errors.New("upstream 500")
	}
	return []models.EODRecord{{Date: "2024-01-02", Close: 4.0}}, nil
}

type stubStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *stubStore) Load(context.Context, models.SeriesKey) (models.Series, bool, error) {
	return models.Series{}, false, nil
}

func (s *stubStore) Save(_ context.Context, key models.SeriesKey, _ []models.EODRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, key.String())
	return nil
}

func TestFetchJobRefreshesUniverse(t *testing.T) {
	u := models.Universe{Issuers: []string{"US", "DE"}, Maturities: []string{"2Y", "10Y"}}
	store := &stubStore{}
	src := stubSource{fail: map[string]bool{"DE_2Y": true}}
	job := NewFetchJob(usecase.NewSnapshotRefresher(src, store), u, nil)

	if got := len(job.Keys()); got != 4 {
		t.Fatalf("keys = %d", got)
	}

	var calls int
	rep := job.Run(context.Background(), func(done, total int, _ models.SeriesKey, _ string) {
		calls++
		if total != 4 || done != calls {
			t.Fatalf("progress %d/%d at call %d", done, total, calls)
		}
	})
	if rep.OK != 3 || rep.Failed != 1 || rep.AllFailed() {
		t.Fatalf("report = %+v", rep)
	}
	if len(store.saved) != 3 || store.saved[0] != "US_2Y" {
		t.Fatalf("saved = %v", store.saved)
	}
}
