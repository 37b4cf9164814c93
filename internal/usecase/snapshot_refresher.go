package usecase

import (
	"context"
	"fmt"
	"time"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	applogger "GovTracker/pkg/logger"
)

// Fetch outcomes recorded in metrics and the report.
const (
	FetchOK     = "ok"
	FetchEmpty  = "empty"
	FetchFailed = "failed"
)

// RefreshFailure is one pair the refresher had to skip.
type RefreshFailure struct {
	Key models.SeriesKey
	Err error
}

// RefreshReport summarizes one RefreshAll run.
type RefreshReport struct {
	Total    int
	OK       int
	Empty    int
	Failed   int
	Failures []RefreshFailure
	Duration time.Duration
}

// AllFailed reports whether nothing could be refreshed.
func (r RefreshReport) AllFailed() bool {
	return r.Total > 0 && r.Failed == r.Total
}

// ProgressFunc is called after each pair with the number of pairs done.
type ProgressFunc func(done, total int, key models.SeriesKey, outcome string)

// SnapshotRefresher pulls every configured series and rewrites its snapshot.
// Pairs are processed one by one; a failing pair is logged and skipped.
type SnapshotRefresher struct {
	source    domrepo.EODSource
	store     domrepo.SnapshotStore
	mirror    domrepo.YieldMirror
	publisher domrepo.RefreshPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time
}

// RefresherOption configures SnapshotRefresher.
type RefresherOption func(*SnapshotRefresher)

// WithMirror copies each fetched history into m.
func WithMirror(m domrepo.YieldMirror) RefresherOption {
	return func(r *SnapshotRefresher) { r.mirror = m }
}

// WithPublisher announces each rewritten snapshot on p.
func WithPublisher(p domrepo.RefreshPublisher) RefresherOption {
	return func(r *SnapshotRefresher) { r.publisher = p }
}

// WithRefresherMetrics records fetch outcomes.
func WithRefresherMetrics(m domrepo.Metrics) RefresherOption {
	return func(r *SnapshotRefresher) { r.metrics = m }
}

// WithRefresherLogger injects a structured logger.
func WithRefresherLogger(l *applogger.Logger) RefresherOption {
	return func(r *SnapshotRefresher) { r.l = l }
}

func NewSnapshotRefresher(source domrepo.EODSource, store domrepo.SnapshotStore, opts ...RefresherOption) *SnapshotRefresher {
	r := &SnapshotRefresher{
		source: source,
		store:  store,
		l:      applogger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RefreshAll refreshes keys in order. It stops early only when ctx is done.
func (r *SnapshotRefresher) RefreshAll(ctx context.Context, keys []models.SeriesKey, progress ProgressFunc) RefreshReport {
	start := r.now()
	rep := RefreshReport{Total: len(keys)}

	for i, key := range keys {
		if ctx.Err() != nil {
			r.l.Warn("refresh interrupted", applogger.Int("done", i), applogger.Int("total", len(keys)))
			for _, k := range keys[i:] {
				rep.Failed++
				rep.Failures = append(rep.Failures, RefreshFailure{Key: k, Err: ctx.Err()})
			}
			break
		}

		rows, err := r.Refresh(ctx, key)
		outcome := FetchOK
		switch {
		case err != nil:
			outcome = FetchFailed
			rep.Failed++
			rep.Failures = append(rep.Failures, RefreshFailure{Key: key, Err: err})
			r.l.Error("refresh failed",
				applogger.String("issuer", key.Issuer),
				applogger.String("maturity", key.Maturity),
				applogger.Error(err),
			)
		case rows == 0:
			outcome = FetchEmpty
			rep.Empty++
			r.l.Warn("refresh returned no rows",
				applogger.String("issuer", key.Issuer),
				applogger.String("maturity", key.Maturity),
			)
		default:
			rep.OK++
		}
		if r.metrics != nil {
			r.metrics.RecordFetch(outcome)
		}
		if progress != nil {
			progress(i+1, len(keys), key, outcome)
		}
	}

	rep.Duration = r.now().Sub(start)
	r.l.Info("refresh finished",
		applogger.Int("total", rep.Total),
		applogger.Int("ok", rep.OK),
		applogger.Int("empty", rep.Empty),
		applogger.Int("failed", rep.Failed),
		applogger.Duration("duration_ms", rep.Duration),
	)
	return rep
}

// Refresh pulls one series and overwrites its snapshot. Mirror and publish
// errors are logged; the snapshot write decides success.
func (r *SnapshotRefresher) Refresh(ctx context.Context, key models.SeriesKey) (int, error) {
	if !domrepo.IsValidKey(key) {
		return 0, fmt.Errorf("invalid key %q", key.String())
	}

	started := r.now()
	records, err := r.source.FetchEOD(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if err := r.store.Save(ctx, key, records); err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}
	if r.metrics != nil {
		r.metrics.RecordLatency("refresh", r.now().Sub(started).Seconds())
		if n := len(records); n > 0 {
			r.metrics.RecordLastClose(key.String(), records[n-1].Close)
		}
	}

	if r.mirror != nil {
		if err := r.mirror.Replace(ctx, key, records); err != nil {
			r.l.Warn("mirror replace failed", applogger.String("key", key.String()), applogger.Error(err))
			if r.metrics != nil {
				r.metrics.RecordError("mirror")
			}
		}
	}

	if r.publisher != nil {
		ev := models.SnapshotRefreshed{
			Issuer:      key.Issuer,
			Maturity:    key.Maturity,
			Rows:        len(records),
			RefreshedAt: r.now().UTC(),
		}
		if n := len(records); n > 0 {
			ev.LastDate = records[n-1].Date
		}
		if err := r.publisher.PublishRefreshed(ctx, ev); err != nil {
			r.l.Warn("refresh event not published", applogger.String("key", key.String()), applogger.Error(err))
			if r.metrics != nil {
				r.metrics.RecordError("publish")
			}
		}
	}

	r.l.Debug("snapshot refreshed", applogger.String("key", key.String()), applogger.Int("rows", len(records)))
	return len(records), nil
}
