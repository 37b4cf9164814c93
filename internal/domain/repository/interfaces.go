package repository

import (
	"context"
	"time"

	"GovTracker/internal/domain/models"
)

// SnapshotStore reads and writes per-series snapshot files.
// Load reports found=false with a nil error when no snapshot exists.
type SnapshotStore interface {
	Load(ctx context.Context, key models.SeriesKey) (s models.Series, found bool, err error)
	Save(ctx context.Context, key models.SeriesKey, records []models.EODRecord) error
}

// EODSource pulls the full end-of-day history of one series.
type EODSource interface {
	FetchEOD(ctx context.Context, key models.SeriesKey) ([]models.EODRecord, error)
}

// YieldMirror keeps a copy of fetched history in an analytical store.
type YieldMirror interface {
	Replace(ctx context.Context, key models.SeriesKey, records []models.EODRecord) error
	Close() error
}

// RefreshPublisher announces rewritten snapshots.
type RefreshPublisher interface {
	PublishRefreshed(ctx context.Context, ev models.SnapshotRefreshed) error
	Close() error
}

// SeriesCache stores decoded series under an opaque version token.
type SeriesCache interface {
	Get(ctx context.Context, key models.SeriesKey, version string) (models.Series, bool, error)
	Set(ctx context.Context, key models.SeriesKey, version string, s models.Series, ttl time.Duration) error
	Purge(ctx context.Context, key models.SeriesKey) error
}

// Metrics receives operational counters. Implementations must be safe for concurrent use.
type Metrics interface {
	RecordSnapshotLoad(result string)
	RecordFetch(result string)
	RecordError(kind string)
	RecordLastClose(key string, value float64)
	RecordLatency(op string, seconds float64)
}
