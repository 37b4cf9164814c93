package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	applogger "GovTracker/pkg/logger"
	"GovTracker/pkg/util"
)

// SnapshotExt is the extension of snapshot files.
const SnapshotExt = ".parquet"

// snapshotRow is the read projection of a snapshot file; other columns are ignored.
// Close is optional so files with null closes read as nil rather than 0.
type snapshotRow struct {
	Date  string   `parquet:"date,optional"`
	Close *float64 `parquet:"close,optional"`
}

// ParquetSnapshotStore implements SnapshotStore over a directory of
// {issuer}_{maturity}.parquet files.
type ParquetSnapshotStore struct {
	dir     string
	cache   domrepo.SeriesCache
	ttl     time.Duration
	metrics domrepo.Metrics
	l       *applogger.Logger
}

// SnapshotStoreOption configures ParquetSnapshotStore.
type SnapshotStoreOption func(*ParquetSnapshotStore)

// WithSeriesCache enables the read-through cache.
func WithSeriesCache(c domrepo.SeriesCache, ttl time.Duration) SnapshotStoreOption {
	return func(s *ParquetSnapshotStore) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithStoreMetrics records load outcomes.
func WithStoreMetrics(m domrepo.Metrics) SnapshotStoreOption {
	return func(s *ParquetSnapshotStore) {
		s.metrics = m
	}
}

// WithStoreLogger injects a structured logger.
func WithStoreLogger(l *applogger.Logger) SnapshotStoreOption {
	return func(s *ParquetSnapshotStore) {
		s.l = l
	}
}

func NewParquetSnapshotStore(dir string, opts ...SnapshotStoreOption) *ParquetSnapshotStore {
	s := &ParquetSnapshotStore{dir: dir, l: applogger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file a key maps to.
func (s *ParquetSnapshotStore) Path(key models.SeriesKey) string {
	return filepath.Join(s.dir, key.String()+SnapshotExt)
}

func (s *ParquetSnapshotStore) Load(ctx context.Context, key models.SeriesKey) (models.Series, bool, error) {
	start := time.Now()
	if !domrepo.IsValidKey(key) {
		s.l.Debug("snapshot key rejected", applogger.String("key", key.String()))
		s.record("missing")
		return models.Series{}, false, nil
	}

	path := s.Path(key)
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.record("missing")
			return models.Series{}, false, nil
		}
		s.record("error")
		return models.Series{}, false, fmt.Errorf("stat snapshot %s: %w", key, err)
	}
	version := fmt.Sprintf("%d:%d", fi.ModTime().UnixNano(), fi.Size())

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key, version)
		if err != nil {
			s.l.Warn("snapshot cache get error", applogger.String("key", key.String()), applogger.Error(err))
		} else if ok {
			s.record("cache_hit")
			return cached, true, nil
		}
	}

	rows, err := parquet.ReadFile[snapshotRow](path)
	if err != nil {
		s.record("error")
		return models.Series{}, false, fmt.Errorf("read snapshot %s: %w", key, err)
	}

	series, dropped := normalizeRows(key.String(), rows)
	if dropped > 0 {
		s.l.Debug("snapshot rows dropped",
			applogger.String("key", key.String()),
			applogger.Int("dropped", dropped),
		)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, version, series, s.ttl); err != nil {
			s.l.Warn("snapshot cache set error", applogger.String("key", key.String()), applogger.Error(err))
		}
	}

	s.record("loaded")
	if s.metrics != nil {
		s.metrics.RecordLatency("snapshot_load", time.Since(start).Seconds())
		if !series.Empty() {
			s.metrics.RecordLastClose(key.String(), series.Last().Value)
		}
	}
	return series, true, nil
}

// Save overwrites the snapshot of key with records. The file is replaced atomically.
func (s *ParquetSnapshotStore) Save(ctx context.Context, key models.SeriesKey, records []models.EODRecord) error {
	if !domrepo.IsValidKey(key) {
		return fmt.Errorf("invalid snapshot key %q", key.String())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key.String()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := parquet.Write(tmp, records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", key, err)
	}

	s.l.Debug("snapshot saved", applogger.String("key", key.String()), applogger.Int("rows", len(records)))
	return nil
}

func (s *ParquetSnapshotStore) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordSnapshotLoad(result)
	}
}

// normalizeRows parses dates, sorts ascending and keeps the last row per date.
// Rows whose date does not parse or whose close is null, NaN or infinite are
// dropped and counted.
func normalizeRows(name string, rows []snapshotRow) (models.Series, int) {
	obs := make([]models.Observation, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		d, ok := util.ParseDate(r.Date)
		if !ok || r.Close == nil || math.IsNaN(*r.Close) || math.IsInf(*r.Close, 0) {
			dropped++
			continue
		}
		obs = append(obs, models.Observation{Date: d, Value: *r.Close})
	}

	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})

	out := obs[:0]
	for _, o := range obs {
		if n := len(out); n > 0 && out[n-1].Date == o.Date {
			out[n-1] = o
			dropped++
			continue
		}
		out = append(out, o)
	}
	return models.Series{Name: name, Observations: out}, dropped
}

var _ domrepo.SnapshotStore = (*ParquetSnapshotStore)(nil)
