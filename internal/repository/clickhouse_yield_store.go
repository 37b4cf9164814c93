package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	pkgch "GovTracker/pkg/clickhouse"
	applogger "GovTracker/pkg/logger"
	"GovTracker/pkg/util"
)

const yieldInsertChunk = 2000

// CHYieldStore mirrors fetched history into a ClickHouse table, one row per
// (issuer, maturity, date).
type CHYieldStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

func NewCHYieldStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHYieldStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHYieldStore{db: ch.DB(), table: table, l: l, now: time.Now}
}

// YieldSchema returns the DDL for the mirror table.
func YieldSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    issuer LowCardinality(String),
    maturity LowCardinality(String),
    date Date,
    open Float64,
    high Float64,
    low Float64,
    close Float64,
    adjusted_close Float64,
    volume Int64,
    ingested_at DateTime
) ENGINE = ReplacingMergeTree(ingested_at)
ORDER BY (issuer, maturity, date)`, database, table),
	}
}

// Replace drops the rows of key and inserts records in chunks.
func (s *CHYieldStore) Replace(ctx context.Context, key models.SeriesKey, records []models.EODRecord) error {
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE issuer = ? AND maturity = ? SETTINGS mutations_sync = 1", s.table)
	if _, err := s.db.ExecContext(ctx, del, key.Issuer, key.Maturity); err != nil {
		s.l.Error("clickhouse delete error",
			applogger.String("table", s.table),
			applogger.String("key", key.String()),
			applogger.Error(err),
		)
		return fmt.Errorf("clear %s: %w", key, err)
	}

	ingested := s.now().UTC().Truncate(time.Second)
	for start := 0; start < len(records); start += yieldInsertChunk {
		end := start + yieldInsertChunk
		if end > len(records) {
			end = len(records)
		}
		q, args := buildYieldInsert(s.table, key, records[start:end], ingested)
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", s.table),
				applogger.String("key", key.String()),
				applogger.Int("rows", end-start),
				applogger.Error(err),
			)
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}
	return nil
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *CHYieldStore) Close() error { return nil }

func buildYieldInsert(table string, key models.SeriesKey, records []models.EODRecord, ingested time.Time) (string, []interface{}) {
	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*10)
	for _, r := range records {
		d, ok := util.ParseDate(r.Date)
		if !ok {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			key.Issuer,
			key.Maturity,
			d.In(time.UTC),
			r.Open,
			r.High,
			r.Low,
			r.Close,
			r.AdjustedClose,
			r.Volume,
			ingested,
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	q := fmt.Sprintf("INSERT INTO %s (issuer, maturity, date, open, high, low, close, adjusted_close, volume, ingested_at) VALUES %s",
		table, strings.Join(values, ","))
	return q, args
}

var _ domrepo.YieldMirror = (*CHYieldStore)(nil)
