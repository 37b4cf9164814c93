package server

import (
	"context"

	"GovTracker/internal/domain/models"
	"GovTracker/internal/usecase"
	applogger "GovTracker/pkg/logger"
)

// FetchJob is the one-shot refresh of every configured snapshot.
type FetchJob struct {
	refresher *usecase.SnapshotRefresher
	keys      []models.SeriesKey
	l         *applogger.Logger
}

func NewFetchJob(refresher *usecase.SnapshotRefresher, universe models.Universe, l *applogger.Logger) *FetchJob {
	if l == nil {
		l = applogger.Nop()
	}
	return &FetchJob{refresher: refresher, keys: universe.Keys(), l: l}
}

// Keys returns the pairs the job refreshes, in order.
func (j *FetchJob) Keys() []models.SeriesKey {
	return j.keys
}

// Run refreshes every pair. progress may be nil.
func (j *FetchJob) Run(ctx context.Context, progress usecase.ProgressFunc) usecase.RefreshReport {
	j.l.Info("refreshing snapshots", applogger.Int("pairs", len(j.keys)))
	return j.refresher.RefreshAll(ctx, j.keys, progress)
}
