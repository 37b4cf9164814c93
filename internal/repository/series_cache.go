package repository

import (
	"context"
	"errors"
	"time"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	"GovTracker/pkg/cache"
)

const seriesKeyPrefix = "series"

// SeriesCache stores decoded series in a cache.Service under series:{KEY}:{version}.
type SeriesCache struct {
	c cache.Service
}

func NewSeriesCache(c cache.Service) *SeriesCache {
	return &SeriesCache{c: c}
}

func (s *SeriesCache) Get(ctx context.Context, key models.SeriesKey, version string) (models.Series, bool, error) {
	out, err := cache.GetTyped[models.Series](ctx, s.c, cache.GenerateKey(seriesKeyPrefix, key.String(), version))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.Series{}, false, nil
		}
		return models.Series{}, false, err
	}
	return out, true, nil
}

func (s *SeriesCache) Set(ctx context.Context, key models.SeriesKey, version string, series models.Series, ttl time.Duration) error {
	return s.c.Set(ctx, cache.GenerateKey(seriesKeyPrefix, key.String(), version), series, ttl)
}

// Purge drops every cached version of key.
func (s *SeriesCache) Purge(ctx context.Context, key models.SeriesKey) error {
	return s.c.DeleteByPattern(ctx, cache.BuildPattern(seriesKeyPrefix, key.String()))
}

var _ domrepo.SeriesCache = (*SeriesCache)(nil)
