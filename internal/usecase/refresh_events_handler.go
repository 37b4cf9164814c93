package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	pkgkafka "GovTracker/pkg/kafka"
	applogger "GovTracker/pkg/logger"
)

// RefreshEventsHandler drops cached series when the fetch step announces a rewrite.
type RefreshEventsHandler struct {
	topic   string
	cache   domrepo.SeriesCache
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewRefreshEventsHandler(topic string, cache domrepo.SeriesCache, metrics domrepo.Metrics, l *applogger.Logger) *RefreshEventsHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &RefreshEventsHandler{topic: topic, cache: cache, metrics: metrics, l: l}
}

func (h *RefreshEventsHandler) Topic() string { return h.topic }

func (h *RefreshEventsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.SnapshotRefreshed
	if err := json.Unmarshal(b, &ev); err != nil {
		h.recordError("consumer_unmarshal")
		return fmt.Errorf("decode refresh event: %v: %w", err, pkgkafka.ErrPermanent)
	}
	key := domrepo.NormalizeKey(ev.Issuer, ev.Maturity)
	if !domrepo.IsValidKey(key) {
		h.recordError("consumer_key")
		return fmt.Errorf("refresh event key %q: %w", key.String(), pkgkafka.ErrPermanent)
	}

	if err := h.cache.Purge(ctx, key); err != nil {
		h.recordError("cache_purge")
		return fmt.Errorf("purge %s: %w", key, err)
	}
	h.l.Info("snapshot cache purged",
		applogger.String("key", key.String()),
		applogger.Int("rows", ev.Rows),
		applogger.String("last_date", ev.LastDate),
	)
	return nil
}

func (h *RefreshEventsHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*RefreshEventsHandler)(nil)
