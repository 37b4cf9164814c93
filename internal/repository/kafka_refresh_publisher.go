package repository

import (
	"context"

	"GovTracker/internal/domain/models"
	domrepo "GovTracker/internal/domain/repository"
	pkgkafka "GovTracker/pkg/kafka"
)

// KafkaRefreshPublisher implements RefreshPublisher for Kafka. Events are keyed by series.
type KafkaRefreshPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRefreshPublisher(producer *pkgkafka.Producer, topic string) *KafkaRefreshPublisher {
	return &KafkaRefreshPublisher{producer: producer, topic: topic}
}

func (p *KafkaRefreshPublisher) PublishRefreshed(ctx context.Context, ev models.SnapshotRefreshed) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Key().String()), ev)
}

func (p *KafkaRefreshPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.RefreshPublisher = (*KafkaRefreshPublisher)(nil)
