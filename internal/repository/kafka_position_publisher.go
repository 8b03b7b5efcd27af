package repository

import (
	"context"

	"CryptoBooster/internal/domain/models"
	"CryptoBooster/internal/domain/repository"
	pkgkafka "CryptoBooster/pkg/kafka"
)

// KafkaPositionPublisher emits position change events to a Kafka topic.
// Events are keyed by position id so every event of one position lands on the
// same partition and replays in order.
type KafkaPositionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	metrics  repository.Metrics
}

func NewKafkaPositionPublisher(producer *pkgkafka.Producer, topic string, metrics repository.Metrics) repository.Publisher {
	return &KafkaPositionPublisher{producer: producer, topic: topic, metrics: metrics}
}

func (p *KafkaPositionPublisher) Publish(ctx context.Context, ev *models.PositionEvent) error {
	key := []byte(ev.Position.ID)
	if len(key) == 0 {
		key = []byte(ev.UserID)
	}
	if err := p.producer.Publish(ctx, p.topic, key, ev.Record()); err != nil {
		p.metrics.RecordError("publish")
		return err
	}
	p.metrics.RecordEventPublished("kafka", ev.Position.CryptoSymbol)
	return nil
}

func (p *KafkaPositionPublisher) Close() error {
	return p.producer.Close()
}
