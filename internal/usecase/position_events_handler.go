package usecase

import (
	"context"
	"encoding/json"
	"time"

	"CryptoBooster/internal/domain/models"
	domrepo "CryptoBooster/internal/domain/repository"
	pkgkafka "CryptoBooster/pkg/kafka"
)

// PositionEventsHandler consumes position change events from Kafka and
// archives them to ClickHouse.
type PositionEventsHandler struct {
	topic   string
	archive domrepo.PositionArchive
	metrics domrepo.Metrics
}

func NewPositionEventsHandler(topic string, archive domrepo.PositionArchive, metrics domrepo.Metrics) *PositionEventsHandler {
	return &PositionEventsHandler{topic: topic, archive: archive, metrics: metrics}
}

func (h *PositionEventsHandler) Topic() string { return h.topic }

func (h *PositionEventsHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.PositionEventRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	// E2E latency from mutation time to archive write
	h.metrics.RecordLatency("event_e2e_seconds", time.Since(rec.At).Seconds())

	start := time.Now()
	err := h.archive.Archive(ctx, &rec)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_archive")
		return err
	}
	h.metrics.RecordEventPublished("clickhouse", rec.Position.CryptoSymbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*PositionEventsHandler)(nil)
