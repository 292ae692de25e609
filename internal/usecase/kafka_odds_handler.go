package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
	mid "TipFusion/internal/middleware"
	pkgkafka "TipFusion/pkg/kafka"
)

// KafkaOddsHandler consumes odds updates published by upstream scrapers.
type KafkaOddsHandler struct {
	topic   string
	proc    mid.Proc
	metrics domrepo.Metrics
}

func NewKafkaOddsHandler(topic string, proc mid.Proc, metrics domrepo.Metrics) *KafkaOddsHandler {
	return &KafkaOddsHandler{topic: topic, proc: proc, metrics: metrics}
}

func (h *KafkaOddsHandler) Topic() string { return h.topic }

// incoming message schema: models.OddsUpdate as JSON
func (h *KafkaOddsHandler) Handle(ctx context.Context, b []byte) error {
	var u models.OddsUpdate
	if err := json.Unmarshal(b, &u); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if u.EventID == "" {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("odds update without match_id")
	}
	if !u.Timestamp.IsZero() {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(u.Timestamp).Seconds())
	}

	start := time.Now()
	err := h.proc.Process(ctx, &u)
	h.metrics.RecordLatency("live_handle_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_process")
		return err
	}
	h.metrics.RecordMessageSent("kafka_in", u.Sport)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaOddsHandler)(nil)
