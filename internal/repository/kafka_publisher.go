package repository

import (
	"context"
	"time"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
	pkgkafka "TipFusion/pkg/kafka"
)

// KafkaDecisionPublisher pushes decisions keyed by event id and daily picks
// keyed by generation date.
type KafkaDecisionPublisher struct {
	producer       pkgkafka.Publisher
	decisionsTopic string
	picksTopic     string
}

func NewKafkaDecisionPublisher(producer pkgkafka.Publisher, decisionsTopic, picksTopic string) *KafkaDecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, decisionsTopic: decisionsTopic, picksTopic: picksTopic}
}

func (p *KafkaDecisionPublisher) Publish(ctx context.Context, d *models.Decision) error {
	return p.producer.Publish(ctx, p.decisionsTopic, []byte(d.EventID), d)
}

func (p *KafkaDecisionPublisher) PublishBatch(ctx context.Context, ds []*models.Decision) error {
	if len(ds) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(ds))
	for _, d := range ds {
		if d == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(d.EventID), Value: d})
	}
	return p.producer.PublishBatch(ctx, p.decisionsTopic, msgs)
}

func (p *KafkaDecisionPublisher) PublishPicks(ctx context.Context, dp *models.DailyPicks) error {
	return p.producer.Publish(ctx, p.picksTopic, []byte(dp.GeneratedAt.Format(time.DateOnly)), dp)
}

func (p *KafkaDecisionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.DecisionPublisher = (*KafkaDecisionPublisher)(nil)
