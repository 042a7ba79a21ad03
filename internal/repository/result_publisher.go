package repository

import (
	"context"

	"PeerBench/internal/domain/models"
	"PeerBench/internal/domain/repository"
)

// MessageProducer is satisfied by *kafka.Producer.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaResultPublisher writes each comparison to a topic keyed by the focal
// certificate, so one bank's results stay ordered within a partition.
type KafkaResultPublisher struct {
	producer MessageProducer
	topic    string
}

func NewKafkaResultPublisher(producer MessageProducer, topic string) *KafkaResultPublisher {
	return &KafkaResultPublisher{producer: producer, topic: topic}
}

func (p *KafkaResultPublisher) Publish(ctx context.Context, res *models.ComparisonResult) error {
	if res == nil {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(res.Focal.ID), res)
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops results. Used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.ComparisonResult) error { return nil }

func (NoopPublisher) Close() error { return nil }

var (
	_ repository.ResultPublisher = (*KafkaResultPublisher)(nil)
	_ repository.ResultPublisher = NoopPublisher{}
)
