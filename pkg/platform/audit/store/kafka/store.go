// Package kafka tees audit events onto a Kafka topic for downstream
// consumers while an inner store remains the system of record.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"veridian/internal/platform/kafka/producer"
	"veridian/pkg/platform/audit"
)

// Store wraps an inner audit store and forwards every appended event to a
// Kafka topic. Publishing is best effort; a broker outage never fails the
// registry mutation that emitted the event.
type Store struct {
	inner    audit.Store
	producer *producer.Producer
	topic    string
	logger   *slog.Logger
}

// New creates a Kafka tee over the inner store.
func New(inner audit.Store, prod *producer.Producer, topic string, logger *slog.Logger) *Store {
	return &Store{inner: inner, producer: prod, topic: topic, logger: logger}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if err := s.inner.Append(ctx, event); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	msg := producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: payload,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	}
	if err := s.producer.Publish(ctx, msg); err != nil && s.logger != nil {
		s.logger.Warn("failed to publish audit event to kafka",
			"error", err,
			"action", event.Action,
			"subject", event.Subject,
		)
	}
	return nil
}

func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return s.inner.ListBySubject(ctx, subject)
}
