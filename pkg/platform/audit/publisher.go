package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher emits audit events. Implementations must be safe for concurrent
// use.
type Publisher interface {
	// Emit writes synchronously. Returns error if the event cannot be
	// persisted; the calling operation must then fail (fail-closed).
	Emit(ctx context.Context, event Event) error
	// EmitAsync writes without blocking the caller; failures are logged, not
	// returned.
	EmitAsync(ctx context.Context, event Event)
}

// KafkaPublisher produces audit events to a Kafka topic.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects a producer for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Emit produces synchronously and blocks until the broker acknowledges.
func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	record, err := p.record(event)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event %s: %w", event.Action, err)
	}
	return nil
}

// EmitAsync produces without waiting for the broker; delivery failures are
// logged with the action for later reconciliation.
func (p *KafkaPublisher) EmitAsync(ctx context.Context, event Event) {
	record, err := p.record(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "encode audit event", "action", event.Action, "error", err)
		return
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("deliver audit event", "action", event.Action, "error", err)
		}
	})
}

// Close flushes pending records and releases the producer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush audit producer: %w", err)
	}
	p.client.Close()
	return nil
}

func (p *KafkaPublisher) record(event Event) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	// Key by competition event so one edition's trail stays ordered within a
	// partition.
	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.EventID.String()),
		Value: value,
	}, nil
}

// LogPublisher writes audit events to the structured log. Used when Kafka is
// not configured (local development, tests).
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	p.log(ctx, event)
	return nil
}

func (p *LogPublisher) EmitAsync(ctx context.Context, event Event) {
	p.log(ctx, event)
}

func (p *LogPublisher) log(ctx context.Context, event Event) {
	p.Logger.InfoContext(ctx, "audit",
		"action", event.Action,
		"event_id", event.EventID,
		"actor_id", event.ActorID,
		"details", event.Details,
	)
}
