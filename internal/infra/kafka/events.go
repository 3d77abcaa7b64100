package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
	"github.com/zywangzy/fun-with-flags/internal/core/port"
	"github.com/zywangzy/fun-with-flags/internal/infra/config"
	"github.com/zywangzy/fun-with-flags/internal/infra/logger"
)

const schemaVersion = "1.0"

const (
	eventTypeUserRegistered = "user.registered"
	eventTypeUserLoggedIn   = "user.logged_in"
	eventTypeUserLoggedOut  = "user.logged_out"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, log *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: log}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    int              `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventType string, userID int, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	envelope := eventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: envelopeMetadata{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered emits a user.registered event.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"email":         logger.MaskEmail(event.Email),
		"registered_at": event.RegisteredAt,
	}
	return p.publish(ctx, eventTypeUserRegistered, event.UserID, event.RegisteredAt, payload)
}

// PublishUserLoggedIn emits a user.logged_in event.
func (p *EventPublisher) PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error {
	payload := map[string]any{
		"user_id":  event.UserID,
		"username": event.Username,
		"fresh":    event.Fresh,
		"at":       event.At,
	}
	return p.publish(ctx, eventTypeUserLoggedIn, event.UserID, event.At, payload)
}

// PublishUserLoggedOut emits a user.logged_out event. The jti is masked; the
// raw identifier is enough to reconstruct a valid cache key.
func (p *EventPublisher) PublishUserLoggedOut(ctx context.Context, event domain.UserLoggedOutEvent) error {
	payload := map[string]any{
		"jti": logger.MaskString(event.JTI),
		"at":  event.At,
	}
	return p.publish(ctx, eventTypeUserLoggedOut, 0, event.At, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
