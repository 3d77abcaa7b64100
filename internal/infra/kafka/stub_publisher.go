package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
	"github.com/zywangzy/fun-with-flags/internal/core/port"
	"github.com/zywangzy/fun-with-flags/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured, typically in development.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	fields = append(fields,
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
	)
	p.logger.Info("Stub event published", fields...)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent(eventTypeUserRegistered, event.RegisteredAt,
		zap.Int("user_id", event.UserID),
		zap.String("username", event.Username),
		zap.String("email", logger.MaskEmail(event.Email)),
	)
	return nil
}

// PublishUserLoggedIn logs user.logged_in events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.logEvent(eventTypeUserLoggedIn, event.At,
		zap.Int("user_id", event.UserID),
		zap.String("username", event.Username),
		zap.Bool("fresh", event.Fresh),
	)
	return nil
}

// PublishUserLoggedOut logs user.logged_out events.
func (p *StubPublisher) PublishUserLoggedOut(_ context.Context, event domain.UserLoggedOutEvent) error {
	p.logEvent(eventTypeUserLoggedOut, event.At,
		zap.String("jti", logger.MaskString(event.JTI)),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
