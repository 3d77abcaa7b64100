package port

import (
	"context"

	"github.com/zywangzy/fun-with-flags/internal/core/domain"
)

// EventPublisher emits account lifecycle events to downstream consumers.
// Publishing is best-effort; use cases log failures but never fail the
// operation over them.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error
	PublishUserLoggedOut(ctx context.Context, event domain.UserLoggedOutEvent) error
}
