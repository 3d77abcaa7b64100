package port

import (
	"context"
	"time"
)

// SessionCache tracks live and revoked token identifiers with expiry.
// Implementations must provide atomic key operations; the verification
// middleware treats any Get failure as "revoked" (fail-closed).
type SessionCache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the stored value, or repository.ErrNotFound on a miss.
	Get(ctx context.Context, key string) (string, error)
}
