package ports

import (
	"context"
	"time"
)

// SessionStore persists the provider's delegated session blob between
// process runs. Implementations return core.ErrSessionNotFound on a
// miss or after the TTL elapses.
type SessionStore interface {
	// Save stores the blob under key for at most ttl.
	Save(ctx context.Context, key string, blob []byte, ttl time.Duration) error

	// Load retrieves the blob stored under key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete discards the blob stored under key.
	Delete(ctx context.Context, key string) error
}
