package ports

import "context"

// EventPublisher notifies the rest of the application about session
// lifecycle changes. Publishing is best-effort everywhere it is used;
// failures are logged, never surfaced.
type EventPublisher interface {
	PublishLogin(ctx context.Context, principal string) error
	PublishLogout(ctx context.Context, principal string) error
}
