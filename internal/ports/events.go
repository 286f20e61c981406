package ports

import "context"

// EventPublisher emits editing-lifecycle events (editor opened, save
// succeeded, save failed). Publishing is best-effort; callers log and
// continue on failure.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}
