package driven

import "context"

// Notifier delivers short status messages to a chat channel.
// Delivery is best effort; the sync service logs and continues when a
// notification fails.
type Notifier interface {
	// Notify sends a single message.
	Notify(ctx context.Context, message string) error
}
