package notification

import (
	"context"
)

// Transport delivers a message to the external messaging channel.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Service defines the notification service interface
type Service interface {
	// Notify queues a message for asynchronous delivery; it never waits on the transport.
	Notify(ctx context.Context, topic Topic, text string) error

	// Lifecycle
	Stop()
}
