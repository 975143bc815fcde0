package pubsub

import (
	"context"

	"github.com/dsx-project/dsx/pkg/models"
)

// ErrUnavailable is returned by adapters while the bus connection is down.
// Callers log it and carry on in local-only mode.
var ErrUnavailable = models.NewBaseError("bus unavailable").
	WithCode(models.NetworkFailure).
	WithComponent("Bus")

// PubSub enables publishing messages to subscribers
type PubSub[T any] interface {
	// Publish a message
	Publish(ctx context.Context, message T) error
	// Subscribe to messages
	Subscribe(ctx context.Context, subscriber Subscriber[T]) error
	// Close the PubSub and release resources, if any
	Close(ctx context.Context) error
}

// Publisher handles messages publishes to PubSub
type Publisher[T any] interface {
	Publish(ctx context.Context, message T) error
}

// Subscriber handles messages publishes to PubSub
type Subscriber[T any] interface {
	Handle(ctx context.Context, message T) error
}

// HasAvailability is implemented by adapters that can report whether they
// are currently connected.
type HasAvailability interface {
	Available() bool
}

// PublisherFunc is a helper function that implements Publisher interface
type PublisherFunc[T any] func(ctx context.Context, message T) error

func (f PublisherFunc[T]) Publish(ctx context.Context, message T) error {
	return f(ctx, message)
}

// SubscriberFunc is a helper function that implements Subscriber interface
type SubscriberFunc[T any] func(ctx context.Context, message T) error

func (f SubscriberFunc[T]) Handle(ctx context.Context, message T) error {
	return f(ctx, message)
}

// Available reports whether p is connected. Adapters that cannot tell are
// assumed available.
func Available(p any) bool {
	if a, ok := p.(HasAvailability); ok {
		return a.Available()
	}
	return true
}
