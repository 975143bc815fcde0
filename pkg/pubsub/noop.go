package pubsub

import (
	"context"
)

// NoopPubSub is used when the bus is disabled. Published messages go
// nowhere and nothing is ever received.
type NoopPubSub[T any] struct{}

func NewNoopPubSub[T any]() *NoopPubSub[T] {
	return &NoopPubSub[T]{}
}

func (p *NoopPubSub[T]) Publish(context.Context, T) error {
	return nil
}

func (p *NoopPubSub[T]) Subscribe(context.Context, Subscriber[T]) error {
	return nil
}

func (p *NoopPubSub[T]) Close(context.Context) error {
	return nil
}

// Available is always false: a disabled bus never relays.
func (p *NoopPubSub[T]) Available() bool {
	return false
}

// NoopSubscriber is a subscriber that does nothing.
type NoopSubscriber[T any] struct {
}

func NewNoopSubscriber[T any]() *NoopSubscriber[T] {
	return &NoopSubscriber[T]{}
}

func (c *NoopSubscriber[T]) Handle(ctx context.Context, message T) error {
	return nil
}

// compile-time interface assertions
var _ PubSub[string] = (*NoopPubSub[string])(nil)
var _ Subscriber[string] = (*NoopSubscriber[string])(nil)
