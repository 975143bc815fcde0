package pubsub

import (
	"context"
	"errors"
	"sync"
)

var ErrSubscriberAlreadySet = errors.New("only a single subscriber is allowed")

// SingletonPubSub is an abstract pubsub that only allows one subscriber.
// Adapters embed it and dispatch received messages to Handle.
type SingletonPubSub[T any] struct {
	mu         sync.RWMutex
	subscriber Subscriber[T]
}

func (p *SingletonPubSub[T]) Subscribe(_ context.Context, subscriber Subscriber[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subscriber != nil {
		return ErrSubscriberAlreadySet
	}
	p.subscriber = subscriber
	return nil
}

// Handle forwards a received message to the subscriber, if there is one.
func (p *SingletonPubSub[T]) Handle(ctx context.Context, message T) error {
	p.mu.RLock()
	subscriber := p.subscriber
	p.mu.RUnlock()
	if subscriber == nil {
		return nil
	}
	return subscriber.Handle(ctx, message)
}
