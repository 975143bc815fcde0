package pubsub

import (
	"context"
	"errors"
	"sync"
)

// InMemoryNetwork connects InMemoryPubSub instances the way a broker
// connects processes. A message published by one member is delivered to
// every other member, never back to the publisher.
type InMemoryNetwork[T any] struct {
	mu      sync.RWMutex
	members []*InMemoryPubSub[T]
}

func NewInMemoryNetwork[T any]() *InMemoryNetwork[T] {
	return &InMemoryNetwork[T]{}
}

// Join adds a new member to the network.
func (n *InMemoryNetwork[T]) Join() *InMemoryPubSub[T] {
	p := &InMemoryPubSub[T]{network: n}
	n.mu.Lock()
	n.members = append(n.members, p)
	n.mu.Unlock()
	return p
}

func (n *InMemoryNetwork[T]) deliver(ctx context.Context, from *InMemoryPubSub[T], message T) error {
	n.mu.RLock()
	members := append([]*InMemoryPubSub[T](nil), n.members...)
	n.mu.RUnlock()

	var errs []error
	for _, member := range members {
		if member == from && !from.echo {
			continue
		}
		if err := member.receive(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InMemoryPubSub is a simple in-memory pubsub implementation used for testing
type InMemoryPubSub[T any] struct {
	SingletonPubSub[T]
	network *InMemoryNetwork[T]
	echo    bool
	closed  bool
	mu      sync.RWMutex
}

// NewInMemoryPubSub returns a standalone pubsub that delivers its own
// messages back to its subscriber, like a bus without publisher exclusion.
func NewInMemoryPubSub[T any]() *InMemoryPubSub[T] {
	p := NewInMemoryNetwork[T]().Join()
	p.echo = true
	return p
}

func (p *InMemoryPubSub[T]) Publish(ctx context.Context, message T) error {
	if !p.Available() {
		return ErrUnavailable
	}
	return p.network.deliver(ctx, p, message)
}

func (p *InMemoryPubSub[T]) Close(context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Available is false once the pubsub has been closed.
func (p *InMemoryPubSub[T]) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}

func (p *InMemoryPubSub[T]) receive(ctx context.Context, message T) error {
	if !p.Available() {
		return nil
	}
	return p.Handle(ctx, message)
}

// InMemorySubscriber is a simple in-memory subscriber implementation used for testing
type InMemorySubscriber[T any] struct {
	mu            sync.Mutex
	events        []T
	badSubscriber bool
}

func NewInMemorySubscriber[T any]() *InMemorySubscriber[T] {
	return &InMemorySubscriber[T]{
		events: make([]T, 0),
	}
}

func (s *InMemorySubscriber[T]) Handle(ctx context.Context, message T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.badSubscriber {
		return errors.New("failed to handler message as I am a bad subscriber")
	}
	s.events = append(s.events, message)
	return nil
}

// Events returns the messages received since the last call.
func (s *InMemorySubscriber[T]) Events() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.events
	s.events = make([]T, 0)
	return res
}

// Len returns the number of messages received since the last Events call.
func (s *InMemorySubscriber[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// compile-time interface assertions
var _ PubSub[string] = (*InMemoryPubSub[string])(nil)
var _ Subscriber[string] = (*InMemorySubscriber[string])(nil)
