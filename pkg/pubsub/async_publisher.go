package pubsub

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const DefaultAsyncQueueSize = 1024

type AsyncPublisherParams[T any] struct {
	Delegate  Publisher[T]
	QueueSize int
	// Name is used in log lines.
	Name string
}

// AsyncPublisher hands messages to a background goroutine that publishes
// them to the delegate. Publish never blocks: when the queue is full the
// message is dropped and counted.
type AsyncPublisher[T any] struct {
	delegate Publisher[T]
	name     string
	queue    chan queued[T]

	dropped atomic.Int64
	failed  atomic.Int64
	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
}

type queued[T any] struct {
	ctx     context.Context
	message T
}

func NewAsyncPublisher[T any](params AsyncPublisherParams[T]) *AsyncPublisher[T] {
	if params.QueueSize <= 0 {
		params.QueueSize = DefaultAsyncQueueSize
	}
	p := &AsyncPublisher[T]{
		delegate: params.Delegate,
		name:     params.Name,
		queue:    make(chan queued[T], params.QueueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues the message and returns immediately. The returned error
// is always nil; delivery failures are logged by the worker.
func (p *AsyncPublisher[T]) Publish(ctx context.Context, message T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.dropped.Add(1)
		return nil
	}
	select {
	case p.queue <- queued[T]{ctx: context.WithoutCancel(ctx), message: message}:
	default:
		p.dropped.Add(1)
		log.Ctx(ctx).Warn().Str("Component", p.name).Msg("publish queue full, dropping message")
	}
	return nil
}

// Dropped returns the number of messages discarded because the queue was full
// or the publisher closed.
func (p *AsyncPublisher[T]) Dropped() int64 {
	return p.dropped.Load()
}

// Failed returns the number of messages the delegate refused.
func (p *AsyncPublisher[T]) Failed() int64 {
	return p.failed.Load()
}

// Close stops accepting messages and waits for queued ones to be handed to
// the delegate, or for ctx to be done.
func (p *AsyncPublisher[T]) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *AsyncPublisher[T]) run() {
	defer close(p.done)
	for item := range p.queue {
		if err := p.delegate.Publish(item.ctx, item.message); err != nil {
			p.failed.Add(1)
			log.Ctx(item.ctx).Debug().Err(err).Str("Component", p.name).Msg("failed to publish message")
		}
	}
}

// compile-time interface assertions
var _ Publisher[string] = (*AsyncPublisher[string])(nil)
