// Package redis relays messages between instances over a Redis pub/sub
// channel. Redis delivers a publisher's messages back to its own
// subscription, so receivers must drop their own messages by origin tag.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/lib/backoff"
	"github.com/dsx-project/dsx/pkg/lib/supervisor"
	"github.com/dsx-project/dsx/pkg/pubsub"
)

const (
	DefaultRetryInterval = 5 * time.Second
	pingTimeout          = 2 * time.Second
)

type PubSubParams struct {
	Client *goredis.Client
	// Channel carries every message of one resource kind.
	Channel       string
	RetryInterval time.Duration
	Clock         clock.Clock
}

type PubSub[T any] struct {
	pubsub.SingletonPubSub[T]
	client     *goredis.Client
	channel    string
	supervisor *supervisor.Supervisor

	mu           sync.Mutex
	subscription *goredis.PubSub
	done         chan struct{}
}

func NewPubSub[T any](params PubSubParams) (*PubSub[T], error) {
	if params.Client == nil {
		return nil, errors.New("redis pubsub requires a client")
	}
	if params.Channel == "" {
		return nil, errors.New("redis pubsub requires a channel")
	}
	if params.RetryInterval == 0 {
		params.RetryInterval = DefaultRetryInterval
	}
	p := &PubSub[T]{
		client:  params.Client,
		channel: params.Channel,
	}
	p.supervisor = supervisor.New(supervisor.Params{
		Name:    "RedisBus",
		Connect: p.ping,
		Backoff: backoff.NewFixed(params.RetryInterval),
		Clock:   params.Clock,
	})
	return p, nil
}

// Start begins probing the connection in the background.
func (p *PubSub[T]) Start(ctx context.Context) {
	p.supervisor.Start(ctx)
}

func (p *PubSub[T]) Publish(ctx context.Context, message T) error {
	if !p.supervisor.Available() {
		return pubsub.ErrUnavailable
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err = p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.supervisor.MarkUnavailable(err)
		return errors.Join(pubsub.ErrUnavailable, err)
	}
	return nil
}

// Subscribe registers the subscriber and starts listening on the channel.
// go-redis re-establishes the subscription after a reconnect.
func (p *PubSub[T]) Subscribe(ctx context.Context, subscriber pubsub.Subscriber[T]) error {
	if err := p.SingletonPubSub.Subscribe(ctx, subscriber); err != nil {
		return err
	}
	listenCtx := context.WithoutCancel(ctx)
	sub := p.client.Subscribe(listenCtx, p.channel)

	p.mu.Lock()
	p.subscription = sub
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.listenForEvents(listenCtx, sub.Channel(), p.done)
	return nil
}

func (p *PubSub[T]) listenForEvents(ctx context.Context, messages <-chan *goredis.Message, done chan struct{}) {
	defer close(done)
	for msg := range messages {
		var payload T
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("Channel", p.channel).Msg("error unmarshalling redis payload")
			continue
		}
		if err := p.Handle(ctx, payload); err != nil {
			log.Ctx(ctx).Error().Err(err).Msgf("error in handle message of type: %s", reflect.TypeOf(payload))
		}
	}
	log.Ctx(ctx).Trace().Str("Channel", p.channel).Msg("redis subscription closed")
}

func (p *PubSub[T]) Available() bool {
	return p.supervisor.Available()
}

// Close stops the subscription and the probe loop. The client belongs to
// the caller.
func (p *PubSub[T]) Close(ctx context.Context) error {
	p.supervisor.Stop()
	p.mu.Lock()
	sub, done := p.subscription, p.done
	p.subscription = nil
	p.mu.Unlock()
	if sub == nil {
		return nil
	}
	err := sub.Close()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return err
}

func (p *PubSub[T]) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.client.Ping(ctx).Err()
}

// compile-time interface assertions
var _ pubsub.PubSub[string] = (*PubSub[string])(nil)
