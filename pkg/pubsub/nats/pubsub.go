// Package nats relays messages between instances over a NATS subject.
// Publisher exclusion comes from the NoEcho connection option.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/pubsub"
)

type PubSubParams struct {
	Conn *nats.Conn
	// Subject carries every message of one resource kind.
	Subject string
}

type PubSub[T any] struct {
	pubsub.SingletonPubSub[T]
	conn    *nats.Conn
	subject string

	mu           sync.Mutex
	subscription *nats.Subscription
}

func NewPubSub[T any](params PubSubParams) (*PubSub[T], error) {
	if params.Conn == nil {
		return nil, errors.New("nats pubsub requires a connection")
	}
	if params.Subject == "" {
		return nil, errors.New("nats pubsub requires a subject")
	}
	return &PubSub[T]{
		conn:    params.Conn,
		subject: params.Subject,
	}, nil
}

func (p *PubSub[T]) Publish(ctx context.Context, message T) error {
	if !p.Available() {
		return pubsub.ErrUnavailable
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Trace().Str("Subject", p.subject).Msgf("sending message %s", payload)
	return p.conn.Publish(p.subject, payload)
}

// Subscribe registers the subscriber and starts listening on the subject.
// The NATS client resubscribes on its own after a reconnect.
func (p *PubSub[T]) Subscribe(ctx context.Context, subscriber pubsub.Subscriber[T]) error {
	if err := p.SingletonPubSub.Subscribe(ctx, subscriber); err != nil {
		return err
	}
	listenCtx := context.WithoutCancel(ctx)
	sub, err := p.conn.Subscribe(p.subject, func(msg *nats.Msg) {
		p.readMessage(listenCtx, msg)
	})
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.subscription = sub
	p.mu.Unlock()
	return nil
}

func (p *PubSub[T]) readMessage(ctx context.Context, msg *nats.Msg) {
	var payload T
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("Subject", p.subject).Msg("error unmarshalling nats payload")
		return
	}
	if err := p.Handle(ctx, payload); err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("error in handle message of type: %s", reflect.TypeOf(payload))
	}
}

// Available reports whether the connection is currently up.
func (p *PubSub[T]) Available() bool {
	return p.conn.IsConnected()
}

// Close unsubscribes. The connection belongs to the caller.
func (p *PubSub[T]) Close(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subscription == nil {
		return nil
	}
	err := p.subscription.Unsubscribe()
	p.subscription = nil
	if errors.Is(err, nats.ErrConnectionClosed) {
		return nil
	}
	return err
}

// compile-time interface assertions
var _ pubsub.PubSub[string] = (*PubSub[string])(nil)
