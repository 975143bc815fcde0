package syncengine

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/pubsub"
	"github.com/dsx-project/dsx/pkg/telemetry"
)

type Params struct {
	// InstanceID tags every change published by this instance.
	InstanceID  string
	Store       docstore.Store
	Broadcaster Broadcaster
	// Publisher relays changes to peer instances. It must not block.
	Publisher pubsub.Publisher[models.ChangeRecord]
}

type Engine struct {
	instanceID  string
	store       docstore.Store
	broadcaster Broadcaster
	publisher   pubsub.Publisher[models.ChangeRecord]
}

func NewEngine(params Params) (*Engine, error) {
	if params.InstanceID == "" {
		return nil, errors.New("sync engine requires an instance ID")
	}
	if params.Store == nil || params.Broadcaster == nil {
		return nil, errors.New("sync engine requires a store and a broadcaster")
	}
	if params.Publisher == nil {
		params.Publisher = pubsub.NewNoopPubSub[models.ChangeRecord]()
	}
	return &Engine{
		instanceID:  params.InstanceID,
		store:       params.Store,
		broadcaster: params.Broadcaster,
		publisher:   params.Publisher,
	}, nil
}

// InstanceID returns the ID this engine tags its changes with.
func (e *Engine) InstanceID() string {
	return e.instanceID
}

// Handle applies an API or local event intent. Malformed intents are
// rejected before the store is touched. When the store write fails the
// intent is dropped and nothing is broadcast; the error is returned so the
// caller may log it, but it never needs surfacing to clients.
func (e *Engine) Handle(ctx context.Context, intent models.Intent) error {
	if intent.Origin == models.OriginBusEvent {
		return models.NewErrMalformedIntent("bus intents must be delivered through HandleChange")
	}
	return e.handle(ctx, intent, intent.Change(e.instanceID))
}

// HandleChange applies a change received from the bus. Changes this
// instance published itself are discarded.
func (e *Engine) HandleChange(ctx context.Context, change models.ChangeRecord) error {
	if change.Origin == e.instanceID {
		busEchoes.Inc(ctx)
		log.Ctx(ctx).Trace().Msgf("discarding own change %s", change)
		return nil
	}
	intent, err := change.Intent()
	if err != nil {
		intentsDropped.Inc(ctx, AttrOriginKey.String(string(models.OriginBusEvent)), AttrReasonKey.String(reasonMalformed))
		return err
	}
	return e.handle(ctx, intent, change)
}

func (e *Engine) handle(ctx context.Context, intent models.Intent, change models.ChangeRecord) error {
	ctx, span := telemetry.NewSpan(ctx, telemetry.GetTracer(), "pkg/syncengine.Engine.Handle")
	defer span.End()
	attrs := []attribute.KeyValue{
		AttrOpKey.String(string(intent.Op)),
		AttrOriginKey.String(string(intent.Origin)),
	}
	span.SetAttributes(attrs...)

	if err := intent.Validate(); err != nil {
		intentsDropped.Inc(ctx, append(attrs, AttrReasonKey.String(reasonMalformed))...)
		log.Ctx(ctx).Warn().Err(err).Msg("rejecting malformed intent")
		return err
	}

	written, err := e.apply(ctx, intent, attrs)
	if err != nil {
		reason := reasonStoreError
		if docstore.IsUnavailable(err) {
			reason = reasonUnavailable
		}
		intentsDropped.Inc(ctx, append(attrs, AttrReasonKey.String(reason))...)
		span.RecordError(err)
		log.Ctx(ctx).Warn().Err(err).Str("Key", intent.Key).
			Msgf("dropping %s %s intent, store write failed", intent.Origin, intent.Op)
		return err
	}
	if !written {
		intentsDropped.Inc(ctx, append(attrs, AttrReasonKey.String(reasonNoMatch))...)
		log.Ctx(ctx).Debug().Str("Key", intent.Key).
			Msgf("not announcing %s %s intent, no document matched", intent.Origin, intent.Op)
		return nil
	}

	switch intent.Origin {
	case models.OriginLocalEvent:
		e.broadcaster.BroadcastExcept(ctx, intent.ConnectionID, change)
	default:
		e.broadcaster.Broadcast(ctx, change)
	}

	if intent.Origin != models.OriginBusEvent {
		if err := e.publisher.Publish(ctx, change); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msgf("failed to relay %s to peers", change)
		}
	}

	intentsHandled.Inc(ctx, attrs...)
	return nil
}

// apply writes the intent to the store and reports whether it changed
// anything worth announcing. Only updates can miss.
func (e *Engine) apply(ctx context.Context, intent models.Intent, attrs []attribute.KeyValue) (bool, error) {
	defer storeDuration.Time(ctx, attrs...)()
	switch intent.Op {
	case models.OpCreate:
		return true, e.store.Upsert(ctx, intent.Document())
	case models.OpUpdate:
		return e.store.Update(ctx, intent.Key, intent.Attributes)
	case models.OpDelete:
		return true, e.store.DeleteOne(ctx, intent.Key)
	case models.OpDeleteAll:
		return true, e.store.DeleteAll(ctx)
	default:
		return false, models.NewErrMalformedIntent("unknown intent op %q", intent.Op)
	}
}

// compile-time interface assertions
var _ IntentHandler = (*Engine)(nil)
