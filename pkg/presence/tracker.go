// Package presence turns connection lifecycle into updates of the
// connected flag of the bound document. The flag lives in the store only,
// so any instance can serve any connection.
package presence

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/syncengine"
)

type TrackerParams struct {
	Store  docstore.Store
	Engine syncengine.IntentHandler
}

type Tracker struct {
	store  docstore.Store
	engine syncengine.IntentHandler
}

func NewTracker(params TrackerParams) (*Tracker, error) {
	if params.Store == nil || params.Engine == nil {
		return nil, errors.New("presence tracker requires a store and an intent handler")
	}
	return &Tracker{
		store:  params.Store,
		engine: params.Engine,
	}, nil
}

// Connect marks the document at key as connected when it exists and is not
// connected already. The change reaches every local connection except
// connectionID, and peer instances. It reports whether an update was issued.
func (t *Tracker) Connect(ctx context.Context, connectionID, key string) (bool, error) {
	return t.transition(ctx, connectionID, key, true)
}

// Disconnect marks the document at key as disconnected when it exists and
// is not disconnected already. It must be called once the connection has
// left the broadcaster, so every remaining local connection is told.
func (t *Tracker) Disconnect(ctx context.Context, connectionID, key string) (bool, error) {
	return t.transition(ctx, connectionID, key, false)
}

func (t *Tracker) transition(ctx context.Context, connectionID, key string, target bool) (bool, error) {
	if key == "" {
		return false, models.NewErrMalformedIntent("presence requires a %q", models.KeyField)
	}
	doc, err := t.store.FindOne(ctx, key)
	if docstore.IsNotFound(err) {
		log.Ctx(ctx).Trace().Str("Key", key).Msg("no document to track presence for")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	current, set := doc.Connected()
	if set && current == target {
		return false, nil
	}

	// The read and the update are not serialized. A delete landing in
	// between leaves the update matching nothing, which the engine drops
	// without announcing. A concurrent flip of the flag by another
	// connection can be overwritten, last write wins.

	err = t.engine.Handle(ctx, models.Intent{
		Op:           models.OpUpdate,
		Key:          key,
		Attributes:   models.Attributes{models.ConnectedField: target},
		Origin:       models.OriginLocalEvent,
		ConnectionID: connectionID,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
