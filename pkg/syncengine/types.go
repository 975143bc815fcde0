// Package syncengine is the single path every create, update and delete
// takes through an instance. It writes to the document store first, then
// fans the change out to local subscribers and, unless the change came from
// the bus, relays it to peer instances.
package syncengine

import (
	"context"

	"github.com/dsx-project/dsx/pkg/models"
)

// Broadcaster emits changes to the live connections of this instance. Both
// methods are fire-and-forget and must not block on slow connections.
type Broadcaster interface {
	// Broadcast emits the change to every local connection.
	Broadcast(ctx context.Context, change models.ChangeRecord)
	// BroadcastExcept emits the change to every local connection but one.
	// An unknown connection ID excludes nobody.
	BroadcastExcept(ctx context.Context, connectionID string, change models.ChangeRecord)
}

// IntentHandler is satisfied by Engine. Other packages depend on this
// rather than on the engine itself.
type IntentHandler interface {
	Handle(ctx context.Context, intent models.Intent) error
}
