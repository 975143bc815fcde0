// Package test provides doubles for exercising code that drives the sync
// engine.
package test

import (
	"context"
	"sync"

	"github.com/dsx-project/dsx/pkg/models"
)

// Delivery is one change as seen by one connection.
type Delivery struct {
	ConnectionID string
	Change       models.ChangeRecord
}

// RecordingBroadcaster is a Broadcaster over a fixed set of fake
// connections that records what each one would have received.
type RecordingBroadcaster struct {
	mu          sync.Mutex
	connections []string
	deliveries  []Delivery
}

func NewRecordingBroadcaster(connectionIDs ...string) *RecordingBroadcaster {
	return &RecordingBroadcaster{connections: connectionIDs}
}

// Connect adds a fake connection.
func (b *RecordingBroadcaster) Connect(connectionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connections = append(b.connections, connectionID)
}

// Disconnect removes a fake connection.
func (b *RecordingBroadcaster) Disconnect(connectionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, id := range b.connections {
		if id == connectionID {
			b.connections = append(b.connections[:i], b.connections[i+1:]...)
			return
		}
	}
}

func (b *RecordingBroadcaster) Broadcast(ctx context.Context, change models.ChangeRecord) {
	b.BroadcastExcept(ctx, "", change)
}

func (b *RecordingBroadcaster) BroadcastExcept(_ context.Context, connectionID string, change models.ChangeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.connections {
		if id == connectionID {
			continue
		}
		b.deliveries = append(b.deliveries, Delivery{ConnectionID: id, Change: change})
	}
}

// Deliveries returns everything delivered so far.
func (b *RecordingBroadcaster) Deliveries() []Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Delivery(nil), b.deliveries...)
}

// For returns the changes delivered to one connection, in order.
func (b *RecordingBroadcaster) For(connectionID string) []models.ChangeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	var res []models.ChangeRecord
	for _, d := range b.deliveries {
		if d.ConnectionID == connectionID {
			res = append(res, d.Change)
		}
	}
	return res
}

// Reset forgets every delivery.
func (b *RecordingBroadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveries = nil
}
