package realtime

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/syncengine"
)

// Hub tracks the live connections of this instance and fans changes out to
// them. A change is encoded once and queued on every target connection
// without waiting for any of them.
type Hub struct {
	events models.EventNames

	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewHub(events models.EventNames) *Hub {
	return &Hub{
		events: events,
		conns:  make(map[string]*Conn),
	}
}

func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

// Unregister removes the connection. Later broadcasts no longer reach it.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.ID()] == c {
		delete(h.conns, c.ID())
	}
}

func (h *Hub) Get(connectionID string) (*Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[connectionID]
	return c, ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// IDs returns the IDs of the live connections, sorted.
func (h *Hub) IDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) Broadcast(ctx context.Context, change models.ChangeRecord) {
	h.BroadcastExcept(ctx, "", change)
}

func (h *Hub) BroadcastExcept(ctx context.Context, connectionID string, change models.ChangeRecord) {
	frame, err := ChangeFrame(h.events, change)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("not broadcasting change")
		return
	}
	h.SendExcept(ctx, connectionID, frame)
}

// SendExcept queues frame on every connection but connectionID.
func (h *Hub) SendExcept(ctx context.Context, connectionID string, frame Frame) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for id, c := range h.conns {
		if id != connectionID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(frame)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("Event", frame.Event).Msg("failed to encode frame")
		return
	}
	for _, c := range targets {
		if !c.sendRaw(payload) {
			log.Ctx(ctx).Debug().Str("ConnectionID", c.ID()).Str("Event", frame.Event).
				Msg("send queue full or connection closed, frame dropped")
		}
	}
}

// CloseAll closes every live connection.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.Close()
	}
}

// compile-time interface check
var _ syncengine.Broadcaster = (*Hub)(nil)
