package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSendBuffer   = 256
	DefaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
	maxMessageSize      = 1 << 20
)

type connParams struct {
	ID           string
	SendBuffer   int
	PingInterval time.Duration
}

// Conn is one websocket client. Writes go through a buffered queue drained
// by a single writer goroutine, so a slow client never blocks the sender.
type Conn struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	pingInterval time.Duration

	dropped   atomic.Int64
	closeOnce sync.Once
	closed    chan struct{}
	mu        sync.RWMutex
}

func newConn(ws *websocket.Conn, params connParams) *Conn {
	if params.SendBuffer <= 0 {
		params.SendBuffer = DefaultSendBuffer
	}
	if params.PingInterval <= 0 {
		params.PingInterval = DefaultPingInterval
	}
	return &Conn{
		id:           params.ID,
		ws:           ws,
		send:         make(chan []byte, params.SendBuffer),
		pingInterval: params.PingInterval,
		closed:       make(chan struct{}),
	}
}

func (c *Conn) ID() string {
	return c.id
}

// Send queues the frame. It reports false when the frame was dropped
// because the queue is full or the connection is closed.
func (c *Conn) Send(frame Frame) bool {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("Event", frame.Event).Msg("failed to encode frame")
		return false
	}
	return c.sendRaw(payload)
}

func (c *Conn) sendRaw(payload []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of frames discarded for this connection.
func (c *Conn) Dropped() int64 {
	return c.dropped.Load()
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.closed)
		c.mu.Unlock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}

// readPump calls handle with the payload of every data message until the
// client goes away or ctx is done. Messages are handled one at a time, in
// arrival order. Only transport errors end the loop; decoding is left to
// handle so that a bad payload never costs the client its connection.
func (c *Conn) readPump(ctx context.Context, handle func(ctx context.Context, payload []byte)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(2 * c.pingInterval))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(2 * c.pingInterval))
	})

	for {
		kind, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Ctx(ctx).Debug().Err(err).Str("ConnectionID", c.id).Msg("websocket closed unexpectedly")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		handle(ctx, payload)
	}
}

// writePump drains the send queue and pings the client until the
// connection closes.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}
