package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/syncengine"
)

const component = "Realtime"

// PresenceTracker is driven by the connection lifecycle.
type PresenceTracker interface {
	Connect(ctx context.Context, connectionID, key string) (bool, error)
	Disconnect(ctx context.Context, connectionID, key string) (bool, error)
}

type HandlerParams struct {
	InstanceID string
	Events     models.EventNames
	Hub        *Hub
	Bindings   *Bindings
	Engine     syncengine.IntentHandler
	Presence   PresenceTracker

	SendBuffer   int
	PingInterval time.Duration
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
}

// ErrorPayload is the data of an error frame.
type ErrorPayload struct {
	Event   string `json:"event"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Handler upgrades HTTP requests to websocket connections and turns their
// frames into intents.
type Handler struct {
	instanceID string
	events     models.EventNames
	hub        *Hub
	bindings   *Bindings
	engine     syncengine.IntentHandler
	presence   PresenceTracker

	sendBuffer   int
	pingInterval time.Duration
	upgrader     websocket.Upgrader
	active       sync.WaitGroup
}

func NewHandler(params HandlerParams) *Handler {
	checkOrigin := params.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	if params.Bindings == nil {
		params.Bindings = NewBindings()
	}
	return &Handler{
		instanceID:   params.InstanceID,
		events:       params.Events,
		hub:          params.Hub,
		bindings:     params.Bindings,
		engine:       params.Engine,
		presence:     params.Presence,
		sendBuffer:   params.SendBuffer,
		pingInterval: params.PingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP serves one connection and returns when it closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied to the client
		log.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.active.Add(1)
	defer h.active.Done()

	conn := newConn(ws, connParams{
		ID:           uuid.NewString(),
		SendBuffer:   h.sendBuffer,
		PingInterval: h.pingInterval,
	})
	logger := log.Ctx(r.Context()).With().Str("ConnectionID", conn.ID()).Logger()
	ctx := logger.WithContext(r.Context())
	logger.Debug().Msgf("new websocket connection from %s", r.RemoteAddr)

	h.reply(ctx, conn, h.events.InstanceID, h.instanceID)
	h.hub.Register(conn)
	go conn.writePump()

	conn.readPump(ctx, func(ctx context.Context, payload []byte) {
		h.receive(ctx, conn, payload)
	})

	conn.Close()
	h.hub.Unregister(conn)
	if key, ok := h.bindings.Unbind(conn.ID()); ok {
		if _, err := h.presence.Disconnect(context.WithoutCancel(ctx), conn.ID(), key); err != nil {
			logger.Warn().Err(err).Str("Key", key).Msg("failed to record disconnect")
		}
	}
	logger.Debug().Msg("websocket connection closed")
}

// Wait blocks until every connection served so far has closed.
func (h *Handler) Wait() {
	h.active.Wait()
}

// Bindings exposes the connection to key associations.
func (h *Handler) Bindings() *Bindings {
	return h.bindings
}

// receive decodes one message. Anything that is not a frame is answered with
// an error frame and the connection stays open.
func (h *Handler) receive(ctx context.Context, conn *Conn, payload []byte) {
	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil || frame.Event == "" {
		if err == nil {
			err = errors.New("missing event")
		}
		h.replyError(ctx, conn, "", models.NewBaseError("malformed frame: %s", err).
			WithCode(models.BadRequestError).
			WithComponent(component))
		return
	}
	h.dispatch(ctx, conn, frame)
}

func (h *Handler) dispatch(ctx context.Context, conn *Conn, frame Frame) {
	switch frame.Event {
	case h.events.ConnectRequest:
		h.declareKey(ctx, conn, frame)
	case h.events.Create:
		h.mutate(ctx, conn, frame, models.OpCreate)
	case h.events.Update:
		h.mutate(ctx, conn, frame, models.OpUpdate)
	case h.events.Delete:
		key, err := DecodeKey(frame.Data)
		if err != nil {
			h.replyError(ctx, conn, frame.Event, err)
			return
		}
		h.handle(ctx, conn, frame.Event, models.Intent{Op: models.OpDelete, Key: key})
	default:
		h.replyError(ctx, conn, frame.Event, models.NewBaseError("unknown event %q", frame.Event).
			WithCode(models.BadRequestError))
	}
}

// declareKey acknowledges the declared key before touching the store, then
// lets presence mark the document connected.
func (h *Handler) declareKey(ctx context.Context, conn *Conn, frame Frame) {
	key, err := DecodeKey(frame.Data)
	if err != nil {
		h.replyError(ctx, conn, frame.Event, err)
		return
	}
	previous := h.bindings.Bind(conn.ID(), key)
	h.reply(ctx, conn, h.events.ConnectConfirmed, key)

	if previous != "" && previous != key {
		if _, err := h.presence.Disconnect(ctx, conn.ID(), previous); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("Key", previous).Msg("failed to release previous key")
		}
	}
	if _, err := h.presence.Connect(ctx, conn.ID(), key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("Key", key).Msg("failed to record connect")
	}
}

func (h *Handler) mutate(ctx context.Context, conn *Conn, frame Frame, op models.Op) {
	doc, err := DecodeDocument(frame.Data)
	if err != nil {
		h.replyError(ctx, conn, frame.Event, err)
		return
	}
	h.handle(ctx, conn, frame.Event, models.Intent{Op: op, Key: doc.Key, Attributes: doc.Attributes})
}

func (h *Handler) handle(ctx context.Context, conn *Conn, event string, intent models.Intent) {
	intent.Origin = models.OriginLocalEvent
	intent.ConnectionID = conn.ID()
	err := h.engine.Handle(ctx, intent)
	switch {
	case err == nil:
	case models.IsErrMalformedIntent(err):
		h.replyError(ctx, conn, event, err)
	case docstore.IsUnavailable(err):
		// dropped without telling the client
	default:
		log.Ctx(ctx).Error().Err(err).Str("Event", event).Msg("failed to handle event")
	}
}

func (h *Handler) reply(ctx context.Context, conn *Conn, event string, data interface{}) {
	frame, err := NewFrame(event, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to build reply")
		return
	}
	conn.Send(frame)
}

func (h *Handler) replyError(ctx context.Context, conn *Conn, event string, err error) {
	payload := ErrorPayload{Event: event, Message: err.Error()}
	var baseErr *models.BaseError
	if errors.As(err, &baseErr) {
		payload.Code = string(baseErr.Code())
	}
	log.Ctx(ctx).Debug().Err(err).Str("Event", event).Msg("rejecting event")
	h.reply(ctx, conn, h.events.Error, payload)
}
